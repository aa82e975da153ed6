package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"VisualContentExtractor/internal/app"
	"VisualContentExtractor/internal/config"
	"VisualContentExtractor/internal/logging"
)

type commandContext struct {
	configFlag *string

	once sync.Once
	app  *app.Application
	err  error
}

func (c *commandContext) application() (*app.Application, error) {
	c.once.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.err = err
			return
		}
		c.app = app.New(cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format))
	})
	return c.app, c.err
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "vcextractor",
		Short:         "Extract article and image metadata of a Wikipedia collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML or TOML)")

	rootCmd.AddCommand(newExtractCommand(ctx, "project", "Extract the articles assessed by a WikiProject"))
	rootCmd.AddCommand(newExtractCommand(ctx, "list", "Extract the articles of input/<name>.csv"))
	rootCmd.AddCommand(newProjectsCommand(ctx))
	rootCmd.AddCommand(newListsCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newReportCommand(ctx))
	return rootCmd
}
