package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"VisualContentExtractor/internal/app"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/workspace"
)

var commandKinds = map[string]domain.CollectionKind{
	"project": domain.KindProject,
	"list":    domain.KindList,
}

func newExtractCommand(ctx *commandContext, use, short string) *cobra.Command {
	var keep, fresh bool
	kind := commandKinds[use]

	cmd := &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := workspace.ModeFromFlags(keep, fresh)
			if err != nil {
				return err
			}
			application, err := ctx.application()
			if err != nil {
				return err
			}

			c := domain.Collection{Kind: kind, Name: args[0]}
			res, err := application.Extract(cmd.Context(), c, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s articles written to %s\n",
				c.DisplayName(), humanize.Comma(int64(len(res.Report.Data))), res.ReportPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep existing data and fill what is missing")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Delete existing data before extracting")
	return cmd
}

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the WikiProjects known to the assessment service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := ctx.application()
			if err != nil {
				return err
			}
			names, err := application.Projects(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(names))
			for _, n := range names {
				rows = append(rows, []string{n})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Project"}, rows, nil))
			return nil
		},
	}
}

func newListsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "List the custom lists available in the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := ctx.application()
			if err != nil {
				return err
			}
			names, err := application.Lists()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no list files found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLists(names))
			return nil
		},
	}
}

func renderLists(names []string) string {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n, n + ".csv"})
	}
	return renderTable([]string{"List", "File"}, rows, nil)
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project|list> <name>",
		Short: "Show the checkpoint progress of a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionFromArgs(args)
			if err != nil {
				return err
			}
			application, err := ctx.application()
			if err != nil {
				return err
			}
			st, err := application.Status(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(c, st))
			return nil
		},
	}
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report <project|list> <name>",
		Short: "Rebuild the report from stored checkpoints without network access",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionFromArgs(args)
			if err != nil {
				return err
			}
			application, err := ctx.application()
			if err != nil {
				return err
			}
			res, err := application.Report(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", res.ReportPath)
			return nil
		},
	}
}

func collectionFromArgs(args []string) (domain.Collection, error) {
	kind, ok := commandKinds[args[0]]
	if !ok {
		kind = domain.CollectionKind(args[0])
	}
	c := domain.Collection{Kind: kind, Name: args[1]}
	return c, c.Validate()
}

func renderStatus(c domain.Collection, st app.CollectionStatus) string {
	if len(st.Files) == 0 {
		return fmt.Sprintf("%s: nothing extracted yet (%s)", c.DisplayName(), st.Dir)
	}

	phases := make([][]string, 0, len(st.Status.Phases))
	for _, ph := range st.Status.Phases {
		state := "pending"
		if ph.Complete() {
			state = "complete"
		}
		phases = append(phases, []string{
			string(ph.Phase),
			humanize.Comma(int64(ph.Done)),
			humanize.Comma(int64(ph.Total)),
			state,
		})
	}

	files := make([][]string, 0, len(st.Files))
	for _, f := range st.Files {
		files = append(files, []string{f.Name, humanize.Bytes(uint64(f.Size))})
	}

	summary := fmt.Sprintf("%s in %s: %s articles, %s images",
		c.DisplayName(), st.Dir,
		humanize.Comma(int64(st.Status.Articles)), humanize.Comma(int64(st.Status.Images)))
	return summary + "\n" +
		renderTable([]string{"Phase", "Done", "Total", "State"}, phases, []columnAlignment{alignLeft, alignRight, alignRight, alignLeft}) + "\n" +
		renderTable([]string{"File", "Size"}, files, []columnAlignment{alignLeft, alignRight})
}
