package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"VisualContentExtractor/internal/config"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/infrastructure/parser"
	"VisualContentExtractor/internal/infrastructure/progress"
	"VisualContentExtractor/internal/infrastructure/storage"
	"VisualContentExtractor/internal/infrastructure/wikimedia"
	"VisualContentExtractor/internal/infrastructure/wp1"
	"VisualContentExtractor/internal/logging"
	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/report"
	"VisualContentExtractor/internal/scanner"
	"VisualContentExtractor/internal/usecase"
	"VisualContentExtractor/internal/workspace"
)

// Application wires configs to use cases and adapters.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	metadata *wikimedia.Client
	projects *wp1.Client
	source   *parser.StrategySource
	lists    *parser.ListScanner
	progress ports.Progress
	prompt   workspace.Prompter
}

// Option customizes an Application.
type Option func(*Application)

// WithHTTPClient replaces the HTTP client shared by both services.
func WithHTTPClient(h *http.Client) Option {
	return func(a *Application) {
		a.metadata = newMetadata(a.cfg, h, a.logger)
		a.projects = newProjects(a.cfg, h)
		a.source = newSource(a.projects, a.lists, a.logger)
	}
}

// WithProgress replaces the terminal progress reporter.
func WithProgress(p ports.Progress) Option {
	return func(a *Application) { a.progress = p }
}

// WithPrompter replaces the interactive resume question; nil keeps
// existing data without asking.
func WithPrompter(p workspace.Prompter) Option {
	return func(a *Application) { a.prompt = p }
}

// New builds the application from configuration.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	httpClient := &http.Client{Timeout: cfg.Extraction.Timeout()}
	a := &Application{cfg: cfg, logger: baseLogger}
	a.metadata = newMetadata(cfg, httpClient, baseLogger)
	a.projects = newProjects(cfg, httpClient)
	a.lists = parser.NewListScanner(cfg.Paths.InputDir, cfg.Extraction.HasHeader())
	a.source = newSource(a.projects, a.lists, baseLogger)
	a.progress = progress.New(os.Stderr, baseLogger.With("component", "progress"))
	if progress.IsTerminal(os.Stdin) {
		a.prompt = workspace.HuhPrompter
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func newMetadata(cfg config.Config, h *http.Client, logger *slog.Logger) *wikimedia.Client {
	return wikimedia.NewClient(
		wikimedia.WithHTTPClient(h),
		wikimedia.WithAPIURL(cfg.Endpoints.MediaWikiAPI),
		wikimedia.WithRawURL(cfg.Endpoints.MediaWikiRaw),
		wikimedia.WithUserAgent(cfg.Extraction.UserAgent),
		wikimedia.WithBatchSize(cfg.Extraction.BatchSize),
		wikimedia.WithLogger(logger.With("component", "wikimedia")),
	)
}

func newProjects(cfg config.Config, h *http.Client) *wp1.Client {
	return wp1.NewClient(
		wp1.WithHTTPClient(h),
		wp1.WithBaseURL(cfg.Endpoints.WP1),
		wp1.WithUserAgent(cfg.Extraction.UserAgent),
	)
}

func newSource(dir ports.ProjectDirectory, lists *parser.ListScanner, logger *slog.Logger) *parser.StrategySource {
	registry := scanner.NewRegistry()
	registry.Register(parser.NewProjectScanner(dir, logger.With("component", "scanner.wp")))
	registry.Register(lists)
	return parser.NewStrategySource(registry, logger.With("component", "source"))
}

// Result is the outcome of an extraction or report build.
type Result struct {
	Report     report.Document
	ReportPath string
	RunID      string
	Reset      bool
}

// Extract runs the whole pipeline for one collection.
func (a *Application) Extract(ctx context.Context, c domain.Collection, mode workspace.Mode) (Result, error) {
	// Unknown projects and missing list files are rejected before the
	// workspace directory is created.
	if err := a.source.Validate(ctx, c); err != nil {
		return Result{}, err
	}

	logger, runID := logging.WithRun(a.logger)
	logger = logger.With("collection", c.Slug())

	res := Result{RunID: runID}
	err := a.withWorkspace(c, func(ws *workspace.Workspace, store ports.CheckpointStore) error {
		pipeline := usecase.NewPipeline(usecase.PipelineDeps{
			Source:       a.source,
			Metadata:     a.metadata,
			Checkpoints:  store,
			Report:       storage.NewReportFile(ws.ReportPath()),
			Progress:     a.progress,
			Logger:       logger.With("component", "pipeline"),
			BatchSize:    a.cfg.Extraction.BatchSize,
			PersistEvery: a.cfg.Checkpoint.PersistEvery,
		})
		logger.Info("extraction started", "workspace", ws.Dir(), "format", a.cfg.Checkpoint.Format)
		doc, err := pipeline.Execute(ctx, c)
		if err != nil {
			return err
		}
		res.Report, res.ReportPath = doc, ws.ReportPath()
		return nil
	}, func(ws *workspace.Workspace) error {
		reset, err := ws.Prepare(mode, a.prompt)
		if reset {
			logger.Info("existing data removed", "workspace", ws.Dir())
		}
		res.Reset = reset
		return err
	})
	if err != nil {
		logger.Error("extraction stopped", "err", err)
		return res, err
	}
	logger.Info("extraction finished", "report", res.ReportPath, "articles", len(res.Report.Data))
	return res, nil
}

// Report rebuilds the report from stored checkpoints.
func (a *Application) Report(ctx context.Context, c domain.Collection) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	var res Result
	err := a.withWorkspace(c, func(ws *workspace.Workspace, store ports.CheckpointStore) error {
		pipeline := usecase.NewPipeline(usecase.PipelineDeps{
			Checkpoints: store,
			Report:      storage.NewReportFile(ws.ReportPath()),
			Logger:      a.logger.With("component", "pipeline"),
		})
		doc, err := pipeline.BuildReport(ctx, c)
		if err != nil {
			return err
		}
		res.Report, res.ReportPath = doc, ws.ReportPath()
		return nil
	}, nil)
	return res, err
}

// CollectionStatus describes what a workspace holds.
type CollectionStatus struct {
	Dir    string
	Files  []workspace.File
	Status usecase.Status
}

// Status inspects a collection workspace. A collection never extracted
// reports no files and an empty status.
func (a *Application) Status(ctx context.Context, c domain.Collection) (CollectionStatus, error) {
	if err := c.Validate(); err != nil {
		return CollectionStatus{}, err
	}
	out := CollectionStatus{Dir: workspace.Dir(a.cfg.Paths.OutputDir, c)}
	files, err := workspace.Inspect(a.cfg.Paths.OutputDir, c)
	if err != nil || len(files) == 0 {
		return out, err
	}
	out.Files = files

	err = a.withWorkspace(c, func(_ *workspace.Workspace, store ports.CheckpointStore) error {
		st, err := usecase.Inspect(ctx, store)
		out.Status = st
		return err
	}, nil)
	return out, err
}

// Lists returns the custom lists available in the input directory.
func (a *Application) Lists() ([]string, error) {
	return a.lists.Lists()
}

// Projects lists the projects known to the assessment service.
func (a *Application) Projects(ctx context.Context) ([]string, error) {
	return a.projects.Projects(ctx)
}

func (a *Application) withWorkspace(c domain.Collection, fn func(*workspace.Workspace, ports.CheckpointStore) error, prepare func(*workspace.Workspace) error) error {
	ws, err := workspace.Open(a.cfg.Paths.OutputDir, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			a.logger.Warn("release workspace lock", "err", err)
		}
	}()

	if prepare != nil {
		if err := prepare(ws); err != nil {
			return err
		}
	}

	store, closer, err := ws.Store(a.cfg.Checkpoint.Format)
	if err != nil {
		return fmt.Errorf("open checkpoints: %w", err)
	}
	defer closer.Close()

	return fn(ws, store)
}
