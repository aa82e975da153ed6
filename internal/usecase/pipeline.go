package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/dataset"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/report"
)

// DefaultPersistEvery is the number of processed items between periodic
// checkpoint writes.
const DefaultPersistEvery = 100

// Phase names one pass of the pipeline.
type Phase string

const (
	PhaseDiscover   Phase = "discover"
	PhaseAssess     Phase = "assessment"
	PhaseCategories Phase = "categories"
	PhaseImageLists Phase = "image-lists"
	PhaseImageInfo  Phase = "image-info"
	PhaseReport     Phase = "report"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseDiscover, PhaseAssess, PhaseCategories, PhaseImageLists, PhaseImageInfo, PhaseReport}

// PhaseError reports which phase aborted a run.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// PipelineDeps wires all driven adapters into the extraction pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Metadata    ports.MetadataSource
	Checkpoints ports.CheckpointStore
	Report      ports.ReportWriter
	Progress    ports.Progress
	Logger      *slog.Logger
	// Now stamps the report; defaults to time.Now.
	Now          func() time.Time
	BatchSize    int
	PersistEvery int
}

// Pipeline implements the checkpointed extraction workflow.
type Pipeline struct {
	source       ports.ArticleSource
	metadata     ports.MetadataSource
	checkpoints  ports.CheckpointStore
	report       ports.ReportWriter
	progress     ports.Progress
	logger       *slog.Logger
	now          func() time.Time
	batchSize    int
	persistEvery int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:       deps.Source,
		metadata:     deps.Metadata,
		checkpoints:  deps.Checkpoints,
		report:       deps.Report,
		progress:     deps.Progress,
		logger:       deps.Logger,
		now:          deps.Now,
		batchSize:    batch.Clamp(deps.BatchSize),
		persistEvery: deps.PersistEvery,
	}
	if p.progress == nil {
		p.progress = nopProgress{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.persistEvery <= 0 {
		p.persistEvery = DefaultPersistEvery
	}
	return p
}

// run is the state of one extraction over one collection.
type run struct {
	*Pipeline
	collection domain.Collection
	articles   *dataset.Dataset[domain.Article]
	images     *dataset.Dataset[domain.Image]
	logger     *slog.Logger
}

// Run validates the collection, then executes every phase in order. Each
// phase skips the rows an earlier run already completed.
func (p *Pipeline) Run(ctx context.Context, c domain.Collection) (report.Document, error) {
	if p.source == nil {
		return report.Document{}, fmt.Errorf("%w: pipeline is missing adapters", domain.ErrConfiguration)
	}
	if err := p.source.Validate(ctx, c); err != nil {
		return report.Document{}, err
	}
	return p.Execute(ctx, c)
}

// Execute is Run for a collection the caller already validated.
func (p *Pipeline) Execute(ctx context.Context, c domain.Collection) (report.Document, error) {
	if p.source == nil || p.metadata == nil || p.checkpoints == nil {
		return report.Document{}, fmt.Errorf("%w: pipeline is missing adapters", domain.ErrConfiguration)
	}

	r, err := p.open(ctx, c)
	if err != nil {
		return report.Document{}, err
	}

	steps := []struct {
		phase Phase
		fn    func(context.Context) error
	}{
		{PhaseDiscover, r.discover},
		{PhaseAssess, r.assess},
		{PhaseCategories, r.categories},
		{PhaseImageLists, r.imageLists},
		{PhaseImageInfo, r.imageInfo},
	}
	for _, step := range steps {
		start := time.Now()
		r.logger.Info("phase started", "phase", step.phase)
		if err := step.fn(ctx); err != nil {
			r.persistOnAbort(ctx, step.phase)
			return report.Document{}, &PhaseError{Phase: step.phase, Err: err}
		}
		r.logger.Info("phase finished", "phase", step.phase, "elapsed", time.Since(start).Round(time.Millisecond))
	}

	doc, err := r.writeReport(ctx)
	if err != nil {
		return report.Document{}, &PhaseError{Phase: PhaseReport, Err: err}
	}
	return doc, nil
}

// BuildReport assembles and writes the report from the stored checkpoints
// without any network access.
func (p *Pipeline) BuildReport(ctx context.Context, c domain.Collection) (report.Document, error) {
	if err := c.Validate(); err != nil {
		return report.Document{}, err
	}
	if p.checkpoints == nil {
		return report.Document{}, fmt.Errorf("%w: pipeline has no checkpoint store", domain.ErrConfiguration)
	}
	r, err := p.open(ctx, c)
	if err != nil {
		return report.Document{}, err
	}
	doc, err := r.writeReport(ctx)
	if err != nil {
		return report.Document{}, &PhaseError{Phase: PhaseReport, Err: err}
	}
	return doc, nil
}

func (p *Pipeline) open(ctx context.Context, c domain.Collection) (*run, error) {
	logger := p.logger.With("collection", c.Slug())

	articles, err := dataset.OpenArticles(ctx, p.checkpoints)
	if err != nil {
		return nil, err
	}
	images, err := dataset.OpenImages(ctx, p.checkpoints)
	if err != nil {
		return nil, err
	}

	for _, ds := range []interface {
		Name() string
		UpgradedColumns() []string
	}{articles, images} {
		if cols := ds.UpgradedColumns(); len(cols) > 0 {
			logger.Warn("checkpoint lacks columns, added as unset", "dataset", ds.Name(), "columns", cols)
		}
	}
	logger.Debug("checkpoints loaded", "articles", articles.Len(), "images", images.Len())

	return &run{Pipeline: p, collection: c, articles: articles, images: images, logger: logger}, nil
}

// persist writes images before articles so an article never records an
// image count whose rows are not on disk yet.
func (r *run) persist(ctx context.Context) error {
	if err := r.images.Persist(ctx); err != nil {
		return err
	}
	return r.articles.Persist(ctx)
}

// persistOnAbort saves the batches merged before a phase failed. The run's
// context may already be cancelled, so the write ignores cancellation.
func (r *run) persistOnAbort(ctx context.Context, phase Phase) {
	if err := r.persist(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error("persist after abort failed", "phase", phase, "err", err)
	}
}

func (r *run) writeReport(ctx context.Context) (report.Document, error) {
	doc := report.Assemble(report.NewInfo(r.collection, r.now()), r.articles.Rows(), r.images.Rows())
	if r.report == nil {
		return doc, nil
	}
	if err := r.report.WriteReport(ctx, doc); err != nil {
		return report.Document{}, fmt.Errorf("write report: %w", err)
	}
	r.logger.Info("report written", "articles", len(doc.Data))
	return doc, nil
}

// isItemFailure reports errors that only affect the item being fetched.
func isItemFailure(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedRedirect) || errors.Is(err, domain.ErrArticleNotFound)
}

type nopProgress struct{}

func (nopProgress) Begin(string, int) {}
func (nopProgress) Advance(int)       {}
func (nopProgress) End()              {}
