package ports

import (
	"context"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/report"
)

// ArticleSource discovers the member articles of a collection.
type ArticleSource interface {
	Validate(ctx context.Context, c domain.Collection) error
	Discover(ctx context.Context, c domain.Collection, onPage func(done, total int)) ([]domain.Article, error)
}

// MetadataSource answers collection-level questions about articles and files.
type MetadataSource interface {
	Categories(ctx context.Context, titles []string) ([]domain.CategorySet, error)
	ImageList(ctx context.Context, article string) ([]string, error)
	ImageInfo(ctx context.Context, titles []string) ([]domain.ImageInfo, error)
	Assessment(ctx context.Context, article string) (domain.Assessment, error)
}

// ProjectArticle is one row of a project listing.
type ProjectArticle struct {
	Article     string
	ArticleLink string
	Quality     string
	Importance  string
}

// ProjectDirectory lists projects and their assessed articles.
type ProjectDirectory interface {
	Projects(ctx context.Context) ([]string, error)
	ProjectArticles(ctx context.Context, project string, page int) (batch.Page[ProjectArticle], error)
}

// Table is a header plus string rows, the unit a checkpoint store persists.
type Table struct {
	Columns []string
	Rows    [][]string
}

// CheckpointStore persists complete dataset snapshots by name.
type CheckpointStore interface {
	Load(ctx context.Context, dataset string) (Table, bool, error)
	Save(ctx context.Context, dataset string, table Table) error
}

// ReportWriter stores the assembled report document.
type ReportWriter interface {
	WriteReport(ctx context.Context, doc report.Document) error
}

// Progress receives phase-level completion counts.
type Progress interface {
	Begin(phase string, total int)
	Advance(n int)
	End()
}
