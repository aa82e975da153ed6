package parser

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/scanner"
)

// ProjectScanner lists the assessed articles of a WikiProject.
type ProjectScanner struct {
	directory ports.ProjectDirectory
	logger    *slog.Logger
}

var (
	_ scanner.Scanner   = (*ProjectScanner)(nil)
	_ scanner.Validator = (*ProjectScanner)(nil)
)

// NewProjectScanner wires the project directory.
func NewProjectScanner(dir ports.ProjectDirectory, log *slog.Logger) *ProjectScanner {
	if log == nil {
		log = slog.Default()
	}
	return &ProjectScanner{directory: dir, logger: log}
}

// Name identifies the strategy inside the registry.
func (p *ProjectScanner) Name() string {
	return string(domain.KindProject)
}

// Validate checks the project id against the directory listing.
func (p *ProjectScanner) Validate(ctx context.Context, c domain.Collection) error {
	names, err := p.directory.Projects(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(names, c.Name) {
		return fmt.Errorf("%w: unknown WikiProject %q", domain.ErrConfiguration, c.Name)
	}
	return nil
}

// Scan walks every listing page. Rows whose quality is not a known grade
// (categories, redirects, templates) are dropped.
func (p *ProjectScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	fetch := func(ctx context.Context, n int) (batch.Page[ports.ProjectArticle], error) {
		return p.directory.ProjectArticles(ctx, req.Collection.Name, n)
	}

	rows, err := batch.Paginate(ctx, fetch, req.OnPage)
	if err != nil {
		return nil, fmt.Errorf("list project %s: %w", req.Collection.Name, err)
	}

	articles := make([]domain.Article, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		quality, ok := domain.ParseQuality(row.Quality)
		if !ok || row.Article == "" {
			skipped++
			continue
		}
		a := domain.NewArticle(row.Article)
		a.Link = domain.Text(row.ArticleLink)
		a.Quality = domain.Set(quality)
		a.Importance = domain.Set(domain.ParseImportance(row.Importance))
		articles = append(articles, a)
	}

	p.logger.Debug("project listed", "project", req.Collection.Name, "articles", len(articles), "skipped", skipped)
	return articles, nil
}
