package parser

import (
	"context"
	"fmt"
	"log/slog"

	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry.
func NewStrategySource(reg *scanner.Registry, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		logger:   log,
	}
}

// Validate rejects collections whose scanner is missing or which the scanner
// reports as unknown.
func (s *StrategySource) Validate(ctx context.Context, c domain.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	strategy, err := s.resolve(c)
	if err != nil {
		return err
	}
	if v, ok := strategy.(scanner.Validator); ok {
		if err := v.Validate(ctx, c); err != nil {
			return fmt.Errorf("validate %s: %w", c.Slug(), err)
		}
	}
	return nil
}

// Discover runs the scanner registered for the collection kind.
func (s *StrategySource) Discover(ctx context.Context, c domain.Collection, onPage func(done, total int)) ([]domain.Article, error) {
	strategy, err := s.resolve(c)
	if err != nil {
		return nil, err
	}

	s.debug("discover", "collection", c.Slug(), "scanner", strategy.Name())
	articles, err := strategy.Scan(ctx, scanner.Request{Collection: c, OnPage: onPage})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.Slug(), err)
	}
	s.debug("discovered articles", "collection", c.Slug(), "count", len(articles))
	return articles, nil
}

func (s *StrategySource) resolve(c domain.Collection) (scanner.Scanner, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	return s.registry.Resolve(c.Kind)
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
