package scanner

import (
	"context"
	"fmt"

	"VisualContentExtractor/internal/domain"
)

// Request carries all parameters required to discover a collection.
type Request struct {
	Collection domain.Collection
	// OnPage, when set, is told about listing progress.
	OnPage func(done, total int)
}

// Scanner discovers the member articles of one collection kind.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Article, error)
}

// Validator is implemented by scanners that can check a collection exists
// before any extraction starts.
type Validator interface {
	Validate(ctx context.Context, c domain.Collection) error
}

// Registry keeps a mapping from collection kinds to their scanners.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns the scanner for a collection kind.
func (r *Registry) Resolve(kind domain.CollectionKind) (Scanner, error) {
	if scanner, ok := r.scanners[string(kind)]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("%w: no scanner for collection kind %q", domain.ErrConfiguration, kind)
}
