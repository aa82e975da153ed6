package usecase

import (
	"context"

	"VisualContentExtractor/internal/dataset"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
)

// PhaseStatus is the completeness of one enrichment phase.
type PhaseStatus struct {
	Phase Phase
	Done  int
	Total int
}

// Complete reports whether nothing is left to fetch.
func (s PhaseStatus) Complete() bool { return s.Done >= s.Total }

// Status summarizes a checkpoint without touching the network.
type Status struct {
	Articles int
	Images   int
	Phases   []PhaseStatus
}

// Inspect reads the checkpoints in store and reports per-phase progress.
func Inspect(ctx context.Context, store ports.CheckpointStore) (Status, error) {
	articles, err := dataset.OpenArticles(ctx, store)
	if err != nil {
		return Status{}, err
	}
	images, err := dataset.OpenImages(ctx, store)
	if err != nil {
		return Status{}, err
	}

	pending := images.CountMissing(domain.ColURL)
	n := articles.Len()
	return Status{
		Articles: n,
		Images:   images.Len(),
		Phases: []PhaseStatus{
			{Phase: PhaseAssess, Done: n - articles.CountMissing(domain.ColArticleLink), Total: n},
			{Phase: PhaseCategories, Done: n - articles.CountMissing(domain.ColCategories), Total: n},
			{Phase: PhaseImageLists, Done: n - articles.CountMissing(domain.ColImageCount), Total: n},
			{Phase: PhaseImageInfo, Done: images.Len() - pending, Total: images.Len()},
		},
	}, nil
}
