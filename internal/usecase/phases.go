package usecase

import (
	"context"
	"slices"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
)

// checkpointer counts processed items and persists every n of them.
type checkpointer struct {
	r       *run
	every   int
	pending int
}

func (c *checkpointer) done(ctx context.Context, n int) error {
	c.r.progress.Advance(n)
	c.pending += n
	if c.pending < c.every {
		return nil
	}
	c.pending = 0
	return c.r.persist(ctx)
}

func (r *run) checkpointer() *checkpointer {
	return &checkpointer{r: r, every: r.persistEvery}
}

// discover seeds the article dataset. A project listing is fetched only
// once; a list file is re-read so titles added to it later are picked up.
func (r *run) discover(ctx context.Context) error {
	if r.collection.Kind == domain.KindProject && r.articles.Len() > 0 {
		r.logger.Info("articles already listed, skipping discovery", "articles", r.articles.Len())
		return nil
	}

	began := false
	onPage := func(done, total int) {
		if !began {
			r.progress.Begin(string(PhaseDiscover), total)
			began = true
		}
		r.progress.Advance(1)
	}
	defer func() {
		if began {
			r.progress.End()
		}
	}()

	found, err := r.source.Discover(ctx, r.collection, onPage)
	if err != nil {
		return err
	}
	added := r.articles.Apply(found...)
	r.logger.Info("articles discovered", "listed", len(found), "added", added, "total", r.articles.Len())
	return r.persist(ctx)
}

// assess fills link, quality and importance for articles that lack a link.
// Project articles carry these from the listing and are skipped.
func (r *run) assess(ctx context.Context) error {
	titles := slices.Collect(r.articles.Missing(domain.ColArticleLink))
	if len(titles) == 0 {
		return nil
	}

	r.progress.Begin(string(PhaseAssess), len(titles))
	defer r.progress.End()

	cp := r.checkpointer()
	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, err := r.metadata.Assessment(ctx, title)
		if err != nil {
			return err
		}

		row := domain.NewArticle(title)
		row.Link = domain.Text(a.URL)
		row.Quality = domain.Set(a.Quality)
		row.Importance = domain.Set(a.Importance)
		r.articles.Apply(row)

		if err := cp.done(ctx, 1); err != nil {
			return err
		}
	}
	return r.persist(ctx)
}

// categories fills the categories column in batches.
func (r *run) categories(ctx context.Context) error {
	titles := slices.Collect(r.articles.Missing(domain.ColCategories))
	if len(titles) == 0 {
		return nil
	}

	r.progress.Begin(string(PhaseCategories), len(titles))
	defer r.progress.End()

	cp := r.checkpointer()
	err := batch.Each(ctx, titles, r.batchSize, func(ctx context.Context, chunk []string) error {
		sets, err := r.metadata.Categories(ctx, chunk)
		if err != nil {
			return err
		}

		rows := make([]domain.Article, 0, len(sets))
		for _, s := range sets {
			row := domain.NewArticle(s.Article)
			row.Categories = domain.Set(s.Categories)
			rows = append(rows, row)
		}
		r.articles.Apply(rows...)
		return cp.done(ctx, len(chunk))
	})
	if err != nil {
		return err
	}
	return r.persist(ctx)
}

// imageLists discovers the files each article references and records the
// image count. Articles whose body cannot be read get zero images.
func (r *run) imageLists(ctx context.Context) error {
	titles := slices.Collect(r.articles.Missing(domain.ColImageCount))
	if len(titles) == 0 {
		return nil
	}

	r.progress.Begin(string(PhaseImageLists), len(titles))
	defer r.progress.End()

	cp := r.checkpointer()
	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return err
		}

		files, err := r.metadata.ImageList(ctx, title)
		switch {
		case isItemFailure(err):
			r.logger.Warn("article body unusable, counting zero images", "article", title, "err", err)
			files = nil
		case err != nil:
			return err
		}

		images := make([]domain.Image, 0, len(files))
		for _, f := range files {
			images = append(images, domain.NewImage(title, f))
		}
		r.images.Apply(images...)

		row := domain.NewArticle(title)
		row.ImageCount = domain.Set(len(files))
		r.articles.Apply(row)

		if err := cp.done(ctx, 1); err != nil {
			return err
		}
	}
	return r.persist(ctx)
}

// imageInfo resolves metadata once per distinct file title and applies it to
// every row referencing that title. Rows left without a URL are dropped when
// the phase completes.
func (r *run) imageInfo(ctx context.Context) error {
	owners := make(map[string][]string)
	var titles []string
	for img := range r.images.All() {
		if !img.URL.IsUnset() {
			continue
		}
		if _, seen := owners[img.Title]; !seen {
			titles = append(titles, img.Title)
		}
		owners[img.Title] = append(owners[img.Title], img.Article)
	}

	if len(titles) > 0 {
		r.progress.Begin(string(PhaseImageInfo), len(titles))
		cp := r.checkpointer()
		err := batch.Each(ctx, titles, r.batchSize, func(ctx context.Context, chunk []string) error {
			infos, err := r.metadata.ImageInfo(ctx, chunk)
			if err != nil {
				return err
			}

			var rows []domain.Image
			for _, info := range infos {
				for _, article := range owners[info.Title] {
					rows = append(rows, info.Patch(article))
				}
			}
			r.images.Apply(rows...)
			return cp.done(ctx, len(chunk))
		})
		r.progress.End()
		if err != nil {
			return err
		}
	}

	dropped := r.images.Remove(func(img domain.Image) bool {
		return !img.URL.IsUnset() && !img.Resolved()
	})
	if dropped > 0 {
		r.logger.Info("dropped unresolved images", "count", dropped)
	}
	return r.persist(ctx)
}
