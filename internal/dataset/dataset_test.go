package dataset

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
)

type memStore struct {
	tables map[string]ports.Table
	saves  int
}

func newMemStore() *memStore {
	return &memStore{tables: map[string]ports.Table{}}
}

func (m *memStore) Load(_ context.Context, name string) (ports.Table, bool, error) {
	t, ok := m.tables[name]
	return t, ok, nil
}

func (m *memStore) Save(_ context.Context, name string, t ports.Table) error {
	m.tables[name] = t
	m.saves++
	return nil
}

func article(title, categories string) domain.Article {
	a := domain.NewArticle(title)
	if categories != "" {
		a.Categories = domain.Set(categories)
	}
	return a
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	existing := []domain.Article{article("A", ""), article("B", "x")}
	fetched := []domain.Article{article("A", "cat-a"), article("C", "cat-c")}

	once := Merge(existing, fetched)
	twice := Merge(once, fetched)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\n%+v\n%+v", once, twice)
	}
	if !reflect.DeepEqual(Merge(existing, fetched), once) {
		t.Fatalf("merge not deterministic")
	}
}

func TestMergeFillsMissingOnly(t *testing.T) {
	t.Parallel()

	existing := []domain.Article{article("A", "kept")}
	fetched := []domain.Article{article("A", "replacement")}
	fetched[0].ImageCount = domain.Set(3)

	got := Merge(existing, fetched)
	if len(got) != 1 {
		t.Fatalf("expected one row, got %d", len(got))
	}
	if got[0].Categories != domain.Set("kept") {
		t.Fatalf("completed column overwritten: %+v", got[0].Categories)
	}
	if got[0].ImageCount != domain.Set(3) {
		t.Fatalf("missing column not filled: %+v", got[0].ImageCount)
	}
}

func TestMergeKeepsFirstDuplicateAndOrder(t *testing.T) {
	t.Parallel()

	existing := []domain.Article{article("B", ""), article("A", "")}
	fetched := []domain.Article{article("C", "first"), article("A", "a"), article("C", "second")}

	got := Merge(existing, fetched)
	var keys []string
	for _, row := range got {
		keys = append(keys, row.Key())
	}
	if !slices.Equal(keys, []string{"B", "A", "C"}) {
		t.Fatalf("unexpected order: %v", keys)
	}
	if got[2].Categories != domain.Set("first") {
		t.Fatalf("expected first duplicate to win, got %+v", got[2].Categories)
	}
	if got[1].Categories != domain.Set("a") {
		t.Fatalf("existing unset column not filled: %+v", got[1].Categories)
	}
}

func TestDatasetMissingAndApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	ds, err := OpenArticles(ctx, store)
	if err != nil {
		t.Fatalf("OpenArticles: %v", err)
	}
	if ds.Len() != 0 {
		t.Fatalf("expected empty dataset")
	}

	if n := ds.Apply(article("A", ""), article("B", "done"), article("A", "dup")); n != 2 {
		t.Fatalf("expected 2 inserts, got %d", n)
	}
	missing := slices.Collect(ds.Missing(domain.ColCategories))
	if !slices.Equal(missing, []string{"A"}) {
		t.Fatalf("unexpected missing keys: %v", missing)
	}
	if ds.CountMissing(domain.ColImageCount) != 2 {
		t.Fatalf("expected both rows to miss n_images")
	}

	ds.Apply(article("A", domain.NoCategory))
	if ds.CountMissing(domain.ColCategories) != 0 {
		t.Fatalf("sentinel should mark the row as processed")
	}
}

func TestPersistRoundTripAndIdempotence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	ds, err := OpenImages(ctx, store)
	if err != nil {
		t.Fatalf("OpenImages: %v", err)
	}

	ok := domain.ImageInfo{Title: "File:Ünïcode.png", URL: "u", PageURL: "p", ThumbnailURL: "t", Width: 800, Height: 10, Found: true}
	ds.Apply(ok.Patch("Zürich"))
	ds.Apply(domain.ImageInfo{Title: "File:Gone.jpg"}.Patch("Zürich"))
	ds.Apply(domain.NewImage("Bern", "File:Later.gif"))

	if err := ds.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	first := store.tables[Images]
	if err := ds.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if !reflect.DeepEqual(first, store.tables[Images]) {
		t.Fatalf("persisting twice changed the snapshot")
	}

	reloaded, err := OpenImages(ctx, store)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Rows(), ds.Rows()) {
		t.Fatalf("reloaded rows differ:\n%+v\n%+v", reloaded.Rows(), ds.Rows())
	}
	gone, _ := reloaded.Get("Zürich|File:Gone.jpg")
	if !gone.URL.IsEmpty() {
		t.Fatalf("empty marker lost on reload: %+v", gone.URL)
	}
	later, _ := reloaded.Get("Bern|File:Later.gif")
	if !later.URL.IsUnset() {
		t.Fatalf("unset marker lost on reload: %+v", later.URL)
	}
}

func TestOpenUpgradesMissingColumns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.tables[Articles] = ports.Table{
		Columns: []string{"article", "article_link", "importance", "quality"},
		Rows: [][]string{
			{"Hydrogen", "https://en.wikipedia.org/wiki/Hydrogen", "Top", "FA"},
			{"", "", "", ""},
		},
	}

	ds, err := OpenArticles(ctx, store)
	if err != nil {
		t.Fatalf("OpenArticles: %v", err)
	}
	if !slices.Equal(ds.UpgradedColumns(), []string{domain.ColCategories, domain.ColImageCount}) {
		t.Fatalf("unexpected upgraded columns: %v", ds.UpgradedColumns())
	}
	if ds.Len() != 1 {
		t.Fatalf("expected blank row to be skipped, got %d rows", ds.Len())
	}
	row, _ := ds.Get("Hydrogen")
	if row.Quality != domain.Set(domain.QualityFA) || !row.Categories.IsUnset() {
		t.Fatalf("unexpected row: %+v", row)
	}

	if err := ds.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if !slices.Equal(store.tables[Articles].Columns, domain.ArticleColumns) {
		t.Fatalf("persisted header not upgraded: %v", store.tables[Articles].Columns)
	}
}

func TestDecodeIntAcceptsFloatRendering(t *testing.T) {
	t.Parallel()

	got, err := decodeInt("1920.0")
	if err != nil || got != domain.Set(1920) {
		t.Fatalf("decodeInt(1920.0) = %+v, %v", got, err)
	}
	if _, err := decodeInt("12.5"); err == nil {
		t.Fatalf("expected fractional value to fail")
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	ds, _ := OpenArticles(context.Background(), newMemStore())
	ds.Apply(article("A", ""), article("B", "x"), article("C", ""))
	removed := ds.Remove(func(a domain.Article) bool { return a.Categories.IsUnset() })
	if removed != 2 || ds.Len() != 1 {
		t.Fatalf("removed=%d len=%d", removed, ds.Len())
	}
	if _, ok := ds.Get("A"); ok {
		t.Fatalf("A should be gone")
	}
}
