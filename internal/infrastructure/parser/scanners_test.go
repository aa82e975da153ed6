package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/scanner"
)

type fakeDirectory struct {
	projects []string
	pages    [][]ports.ProjectArticle
	failPage int
}

func (f *fakeDirectory) Projects(context.Context) ([]string, error) {
	return f.projects, nil
}

func (f *fakeDirectory) ProjectArticles(_ context.Context, _ string, page int) (batch.Page[ports.ProjectArticle], error) {
	if page == f.failPage {
		return batch.Page[ports.ProjectArticle]{}, domain.ErrTransient
	}
	return batch.Page[ports.ProjectArticle]{Items: f.pages[page-1], Number: page, TotalPages: len(f.pages)}, nil
}

func titles(articles []domain.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestProjectScannerFiltersUnknownQualities(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{
		projects: []string{"Chemistry"},
		pages: [][]ports.ProjectArticle{
			{
				{Article: "Hydrogen", ArticleLink: "https://en.wikipedia.org/wiki/Hydrogen", Quality: "FA-Class", Importance: "Top-Class"},
				{Article: "Category:Elements", Quality: "Category-Class", Importance: "NA"},
			},
			{
				{Article: "Helium", Quality: "Stub-Class", Importance: "Unknown-Class"},
			},
		},
	}
	s := NewProjectScanner(dir, nil)

	var pagesSeen []int
	got, err := s.Scan(context.Background(), scanner.Request{
		Collection: domain.Collection{Kind: domain.KindProject, Name: "Chemistry"},
		OnPage:     func(done, _ int) { pagesSeen = append(pagesSeen, done) },
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !slices.Equal(titles(got), []string{"Hydrogen", "Helium"}) {
		t.Fatalf("unexpected articles %v", titles(got))
	}
	if got[0].Quality != domain.Set(domain.QualityFA) || got[0].Importance != domain.Set(domain.ImportanceTop) {
		t.Fatalf("grades not normalized: %+v", got[0])
	}
	if got[1].Importance != domain.Set(domain.ImportanceUnassessed) || !got[1].Link.IsEmpty() {
		t.Fatalf("unexpected helium row: %+v", got[1])
	}
	if !got[0].Categories.IsUnset() || !got[0].ImageCount.IsUnset() {
		t.Fatalf("enrichment columns must start unset")
	}
	if !slices.Equal(pagesSeen, []int{1, 2}) {
		t.Fatalf("unexpected page progress %v", pagesSeen)
	}
}

func TestProjectScannerIsAllOrNothing(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{
		pages:    [][]ports.ProjectArticle{{{Article: "A", Quality: "B"}}, {{Article: "B", Quality: "B"}}},
		failPage: 2,
	}
	got, err := NewProjectScanner(dir, nil).Scan(context.Background(), scanner.Request{
		Collection: domain.Collection{Kind: domain.KindProject, Name: "Chemistry"},
	})
	if !errors.Is(err, domain.ErrTransient) || got != nil {
		t.Fatalf("expected transient failure without rows, got %v %v", got, err)
	}
}

func TestProjectScannerValidate(t *testing.T) {
	t.Parallel()

	s := NewProjectScanner(&fakeDirectory{projects: []string{"Chemistry"}}, nil)
	ctx := context.Background()
	if err := s.Validate(ctx, domain.Collection{Kind: domain.KindProject, Name: "Chemistry"}); err != nil {
		t.Fatalf("known project rejected: %v", err)
	}
	err := s.Validate(ctx, domain.Collection{Kind: domain.KindProject, Name: "Alchemy"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestListScannerReadsFirstColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "\xEF\xBB\xBFtitle,notes\nMona Lisa,painting\n\n  The Starry Night ,\n\"Guernica, 1937\",x\n"
	if err := os.WriteFile(filepath.Join(dir, "museums.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	s := NewListScanner(dir, true)
	c := domain.Collection{Kind: domain.KindList, Name: "museums"}
	if err := s.Validate(context.Background(), c); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got, err := s.Scan(context.Background(), scanner.Request{Collection: c})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"Mona Lisa", "The Starry Night", "Guernica, 1937"}
	if !slices.Equal(titles(got), want) {
		t.Fatalf("unexpected titles %q", titles(got))
	}
	if !got[0].Quality.IsUnset() {
		t.Fatalf("list articles must start unassessed")
	}
}

func TestListScannerLists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"museums.csv", "elements.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("article\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	names, err := NewListScanner(dir, true).Lists()
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if !slices.Equal(names, []string{"elements", "museums"}) {
		t.Fatalf("unexpected lists %v", names)
	}

	none, err := NewListScanner(filepath.Join(dir, "missing"), true).Lists()
	if err != nil || len(none) != 0 {
		t.Fatalf("missing input dir: %v %v", none, err)
	}
}

func TestListScannerMissingFile(t *testing.T) {
	t.Parallel()

	s := NewListScanner(t.TempDir(), true)
	c := domain.Collection{Kind: domain.KindList, Name: "nothing"}
	if err := s.Validate(context.Background(), c); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := s.Scan(context.Background(), scanner.Request{Collection: c}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestStrategySourceResolvesByKind(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(NewProjectScanner(&fakeDirectory{projects: []string{"Chemistry"}, pages: [][]ports.ProjectArticle{{}}}, nil))
	src := NewStrategySource(reg, nil)

	ctx := context.Background()
	if err := src.Validate(ctx, domain.Collection{Kind: domain.KindList, Name: "museums"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected missing scanner to be a configuration error, got %v", err)
	}
	if err := src.Validate(ctx, domain.Collection{Kind: domain.KindProject, Name: " "}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected blank name to be rejected, got %v", err)
	}

	got, err := src.Discover(ctx, domain.Collection{Kind: domain.KindProject, Name: "Chemistry"}, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty listing, got %v %v", got, err)
	}
}
