package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/report"
)

func sampleTable() ports.Table {
	return ports.Table{
		Columns: []string{"article", "categories", "n_images"},
		Rows: [][]string{
			{"Zürich", "Städte der Schweiz,Orte am Zürichsee", "3"},
			{"Tōkyō", "<empty>", ""},
			{"Comma, Inc.", "Quote \"x\"", "0"},
		},
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	store := NewCSVStore(dir, "wp_chemistry")

	if _, found, err := store.Load(ctx, "articles"); err != nil || found {
		t.Fatalf("expected missing checkpoint, found=%v err=%v", found, err)
	}

	table := sampleTable()
	if err := store.Save(ctx, "articles", table); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "wp_chemistry.csv"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !bytes.HasPrefix(raw, utf8BOM) {
		t.Fatalf("checkpoint lacks BOM")
	}

	got, found, err := store.Load(ctx, "articles")
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, table) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, table)
	}

	if err := store.Save(ctx, "articles", got); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	again, _ := os.ReadFile(filepath.Join(dir, "wp_chemistry.csv"))
	if !bytes.Equal(raw, again) {
		t.Fatalf("re-saving an unchanged table changed the file")
	}
}

func TestCSVStoreDatasetPaths(t *testing.T) {
	t.Parallel()

	store := NewCSVStore("out", "list_museums")
	if got := store.Path("articles"); got != filepath.Join("out", "list_museums.csv") {
		t.Fatalf("unexpected articles path %q", got)
	}
	if got := store.Path("images"); got != filepath.Join("out", "list_museums_images.csv") {
		t.Fatalf("unexpected images path %q", got)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "checkpoint.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}

	if _, found, err := store.Load(ctx, "images"); err != nil || found {
		t.Fatalf("expected missing dataset, found=%v err=%v", found, err)
	}

	table := sampleTable()
	if err := store.Save(ctx, "images", table); err != nil {
		t.Fatalf("Save: %v", err)
	}

	shorter := ports.Table{Columns: table.Columns, Rows: table.Rows[:1]}
	if err := store.Save(ctx, "images", shorter); err != nil {
		t.Fatalf("Save shorter: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, found, err := reopened.Load(ctx, "images")
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, shorter) {
		t.Fatalf("unexpected table:\n got %+v\nwant %+v", got, shorter)
	}
	if _, found, _ := reopened.Load(ctx, "articles"); found {
		t.Fatalf("datasets must be isolated")
	}
}

func TestReportFileWritesCompactJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	writer := NewReportFile(path)

	a := domain.NewArticle("AT&T")
	a.Categories = domain.Set("Companies <US>")
	doc := report.Assemble(report.Info{Name: "List companies", Date: "2024-05-01"}, []domain.Article{a}, nil)

	if err := writer.WriteReport(context.Background(), doc); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"AT&T"`)) || !bytes.Contains(raw, []byte(`"Companies <US>"`)) {
		t.Fatalf("report escaped html characters: %s", raw)
	}
	if bytes.HasSuffix(raw, []byte("\n")) {
		t.Fatalf("report should not end with a newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
}
