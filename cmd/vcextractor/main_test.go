package main

import (
	"bytes"
	"strings"
	"testing"

	"VisualContentExtractor/internal/app"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/usecase"
	"VisualContentExtractor/internal/workspace"
)

func TestCollectionFromArgs(t *testing.T) {
	t.Parallel()

	c, err := collectionFromArgs([]string{"project", "Chemistry"})
	if err != nil || c.Kind != domain.KindProject {
		t.Fatalf("unexpected collection %+v: %v", c, err)
	}
	if c, err := collectionFromArgs([]string{"wp", "Chemistry"}); err != nil || c.Kind != domain.KindProject {
		t.Fatalf("slug kind not accepted: %+v %v", c, err)
	}
	if _, err := collectionFromArgs([]string{"category", "Chemistry"}); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestRenderStatus(t *testing.T) {
	t.Parallel()

	c := domain.Collection{Kind: domain.KindList, Name: "museums"}
	if out := renderStatus(c, app.CollectionStatus{Dir: "output/list_museums"}); !strings.Contains(out, "nothing extracted yet") {
		t.Fatalf("unexpected empty status %q", out)
	}

	out := renderStatus(c, app.CollectionStatus{
		Dir:   "output/list_museums",
		Files: []workspace.File{{Name: "list_museums.csv", Size: 2048}},
		Status: usecase.Status{
			Articles: 1200,
			Images:   3,
			Phases: []usecase.PhaseStatus{
				{Phase: usecase.PhaseCategories, Done: 1200, Total: 1200},
				{Phase: usecase.PhaseImageInfo, Done: 1, Total: 3},
			},
		},
	})
	for _, want := range []string{"1,200", "complete", "pending", "2.0 kB", "list_museums.csv"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLists(t *testing.T) {
	t.Parallel()

	out := renderLists([]string{"elements", "museums"})
	for _, want := range []string{"elements.csv", "museums.csv"} {
		if !strings.Contains(out, want) {
			t.Fatalf("lists output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractFlagsConflict(t *testing.T) {
	t.Parallel()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"list", "museums", "--keep", "--fresh"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected flag conflict, got %v", err)
	}
}
