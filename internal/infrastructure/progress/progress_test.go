package progress

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogThrottlesUpdates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLog(slog.New(slog.NewTextHandler(&buf, nil)), time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	l.Begin("categories", 150)
	l.Advance(50)
	clock = clock.Add(2 * time.Minute)
	l.Advance(50)
	l.End()
	l.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected begin, one update and end, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "done=100") || !strings.Contains(lines[2], "finished=true") {
		t.Fatalf("unexpected log output:\n%s", buf.String())
	}
}

func TestBarWritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	b := NewBar(&buf)
	b.Begin("image-info", 4)
	b.Advance(4)
	b.End()
	b.End()

	if !strings.Contains(buf.String(), "image-info") {
		t.Fatalf("bar did not render phase name: %q", buf.String())
	}
}
