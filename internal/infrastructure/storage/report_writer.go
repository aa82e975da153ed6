package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"VisualContentExtractor/internal/ports"
	"VisualContentExtractor/internal/report"
)

// ReportFile writes the final document as JSON next to the checkpoints.
type ReportFile struct {
	path string
}

var _ ports.ReportWriter = (*ReportFile)(nil)

// NewReportFile targets the given file path.
func NewReportFile(path string) *ReportFile {
	return &ReportFile{path: path}
}

// Path returns the report location.
func (r *ReportFile) Path() string { return r.path }

// WriteReport replaces the report file with doc.
func (r *ReportFile) WriteReport(ctx context.Context, doc report.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return writeAtomic(r.path, bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
