// Package workspace owns the per-collection output directory: its lock, its
// checkpoint files and the report.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"VisualContentExtractor/internal/config"
	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/infrastructure/storage"
	"VisualContentExtractor/internal/ports"
)

const lockName = ".lock"

// ErrBusy is returned when another run holds the workspace.
var ErrBusy = errors.New("workspace is used by another run")

// Workspace is the output directory of one collection.
type Workspace struct {
	dir        string
	collection domain.Collection
	lock       *flock.Flock
}

// Dir returns the directory of a collection below outputDir.
func Dir(outputDir string, c domain.Collection) string {
	return filepath.Join(outputDir, c.Slug())
}

// Open creates the directory if needed and takes its exclusive lock.
func Open(outputDir string, c domain.Collection) (*Workspace, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	dir := Dir(outputDir, c)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, dir)
	}

	return &Workspace{dir: dir, collection: c, lock: lock}, nil
}

// Close releases the lock.
func (w *Workspace) Close() error {
	if w.lock == nil {
		return nil
	}
	return w.lock.Unlock()
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// ReportPath is where the JSON report is written.
func (w *Workspace) ReportPath() string {
	return filepath.Join(w.dir, w.collection.Slug()+".json")
}

// SQLitePath is the database used by the sqlite checkpoint format.
func (w *Workspace) SQLitePath() string {
	return filepath.Join(w.dir, w.collection.Slug()+".db")
}

// Store opens the checkpoint store for the configured format. The returned
// closer must be called once the store is no longer used.
func (w *Workspace) Store(format string) (ports.CheckpointStore, io.Closer, error) {
	switch format {
	case config.FormatCSV, "":
		return storage.NewCSVStore(w.dir, w.collection.Slug()), nopCloser{}, nil
	case config.FormatSQLite:
		store, err := storage.OpenSQLiteStore(w.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown checkpoint format %q", domain.ErrConfiguration, format)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// File is one file of the workspace.
type File struct {
	Name string
	Size int64
}

// Files lists the checkpoint and report files, sorted by name.
func (w *Workspace) Files() ([]File, error) {
	return listFiles(w.dir)
}

// HasData reports whether any checkpoint or report exists.
func (w *Workspace) HasData() (bool, error) {
	files, err := w.Files()
	return len(files) > 0, err
}

// Reset deletes every checkpoint and the report, keeping the lock.
func (w *Workspace) Reset() error {
	files, err := w.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(filepath.Join(w.dir, f.Name)); err != nil {
			return fmt.Errorf("remove %s: %w", f.Name, err)
		}
	}
	return nil
}

// Inspect lists the files of a workspace without locking it.
func Inspect(outputDir string, c domain.Collection) ([]File, error) {
	return listFiles(Dir(outputDir, c))
}

func listFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || e.Name() == lockName || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, File{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
