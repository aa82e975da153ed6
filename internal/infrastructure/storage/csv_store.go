package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"VisualContentExtractor/internal/ports"
)

// utf8BOM is written ahead of every checkpoint so spreadsheet tools detect
// the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore keeps one CSV file per dataset inside a workspace directory.
// The "articles" dataset lives in <prefix>.csv, any other dataset in
// <prefix>_<name>.csv.
type CSVStore struct {
	dir    string
	prefix string
}

var _ ports.CheckpointStore = (*CSVStore)(nil)

// NewCSVStore binds the store to a directory and file prefix.
func NewCSVStore(dir, prefix string) *CSVStore {
	return &CSVStore{dir: dir, prefix: prefix}
}

// Path returns the checkpoint file for a dataset.
func (s *CSVStore) Path(dataset string) string {
	if dataset == "articles" {
		return filepath.Join(s.dir, s.prefix+".csv")
	}
	return filepath.Join(s.dir, s.prefix+"_"+dataset+".csv")
}

// Load reads the dataset file; a missing file is reported as not found.
func (s *CSVStore) Load(ctx context.Context, dataset string) (ports.Table, bool, error) {
	if err := ctx.Err(); err != nil {
		return ports.Table{}, false, err
	}

	raw, err := os.ReadFile(s.Path(dataset))
	if errors.Is(err, os.ErrNotExist) {
		return ports.Table{}, false, nil
	}
	if err != nil {
		return ports.Table{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	table, err := decodeCSV(bytes.TrimPrefix(raw, utf8BOM))
	if err != nil {
		return ports.Table{}, false, fmt.Errorf("parse checkpoint %s: %w", s.Path(dataset), err)
	}
	return table, true, nil
}

// Save replaces the dataset file. The snapshot is written to a temporary
// file in the same directory and renamed over the previous one.
func (s *CSVStore) Save(ctx context.Context, dataset string, table ports.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure checkpoint directory: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	if err := encodeCSV(&buf, table); err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return writeAtomic(s.Path(dataset), buf.Bytes())
}

func decodeCSV(raw []byte) (ports.Table, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return ports.Table{}, nil
	}
	if err != nil {
		return ports.Table{}, err
	}

	table := ports.Table{Columns: header}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ports.Table{}, err
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func encodeCSV(w io.Writer, table ports.Table) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return bw.Flush()
}

// writeAtomic replaces path with data via a synced temporary file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
