package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/scanner"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ListScanner reads a user-supplied CSV whose first column holds titles.
type ListScanner struct {
	inputDir  string
	hasHeader bool
}

var (
	_ scanner.Scanner   = (*ListScanner)(nil)
	_ scanner.Validator = (*ListScanner)(nil)
)

// NewListScanner reads lists from inputDir/<name>.csv.
func NewListScanner(inputDir string, hasHeader bool) *ListScanner {
	return &ListScanner{inputDir: inputDir, hasHeader: hasHeader}
}

// Name identifies the strategy inside the registry.
func (l *ListScanner) Name() string {
	return string(domain.KindList)
}

// Path returns the input file for a list.
func (l *ListScanner) Path(name string) string {
	return filepath.Join(l.inputDir, name+".csv")
}

// Lists returns the names of the list files in the input directory, sorted.
// A missing directory holds no lists.
func (l *ListScanner) Lists() ([]string, error) {
	entries, err := os.ReadDir(l.inputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".csv")
		if e.IsDir() || !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Validate checks that the list file exists.
func (l *ListScanner) Validate(_ context.Context, c domain.Collection) error {
	info, err := os.Stat(l.Path(c.Name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: list file %s not found", domain.ErrConfiguration, l.Path(c.Name))
	}
	if err != nil {
		return fmt.Errorf("stat list file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrConfiguration, l.Path(c.Name))
	}
	return nil
}

// Scan returns one unassessed article per non-blank title, in file order.
func (l *ListScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(l.Path(req.Collection.Name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: list file %s not found", domain.ErrConfiguration, l.Path(req.Collection.Name))
	}
	if err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var articles []domain.Article
	for line := 0; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse list file: %v", domain.ErrConfiguration, err)
		}
		if line == 0 && l.hasHeader {
			continue
		}
		if len(record) == 0 {
			continue
		}
		title := strings.TrimSpace(record[0])
		if title == "" {
			continue
		}
		articles = append(articles, domain.NewArticle(title))
	}

	if req.OnPage != nil {
		req.OnPage(1, 1)
	}
	return articles, nil
}
