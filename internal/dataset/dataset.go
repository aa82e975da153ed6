// Package dataset keeps a resumable, keyed table in memory and persists full
// snapshots of it through a checkpoint store.
package dataset

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"VisualContentExtractor/internal/domain"
	"VisualContentExtractor/internal/ports"
)

// Dataset names used as checkpoint identifiers.
const (
	Articles = "articles"
	Images   = "images"
)

// Dataset is a checkpointed table of rows keyed by Row.Key.
type Dataset[R Row[R]] struct {
	name  string
	codec Codec[R]
	store ports.CheckpointStore
	state state[R]

	upgraded []string
}

// Open loads the latest snapshot of name, or starts empty when none exists.
// Columns missing from an older snapshot are added as unset.
func Open[R Row[R]](ctx context.Context, name string, codec Codec[R], store ports.CheckpointStore) (*Dataset[R], error) {
	d := &Dataset[R]{name: name, codec: codec, store: store, state: newState[R]()}

	table, found, err := store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s checkpoint: %w", name, err)
	}
	if !found {
		return d, nil
	}

	for _, col := range codec.Columns() {
		if !slices.Contains(table.Columns, col) {
			d.upgraded = append(d.upgraded, col)
		}
	}

	rows := make([]R, 0, len(table.Rows))
	for i, record := range table.Rows {
		cells := make(map[string]string, len(table.Columns))
		for j, col := range table.Columns {
			if j < len(record) {
				cells[col] = record[j]
			}
		}
		row, ok, err := codec.Decode(cells)
		if err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", name, i+1, err)
		}
		if ok {
			rows = append(rows, row)
		}
	}
	d.state.upsert(rows)
	return d, nil
}

// OpenArticles opens the article dataset.
func OpenArticles(ctx context.Context, store ports.CheckpointStore) (*Dataset[domain.Article], error) {
	return Open[domain.Article](ctx, Articles, ArticleCodec{}, store)
}

// OpenImages opens the image dataset.
func OpenImages(ctx context.Context, store ports.CheckpointStore) (*Dataset[domain.Image], error) {
	return Open[domain.Image](ctx, Images, ImageCodec{}, store)
}

// Name returns the checkpoint identifier.
func (d *Dataset[R]) Name() string { return d.name }

// UpgradedColumns lists the columns Open had to add to the stored snapshot.
func (d *Dataset[R]) UpgradedColumns() []string { return d.upgraded }

// Len returns the number of rows.
func (d *Dataset[R]) Len() int { return len(d.state.order) }

// Get returns the row stored under key.
func (d *Dataset[R]) Get(key string) (R, bool) {
	row, ok := d.state.rows[key]
	return row, ok
}

// All iterates rows in dataset order.
func (d *Dataset[R]) All() iter.Seq[R] {
	return func(yield func(R) bool) {
		for _, key := range d.state.order {
			if !yield(d.state.rows[key]) {
				return
			}
		}
	}
}

// Rows returns a copy of every row in dataset order.
func (d *Dataset[R]) Rows() []R { return d.state.list() }

// Missing iterates the keys whose column is still unset.
func (d *Dataset[R]) Missing(column string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, key := range d.state.order {
			if !d.state.rows[key].IsUnset(column) {
				continue
			}
			if !yield(key) {
				return
			}
		}
	}
}

// CountMissing returns how many rows Missing would yield.
func (d *Dataset[R]) CountMissing(column string) int {
	n := 0
	for range d.Missing(column) {
		n++
	}
	return n
}

// Apply merges fetched rows: completed columns are never overwritten, new
// keys are appended, and duplicate keys in rows keep their first occurrence.
// It returns the number of keys inserted.
func (d *Dataset[R]) Apply(rows ...R) int {
	return d.state.upsert(rows)
}

// Remove drops every row for which drop returns true and reports how many
// rows went away.
func (d *Dataset[R]) Remove(drop func(R) bool) int {
	kept := d.state.order[:0]
	removed := 0
	for _, key := range d.state.order {
		if drop(d.state.rows[key]) {
			delete(d.state.rows, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	d.state.order = kept
	return removed
}

// Snapshot renders the current content as a checkpoint table.
func (d *Dataset[R]) Snapshot() ports.Table {
	table := ports.Table{
		Columns: slices.Clone(d.codec.Columns()),
		Rows:    make([][]string, 0, len(d.state.order)),
	}
	for _, key := range d.state.order {
		table.Rows = append(table.Rows, d.codec.Encode(d.state.rows[key]))
	}
	return table
}

// Persist writes the full snapshot to the checkpoint store.
func (d *Dataset[R]) Persist(ctx context.Context) error {
	if err := d.store.Save(ctx, d.name, d.Snapshot()); err != nil {
		return fmt.Errorf("persist %s checkpoint: %w", d.name, err)
	}
	d.upgraded = nil
	return nil
}
