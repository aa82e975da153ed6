package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"VisualContentExtractor/internal/ports"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// rowsPerInsert bounds the number of rows sent in one INSERT statement.
const rowsPerInsert = 200

// SQLiteStore keeps every dataset of a workspace in one SQLite file. Each
// Save replaces a dataset inside a single transaction.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ ports.CheckpointStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) the database and applies migrations.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the dataset; a dataset without stored columns is not found.
func (s *SQLiteStore) Load(ctx context.Context, dataset string) (ports.Table, bool, error) {
	query, args, err := sq.Select("name").
		From("checkpoint_columns").
		Where(sq.Eq{"dataset": dataset}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return ports.Table{}, false, fmt.Errorf("build columns query: %w", err)
	}

	columns, err := queryStrings(ctx, s.db, query, args...)
	if err != nil {
		return ports.Table{}, false, fmt.Errorf("query columns: %w", err)
	}
	if len(columns) == 0 {
		return ports.Table{}, false, nil
	}

	query, args, err = sq.Select("cells").
		From("checkpoint_rows").
		Where(sq.Eq{"dataset": dataset}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return ports.Table{}, false, fmt.Errorf("build rows query: %w", err)
	}

	encoded, err := queryStrings(ctx, s.db, query, args...)
	if err != nil {
		return ports.Table{}, false, fmt.Errorf("query rows: %w", err)
	}

	table := ports.Table{Columns: columns, Rows: make([][]string, 0, len(encoded))}
	for i, raw := range encoded {
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return ports.Table{}, false, fmt.Errorf("decode row %d: %w", i, err)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, true, nil
}

// Save replaces the stored dataset with table.
func (s *SQLiteStore) Save(ctx context.Context, dataset string, table ports.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkpoint tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range []string{"checkpoint_columns", "checkpoint_rows"} {
		query, args, err := sq.Delete(name).Where(sq.Eq{"dataset": dataset}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}

	if len(table.Columns) > 0 {
		insert := sq.Insert("checkpoint_columns").Columns("dataset", "position", "name")
		for i, col := range table.Columns {
			insert = insert.Values(dataset, i, col)
		}
		if err := execBuilder(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert columns: %w", err)
		}
	}

	for start := 0; start < len(table.Rows); start += rowsPerInsert {
		end := min(start+rowsPerInsert, len(table.Rows))
		insert := sq.Insert("checkpoint_rows").Columns("dataset", "position", "cells")
		for pos := start; pos < end; pos++ {
			cells, err := json.Marshal(table.Rows[pos])
			if err != nil {
				return fmt.Errorf("encode row %d: %w", pos, err)
			}
			insert = insert.Values(dataset, pos, string(cells))
		}
		if err := execBuilder(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

func execBuilder(ctx context.Context, tx *sql.Tx, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
