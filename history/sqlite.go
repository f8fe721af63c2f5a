package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the default, zero-configuration build-history backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path and
// ensures the build_history table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(fmt.Sprintf(schemaSQL, "INTEGER PRIMARY KEY AUTOINCREMENT")); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// RecordBuild inserts r and returns its assigned id.
func (s *SQLiteStore) RecordBuild(ctx context.Context, r Record) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO build_history
			(module, configuration, target_arch, started_at, finished_at, result, compile_count, skip_count, link_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Module, r.Configuration, r.TargetArch, r.StartedAt, r.FinishedAt, r.Result, r.CompileCount, r.SkipCount, r.LinkCount, r.Error)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent limit records, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, module, configuration, target_arch, started_at, finished_at, result, compile_count, skip_count, link_count, error
		FROM build_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, module, configuration, target_arch, started_at, finished_at, result, compile_count, skip_count, link_count, error
		FROM build_history WHERE id = ?`, id)
	return scanRecord(row)
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
