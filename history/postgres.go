package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore is the optional shared build-history backend, used when a
// team wants one ledger across machines instead of per-machine SQLite
// files.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens dsn and ensures the build_history table exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open postgres: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(schemaSQL, "SERIAL PRIMARY KEY")); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// RecordBuild inserts r and returns its assigned id.
func (s *PostgresStore) RecordBuild(ctx context.Context, r Record) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO build_history
			(module, configuration, target_arch, started_at, finished_at, result, compile_count, skip_count, link_count, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		r.Module, r.Configuration, r.TargetArch, r.StartedAt, r.FinishedAt, r.Result, r.CompileCount, r.SkipCount, r.LinkCount, r.Error,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return id, nil
}

// List returns the most recent limit records, newest first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, module, configuration, target_arch, started_at, finished_at, result, compile_count, skip_count, link_count, error
		FROM build_history ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Get returns the record with the given id.
func (s *PostgresStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, module, configuration, target_arch, started_at, finished_at, result, compile_count, skip_count, link_count, error
		FROM build_history WHERE id = $1`, id)
	return scanRecord(row)
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
