// Package history records the outcome of each build invocation to a SQL
// ledger (SQLite by default, Postgres optionally) so `ebuild history list`
// and `ebuild history show <id>` can read it back.
package history

import (
	"context"
	"database/sql"
	"time"
)

// Record is one completed (or failed) build invocation.
type Record struct {
	ID            int64
	Module        string
	Configuration string
	TargetArch    string
	StartedAt     time.Time
	FinishedAt    time.Time
	Result        string // "success", "failure"
	CompileCount  int
	SkipCount     int
	LinkCount     int
	Error         string
}

// Store persists and retrieves build Records.
type Store interface {
	RecordBuild(ctx context.Context, r Record) (int64, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Close() error
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS build_history (
	id %s,
	module TEXT NOT NULL,
	configuration TEXT NOT NULL,
	target_arch TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	result TEXT NOT NULL,
	compile_count INTEGER NOT NULL,
	skip_count INTEGER NOT NULL,
	link_count INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
)`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.Module, &r.Configuration, &r.TargetArch, &r.StartedAt, &r.FinishedAt,
		&r.Result, &r.CompileCount, &r.SkipCount, &r.LinkCount, &r.Error)
	return r, err
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
