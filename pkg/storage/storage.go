// Package storage persists pipeline state in a small sqlite database:
// which DAT version is on disk per system, and the outcome of every filter
// run. The "already processed" check and the stats command read from here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS dat_files (
  id            INTEGER PRIMARY KEY,
  collection    TEXT NOT NULL,
  system        TEXT NOT NULL,
  filename      TEXT NOT NULL,
  downloaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(collection, system)
);
CREATE TABLE IF NOT EXISTS filter_runs (
  id          INTEGER PRIMARY KEY,
  profile     TEXT NOT NULL,
  collection  TEXT NOT NULL,
  system      TEXT NOT NULL,
  input_file  TEXT NOT NULL,
  status      TEXT NOT NULL CHECK (status IN ('success','not-required','no-games','failed')),
  groups_n    INTEGER NOT NULL DEFAULT 0,
  winners     INTEGER NOT NULL DEFAULT 0,
  excluded    INTEGER NOT NULL DEFAULT 0,
  output_path TEXT,
  error       TEXT,
  run_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(profile, collection, system)
);
CREATE INDEX IF NOT EXISTS idx_runs_unit ON filter_runs(profile, collection);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// RecordDATFile upserts the current DAT version for a system.
func (d *DB) RecordDATFile(ctx context.Context, f DATFile) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO dat_files(collection, system, filename, downloaded_at)
VALUES(?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(collection, system) DO UPDATE SET
  filename = excluded.filename,
  downloaded_at = CURRENT_TIMESTAMP`,
		f.Collection, f.System, f.Filename)
	return err
}

// RecordRun upserts the outcome for a (profile, collection, system) unit.
// Only the latest run per unit is kept; history belongs in the reports.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO filter_runs(profile, collection, system, input_file, status, groups_n, winners, excluded, output_path, error, run_at)
VALUES(?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(profile, collection, system) DO UPDATE SET
  input_file = excluded.input_file,
  status = excluded.status,
  groups_n = excluded.groups_n,
  winners = excluded.winners,
  excluded = excluded.excluded,
  output_path = excluded.output_path,
  error = excluded.error,
  run_at = CURRENT_TIMESTAMP`,
		r.Profile, r.Collection, r.System, r.InputFile, r.Status,
		r.Groups, r.Winners, r.Excluded, nullIfEmpty(r.OutputPath), nullIfEmpty(r.Error))
	return err
}

// LookupRun returns the recorded run for a unit, or nil when none exists.
func (d *DB) LookupRun(ctx context.Context, profile, collection, system string) (*Run, error) {
	row := d.sql.QueryRowContext(ctx, `
SELECT input_file, status, groups_n, winners, excluded, COALESCE(output_path,''), COALESCE(error,''), run_at
FROM filter_runs WHERE profile = ? AND collection = ? AND system = ?`,
		profile, collection, system)

	r := Run{Profile: profile, Collection: collection, System: system}
	err := row.Scan(&r.InputFile, &r.Status, &r.Groups, &r.Winners, &r.Excluded, &r.OutputPath, &r.Error, &r.RunAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns all recorded runs, newest first, optionally filtered by
// profile and/or collection (empty = all).
func (d *DB) ListRuns(ctx context.Context, profile, collection string) ([]Run, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT profile, collection, system, input_file, status, groups_n, winners, excluded, COALESCE(output_path,''), COALESCE(error,''), run_at
FROM filter_runs
WHERE (? = '' OR profile = ?) AND (? = '' OR collection = ?)
ORDER BY run_at DESC, profile, collection, system`,
		profile, profile, collection, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Profile, &r.Collection, &r.System, &r.InputFile, &r.Status,
			&r.Groups, &r.Winners, &r.Excluded, &r.OutputPath, &r.Error, &r.RunAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats aggregates run outcomes per (profile, collection, status).
func (d *DB) Stats(ctx context.Context) ([]StatRow, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT profile, collection, status, COUNT(*), SUM(winners), SUM(excluded)
FROM filter_runs
GROUP BY profile, collection, status
ORDER BY profile, collection, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StatRow
	for rows.Next() {
		var s StatRow
		if err := rows.Scan(&s.Profile, &s.Collection, &s.Status, &s.Count, &s.Winners, &s.Excluded); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// PruneRuns deletes recorded runs older than the cutoff. Returns the number
// of rows removed.
func (d *DB) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	// run_at rows are CURRENT_TIMESTAMP strings, so compare in the same form.
	cutoff := before.UTC().Format("2006-01-02 15:04:05")
	res, err := d.sql.ExecContext(ctx, `DELETE FROM filter_runs WHERE run_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
