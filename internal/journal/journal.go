// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package journal is an outer, restart-surviving audit sink: every
// CRASH_GPS the scheduler emits is appended here for offline review. The
// detector core itself always starts empty with no persistence of its
// own; the journal only subscribes to its emitted events and is never
// read back into it.
//
// Uses the pure-Go modernc.org/sqlite driver with a mandatory-PRAGMA DSN
// (WAL journal mode, busy_timeout, NORMAL synchronous).
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Config defines SQLite operational parameters for the journal database.
type Config struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultConfig returns sane defaults for a single-writer local journal.
func DefaultConfig() Config {
	return Config{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

// Entry is one confirmed crash record.
type Entry struct {
	T         float64
	Magnitude float64
	Epoch     int64 // unix seconds the entry was journaled, for operator sorting
}

// Journal persists confirmed crash events to a local SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if necessary) the journal database at path and
// ensures its schema exists.
func Open(path string, cfg Config) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open failed: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: ping failed: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema failed: %w", err)
	}

	return &Journal{db: db}, nil
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS crash_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	t          REAL NOT NULL,
	magnitude  REAL NOT NULL,
	epoch      INTEGER NOT NULL
);
`

// Append records a confirmed crash event.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO crash_events (t, magnitude, epoch) VALUES (?, ?, ?)`,
		e.T, e.Magnitude, e.Epoch)
	if err != nil {
		return fmt.Errorf("journal: append failed: %w", err)
	}
	return nil
}

// LastForwarded returns the most recently journaled entry, ordered by
// insertion, and false when the journal is empty. The fleet publisher
// does not consult it: a restart does not stop a crash from being
// published again.
func (j *Journal) LastForwarded(ctx context.Context) (Entry, bool, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT t, magnitude, epoch FROM crash_events ORDER BY id DESC LIMIT 1`)

	var e Entry
	if err := row.Scan(&e.T, &e.Magnitude, &e.Epoch); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("journal: query last entry failed: %w", err)
	}
	return e, true, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
