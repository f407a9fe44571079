// Package journal provides the durable, append-only local log of committed
// coaching actions. Every successful mutation (ceremony completion, standup,
// acknowledgement, settings update) lands here with a monotonic sequence
// number, so a session can be audited and the message feed rebuilt offline.
//
// The journal is an audit trail, not a source of truth - canonical entity
// state always comes from the backend via the cache.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one journaled action.
type Entry struct {
	Seq        int64           `json:"seq"`
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Journal is an append-only SQLite log.
// Uses WAL mode so reads stay concurrent with the single writer.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Open creates or opens the journal database at the given path (":memory:"
// for tests). Applies required pragmas and the schema; idempotent.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under interleaved async completions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// RecordAction appends one action with its JSON payload. The entry ID is
// content-addressed over action and payload, so a duplicate write (e.g. a
// retried completion handler re-recording the same canonical record) is
// silently deduplicated via ON CONFLICT DO NOTHING. Implements
// engine.ActionRecorder.
func (j *Journal) RecordAction(ctx context.Context, action string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("record action %s: encode payload: %w", action, err)
	}
	id, err := EntryID(action, encoded)
	if err != nil {
		return fmt.Errorf("record action %s: %w", action, err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO actions (id, action, payload, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		action,
		string(encoded),
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record action %s: %w", action, err)
	}
	return nil
}

// Len returns the number of journaled actions.
func (j *Journal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}
