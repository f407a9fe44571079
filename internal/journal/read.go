package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Filter narrows a journal read. Zero value reads everything.
type Filter struct {
	// Action keeps only entries with this action name when non-empty.
	Action string

	// Since keeps only entries recorded at or after this time when non-zero.
	Since time.Time

	// Limit caps the result count when positive.
	Limit int
}

// List returns journal entries in seq order, oldest first.
// Returns an empty slice (not nil) when nothing matches.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT seq, id, action, payload, recorded_at FROM actions`
	var args []any
	var where []string

	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if !f.Since.IsZero() {
		where = append(where, "recorded_at >= ?")
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY seq ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return entries, nil
}

// Replay invokes fn for every entry in seq order, stopping at the first
// error. Used to rebuild derived local state (e.g. the message feed) from
// the journaled history.
func (j *Journal) Replay(ctx context.Context, fn func(Entry) error) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, action, payload, recorded_at
		FROM actions
		ORDER BY seq ASC
	`)
	if err != nil {
		return fmt.Errorf("query actions for replay: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return fmt.Errorf("replay entry seq %d: %w", entry.Seq, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate actions for replay: %w", err)
	}
	return nil
}

// scanEntry reads one row into an Entry.
func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var payload, recordedAt string
	if err := rows.Scan(&entry.Seq, &entry.ID, &entry.Action, &payload, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan action row: %w", err)
	}
	entry.Payload = json.RawMessage(payload)

	parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	entry.RecordedAt = parsed
	return entry, nil
}
