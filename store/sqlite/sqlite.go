// Package sqlite is the default profile/event cache backend: a
// CGO-free modernc.org/sqlite database, grounded on
// DataStore/DataStoreSqlImpl.go's NewDataStoreSql (same driver, same
// "CREATE TABLE IF NOT EXISTS" bootstrap-on-open pattern).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/blynkgo/client/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	request_id INTEGER,
	opcode     INTEGER,
	payload    BLOB,
	captured_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_profiles_captured_at ON profiles (captured_at);

CREATE TABLE IF NOT EXISTS events (
	opcode     INTEGER,
	summary    TEXT,
	occurred_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events (occurred_at);
`

// Store is a store.Store backed by a local sqlite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and
// bootstraps its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveProfile(ctx context.Context, snap store.ProfileSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (request_id, opcode, payload, captured_at) VALUES (?, ?, ?, ?)`,
		snap.RequestID, snap.Opcode, snap.Payload, snap.CapturedAt)
	return err
}

func (s *Store) RecentProfiles(ctx context.Context, limit int) ([]store.ProfileSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, opcode, payload, captured_at FROM profiles ORDER BY captured_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ProfileSnapshot
	for rows.Next() {
		var snap store.ProfileSnapshot
		var capturedAt time.Time
		if err := rows.Scan(&snap.RequestID, &snap.Opcode, &snap.Payload, &capturedAt); err != nil {
			return nil, err
		}
		snap.CapturedAt = capturedAt
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) LogEvent(ctx context.Context, rec store.EventRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (opcode, summary, occurred_at) VALUES (?, ?, ?)`,
		rec.Opcode, rec.Summary, rec.OccurredAt)
	return err
}

func (s *Store) RecentEvents(ctx context.Context, limit int) ([]store.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT opcode, summary, occurred_at FROM events ORDER BY occurred_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.EventRecord
	for rows.Next() {
		var rec store.EventRecord
		if err := rows.Scan(&rec.Opcode, &rec.Summary, &rec.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }
