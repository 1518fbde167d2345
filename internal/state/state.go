// Package state persists the UI's schedule workspace as an opaque JSON
// blob, keyed by a caller-chosen string. It exists to avoid schema
// migrations while the shape of that workspace is still changing; once
// it stabilizes the blob can be normalized into real tables.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paiban/paiban-core/internal/repository"
	"github.com/paiban/paiban-core/pkg/errors"
)

// ScheduleKey is the fixed key the HTTP layer uses for the scheduling
// UI's single workspace snapshot.
const ScheduleKey = "schedule_ui_state_v1"

// Snapshot is one stored (or absent) JSON blob.
type Snapshot struct {
	Exists    bool
	State     json.RawMessage
	UpdatedAt *time.Time
}

// Store reads and writes JSON snapshots in the app_state table.
type Store struct {
	db repository.DB
}

// NewStore builds a Store over an open database connection.
func NewStore(db repository.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the backing table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to ensure app_state schema")
	}
	return nil
}

// Get reads the snapshot stored under key. A missing key is not an
// error: the returned Snapshot has Exists set to false.
func (s *Store) Get(ctx context.Context, key string) (Snapshot, error) {
	const query = `SELECT value, updated_at FROM app_state WHERE key = $1`

	var raw []byte
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw, &updatedAt)
	if err == sql.ErrNoRows {
		return Snapshot{Exists: false}, nil
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(err, errors.CodeDatabaseError, "failed to read stored state")
	}
	if !json.Valid(raw) {
		return Snapshot{}, errors.New(errors.CodeDatabaseError, "stored schedule state is invalid JSON")
	}

	return Snapshot{Exists: true, State: json.RawMessage(raw), UpdatedAt: &updatedAt}, nil
}

// Put upserts the snapshot stored under key and returns its new
// updated_at timestamp.
func (s *Store) Put(ctx context.Context, key string, payload json.RawMessage) (time.Time, error) {
	if !json.Valid(payload) {
		return time.Time{}, errors.InvalidInput("schedule state payload is not valid JSON")
	}

	const query = `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING updated_at
	`

	var updatedAt time.Time
	if err := s.db.QueryRowContext(ctx, query, key, []byte(payload)).Scan(&updatedAt); err != nil {
		return time.Time{}, errors.Wrap(err, errors.CodeDatabaseError, fmt.Sprintf("failed to persist state for key %q", key))
	}
	return updatedAt, nil
}
