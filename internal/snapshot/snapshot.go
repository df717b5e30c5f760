package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Key is the fixed namespace key the board state is persisted under.
const Key = "betboard-storage"

var ErrNotFound = errors.New("not found")

// Store persists JSON snapshots in the workspace SQLite database. A snapshot
// round-trips every field of the value it was saved with.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Save serializes v and upserts it under key.
func (s Store) Save(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	now := s.now().UTC().Format(time.RFC3339)
	_, err = s.DB.ExecContext(ctx, `INSERT INTO snapshots(key,payload_json,created_at,updated_at) VALUES (?,?,?,?)
ON CONFLICT(key) DO UPDATE SET payload_json=excluded.payload_json, updated_at=excluded.updated_at`, key, string(payload), now, now)
	return err
}

// Load reads the snapshot stored under key into out. Returns ErrNotFound
// when no snapshot has been saved yet.
func (s Store) Load(ctx context.Context, key string, out any) error {
	var payload string
	err := s.DB.QueryRowContext(ctx, `SELECT payload_json FROM snapshots WHERE key=?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot under key. Missing keys are not an error.
func (s Store) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM snapshots WHERE key=?`, key)
	return err
}
