// Package queue is the durable offline-replay queue: remote mutations that
// failed while offline wait here, in enqueue order, until connectivity
// returns.
package queue

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Action types.
const (
	TypeCreate = "CREATE"
	TypeUpdate = "UPDATE"
	TypeDelete = "DELETE"
)

// Action is one pending remote mutation.
type Action struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Endpoint  string          `json:"endpoint"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Retries   int             `json:"retries"`

	seq []byte
}

// Store keeps actions in a bbolt file. Keys are a monotonic sequence, so a
// cursor walk yields strict enqueue order.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the queue file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("actions")
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, bucket: bucket}, nil
}

// Enqueue appends an action at the tail of the queue.
func (s *Store) Enqueue(a Action) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, payload)
	})
}

// Batch returns up to limit actions in enqueue order without removing them.
func (s *Store) Batch(limit int) ([]Action, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}
	var actions []Action
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(actions) < limit; k, v = c.Next() {
			var a Action
			if err := json.Unmarshal(v, &a); err != nil {
				continue
			}
			a.seq = append([]byte(nil), k...)
			actions = append(actions, a)
		}
		return nil
	})
	return actions, err
}

// Remove deletes a drained action.
func (s *Store) Remove(a Action) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(a.seq) > 0 {
			return b.Delete(a.seq)
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var stored Action
			if err := json.Unmarshal(v, &stored); err != nil {
				continue
			}
			if stored.ID == a.ID {
				return c.Delete()
			}
		}
		return nil
	})
}

// Requeue moves a failed action to the tail and bumps its retry count, so
// the rest of the queue keeps draining ahead of it.
func (s *Store) Requeue(a Action) error {
	if err := s.Remove(a); err != nil {
		return err
	}
	a.seq = nil
	a.Retries++
	return s.Enqueue(a)
}

// Len returns the number of pending actions.
func (s *Store) Len() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the queue file.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
