package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	stateDirName = ".betboard"
	snapshotDB   = "betboard.db"
	queueDB      = "queue.db"
)

type Config struct {
	Workspace string
}

// Dir returns the workspace state directory holding the snapshot
// database and the offline queue.
func Dir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, stateDirName)
}

// EnsureWorkspace creates the workspace state directory if missing.
func EnsureWorkspace(workspace string) (string, error) {
	path := Dir(workspace)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Open opens the SQLite database with foreign keys on.
func Open(cfg Config) (*sql.DB, error) {
	if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", Path(cfg.Workspace))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Path returns the snapshot database path for the workspace.
func Path(workspace string) string {
	return filepath.Join(Dir(workspace), snapshotDB)
}

// QueuePath returns the offline queue database path for the workspace.
func QueuePath(workspace string) string {
	return filepath.Join(Dir(workspace), queueDB)
}
