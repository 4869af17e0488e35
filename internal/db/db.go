// Package db persists deck snapshots between sessions.
//
// The in-memory store stays authoritative while deck runs; a Repository only
// loads the last snapshot at startup and writes a fresh one after mutations.
// SQLite is the default backend (stored at ~/.deck/deck.db); Postgres and an
// ephemeral in-memory backend are also available.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/baiirun/deck/internal/model"
	_ "modernc.org/sqlite"
)

// Repository loads and saves whole snapshots and records drafted chasers.
type Repository interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
	AppendChaser(ctx context.Context, c model.Chaser) error
	// ListChasers returns chasers for taskID, oldest first. An empty taskID
	// returns every chaser.
	ListChasers(ctx context.Context, taskID string) ([]model.Chaser, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	department TEXT NOT NULL,
	avatar TEXT NOT NULL DEFAULT '',
	reliability REAL NOT NULL DEFAULT 100,
	avg_speed_hours REAL NOT NULL DEFAULT 0,
	late_rate REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS person_tags (
	person_id TEXT REFERENCES people(id),
	position INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (person_id, tag)
);

CREATE TABLE IF NOT EXISTS person_history (
	person_id TEXT REFERENCES people(id),
	position INTEGER NOT NULL,
	date TEXT NOT NULL,
	punctuality REAL NOT NULL,
	PRIMARY KEY (person_id, position)
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	deadline DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	completed_at DATETIME,
	message TEXT NOT NULL DEFAULT '',
	is_group INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'medium',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_assignees (
	task_id TEXT REFERENCES tasks(id),
	person_id TEXT REFERENCES people(id),
	position INTEGER NOT NULL,
	PRIMARY KEY (task_id, person_id)
);

CREATE TABLE IF NOT EXISTS chasers (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	recipients TEXT NOT NULL,
	cc TEXT NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_assignees_person ON task_assignees(person_id);
CREATE INDEX IF NOT EXISTS idx_chasers_task ON chasers(task_id);
`

// DB wraps a SQLite connection and implements Repository.
type DB struct {
	*sql.DB
}

// DefaultPath returns the default database path under home (~/.deck/deck.db).
func DefaultPath(home string) string {
	return filepath.Join(home, ".deck", "deck.db")
}

// Open opens or creates the database at the given path
func Open(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Init creates the schema.
func (db *DB) Init() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
