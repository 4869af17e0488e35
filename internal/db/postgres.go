package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/baiirun/deck/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed Repository. Tags and assignee ids are
// TEXT[] columns and punctuality history is JSONB, so one row holds one
// record.
type PgStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the tables exist.
func OpenPostgres(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PgStore{pool: pool}
	if err := s.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureTables creates the deck tables if they don't exist.
func (s *PgStore) EnsureTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deck_people (
			id              TEXT PRIMARY KEY,
			position        INTEGER NOT NULL,
			name            TEXT NOT NULL,
			email           TEXT NOT NULL,
			department      TEXT NOT NULL,
			avatar          TEXT NOT NULL DEFAULT '',
			tags            TEXT[] NOT NULL DEFAULT '{}',
			reliability     DOUBLE PRECISION NOT NULL DEFAULT 100,
			avg_speed_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			late_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
			history         JSONB NOT NULL DEFAULT '[]'
		)`)
	if err != nil {
		return fmt.Errorf("create deck_people: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deck_tasks (
			id           TEXT PRIMARY KEY,
			position     INTEGER NOT NULL,
			title        TEXT NOT NULL,
			assignee_ids TEXT[] NOT NULL,
			deadline     TIMESTAMPTZ NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending',
			completed_at TIMESTAMPTZ,
			message      TEXT NOT NULL DEFAULT '',
			is_group     BOOLEAN NOT NULL DEFAULT FALSE,
			priority     TEXT NOT NULL DEFAULT 'medium',
			created_at   TIMESTAMPTZ DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create deck_tasks: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deck_chasers (
			id         TEXT PRIMARY KEY,
			task_id    TEXT NOT NULL,
			recipients TEXT[] NOT NULL,
			cc         TEXT[] NOT NULL DEFAULT '{}',
			subject    TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create deck_chasers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_deck_chasers_task ON deck_chasers(task_id)`)
	return err
}

func (s *PgStore) Load(ctx context.Context) (model.Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, department, avatar, tags, reliability, avg_speed_hours, late_rate, history
		FROM deck_people ORDER BY position`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load people: %w", err)
	}
	defer rows.Close()

	var snap model.Snapshot
	byID := make(map[string]model.Person)
	for rows.Next() {
		var p model.Person
		var history []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Department, &p.Avatar, &p.Tags,
			&p.Stats.Reliability, &p.Stats.AvgSpeedHours, &p.Stats.LateRate, &history); err != nil {
			return model.Snapshot{}, fmt.Errorf("scan person: %w", err)
		}
		if err := json.Unmarshal(history, &p.TaskHistory); err != nil {
			return model.Snapshot{}, fmt.Errorf("unmarshal history for %s: %w", p.ID, err)
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		if p.TaskHistory == nil {
			p.TaskHistory = []model.HistorySample{}
		}
		snap.People = append(snap.People, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("people iteration: %w", err)
	}

	taskRows, err := s.pool.Query(ctx, `
		SELECT id, title, assignee_ids, deadline, status, completed_at, message, is_group, priority, created_at
		FROM deck_tasks ORDER BY position`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var t model.Task
		var assigneeIDs []string
		var status, priority string
		if err := taskRows.Scan(&t.ID, &t.Title, &assigneeIDs, &t.Deadline, &status, &t.CompletedAt,
			&t.Message, &t.IsGroupTask, &priority, &t.CreatedAt); err != nil {
			return model.Snapshot{}, fmt.Errorf("scan task: %w", err)
		}
		t.Status = model.Status(status)
		t.Priority = model.Priority(priority)
		if err := checkStatus(t); err != nil {
			return model.Snapshot{}, err
		}
		for _, id := range assigneeIDs {
			p, ok := byID[id]
			if !ok {
				return model.Snapshot{}, fmt.Errorf("task %s references unknown person %s", t.ID, id)
			}
			t.Assignees = append(t.Assignees, p.Clone())
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	if err := taskRows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("task iteration: %w", err)
	}
	return snap, nil
}

func (s *PgStore) Save(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM deck_tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM deck_people`); err != nil {
		return fmt.Errorf("clear people: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range snap.People {
		history, err := json.Marshal(p.TaskHistory)
		if err != nil {
			return fmt.Errorf("marshal history for %s: %w", p.ID, err)
		}
		batch.Queue(`
			INSERT INTO deck_people (id, position, name, email, department, avatar, tags, reliability, avg_speed_hours, late_rate, history)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb)`,
			p.ID, i, p.Name, p.Email, p.Department, p.Avatar, nonNil(p.Tags),
			p.Stats.Reliability, p.Stats.AvgSpeedHours, p.Stats.LateRate, string(history))
	}
	for i, t := range snap.Tasks {
		ids := make([]string, len(t.Assignees))
		for j, p := range t.Assignees {
			ids[j] = p.ID
		}
		batch.Queue(`
			INSERT INTO deck_tasks (id, position, title, assignee_ids, deadline, status, completed_at, message, is_group, priority, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t.ID, i, t.Title, ids, t.Deadline, string(t.Status), t.CompletedAt, t.Message, t.IsGroupTask, string(t.Priority), t.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PgStore) AppendChaser(ctx context.Context, c model.Chaser) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO deck_chasers (id, task_id, recipients, cc, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.TaskID, nonNil(c.To), nonNil(c.CC), c.Subject, c.Body, createdAt)
	if err != nil {
		return fmt.Errorf("append chaser: %w", err)
	}
	return nil
}

func (s *PgStore) ListChasers(ctx context.Context, taskID string) ([]model.Chaser, error) {
	query := `SELECT id, task_id, recipients, cc, subject, body, created_at FROM deck_chasers`
	var args []any
	if taskID != "" {
		query += ` WHERE task_id = $1`
		args = append(args, taskID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chasers: %w", err)
	}
	defer rows.Close()

	var out []model.Chaser
	for rows.Next() {
		var c model.Chaser
		if err := rows.Scan(&c.ID, &c.TaskID, &c.To, &c.CC, &c.Subject, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chaser: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}
