package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baiirun/deck/internal/model"
)

// Load reads the last saved snapshot. An empty database yields an empty
// snapshot.
func (db *DB) Load(ctx context.Context) (model.Snapshot, error) {
	people, err := db.loadPeople(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	byID := make(map[string]model.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	tasks, err := db.loadTasks(ctx, byID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{People: people, Tasks: tasks}, nil
}

func (db *DB) loadPeople(ctx context.Context) ([]model.Person, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, department, avatar, reliability, avg_speed_hours, late_rate
		FROM people ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var people []model.Person
	index := make(map[string]int)
	for rows.Next() {
		p := model.Person{Tags: []string{}, TaskHistory: []model.HistorySample{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Department, &p.Avatar,
			&p.Stats.Reliability, &p.Stats.AvgSpeedHours, &p.Stats.LateRate); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		index[p.ID] = len(people)
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	tagRows, err := db.QueryContext(ctx, `SELECT person_id, tag FROM person_tags ORDER BY person_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var personID, tag string
		if err := tagRows.Scan(&personID, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if i, ok := index[personID]; ok {
			people[i].Tags = append(people[i].Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	histRows, err := db.QueryContext(ctx, `SELECT person_id, date, punctuality FROM person_history ORDER BY person_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = histRows.Close() }()
	for histRows.Next() {
		var personID string
		var h model.HistorySample
		if err := histRows.Scan(&personID, &h.Date, &h.Punctuality); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if i, ok := index[personID]; ok {
			people[i].TaskHistory = append(people[i].TaskHistory, h)
		}
	}
	return people, histRows.Err()
}

func (db *DB) loadTasks(ctx context.Context, people map[string]model.Person) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, deadline, status, completed_at, message, is_group, priority, created_at
		FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.Task
	index := make(map[string]int)
	for rows.Next() {
		var t model.Task
		var completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &t.Deadline, &t.Status, &completedAt,
			&t.Message, &t.IsGroupTask, &t.Priority, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if err := checkStatus(t); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			at := completedAt.Time
			t.CompletedAt = &at
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	aRows, err := db.QueryContext(ctx, `SELECT task_id, person_id FROM task_assignees ORDER BY task_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignees: %w", err)
	}
	defer func() { _ = aRows.Close() }()
	for aRows.Next() {
		var taskID, personID string
		if err := aRows.Scan(&taskID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan assignee: %w", err)
		}
		p, ok := people[personID]
		if !ok {
			return nil, fmt.Errorf("task %s references unknown person %s", taskID, personID)
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Assignees = append(tasks[i].Assignees, p.Clone())
		}
	}
	return tasks, aRows.Err()
}

// Save replaces the stored snapshot in a single transaction. Chasers are an
// append-only outbox and are left untouched.
func (db *DB) Save(ctx context.Context, snap model.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"task_assignees", "tasks", "person_history", "person_tags", "people"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, p := range snap.People {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO people (id, position, name, email, department, avatar, reliability, avg_speed_hours, late_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, i, p.Name, p.Email, p.Department, p.Avatar,
			p.Stats.Reliability, p.Stats.AvgSpeedHours, p.Stats.LateRate)
		if err != nil {
			return fmt.Errorf("failed to insert person %s: %w", p.ID, err)
		}
		for j, tag := range p.Tags {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO person_tags (person_id, position, tag) VALUES (?, ?, ?)`,
				p.ID, j, tag); err != nil {
				return fmt.Errorf("failed to insert tag for %s: %w", p.ID, err)
			}
		}
		for j, h := range p.TaskHistory {
			if _, err := tx.ExecContext(ctx, `INSERT INTO person_history (person_id, position, date, punctuality) VALUES (?, ?, ?, ?)`,
				p.ID, j, h.Date, h.Punctuality); err != nil {
				return fmt.Errorf("failed to insert history for %s: %w", p.ID, err)
			}
		}
	}

	for i, t := range snap.Tasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, position, title, deadline, status, completed_at, message, is_group, priority, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, t.Title, t.Deadline, t.Status, nullTime(t.CompletedAt), t.Message, t.IsGroupTask, t.Priority, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
		}
		for j, p := range t.Assignees {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO task_assignees (task_id, person_id, position) VALUES (?, ?, ?)`,
				t.ID, p.ID, j); err != nil {
				return fmt.Errorf("failed to insert assignee for %s: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// checkStatus rejects rows whose stored status is not one deck writes.
func checkStatus(t model.Task) error {
	if !t.Status.IsValid() {
		return fmt.Errorf("task %s has invalid stored status %q", t.ID, t.Status)
	}
	return nil
}
