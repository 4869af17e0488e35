package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/baiirun/deck/internal/model"
)

// AppendChaser records a drafted chaser in the outbox.
func (db *DB) AppendChaser(ctx context.Context, c model.Chaser) error {
	to, cc, err := marshalRecipients(c)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO chasers (id, task_id, recipients, cc, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, to, cc, c.Subject, c.Body, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append chaser: %w", err)
	}
	return nil
}

// ListChasers returns recorded chasers, oldest first.
func (db *DB) ListChasers(ctx context.Context, taskID string) ([]model.Chaser, error) {
	query := `SELECT id, task_id, recipients, cc, subject, body, created_at FROM chasers`
	args := []any{}
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chasers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chasers []model.Chaser
	for rows.Next() {
		var c model.Chaser
		var to, cc string
		if err := rows.Scan(&c.ID, &c.TaskID, &to, &cc, &c.Subject, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chaser: %w", err)
		}
		if err := unmarshalRecipients(&c, []byte(to), []byte(cc)); err != nil {
			return nil, err
		}
		chasers = append(chasers, c)
	}
	return chasers, rows.Err()
}

func marshalRecipients(c model.Chaser) (string, string, error) {
	to, err := json.Marshal(nonNil(c.To))
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal recipients: %w", err)
	}
	cc, err := json.Marshal(nonNil(c.CC))
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal cc: %w", err)
	}
	return string(to), string(cc), nil
}

func unmarshalRecipients(c *model.Chaser, to, cc []byte) error {
	if err := json.Unmarshal(to, &c.To); err != nil {
		return fmt.Errorf("failed to unmarshal recipients: %w", err)
	}
	if err := json.Unmarshal(cc, &c.CC); err != nil {
		return fmt.Errorf("failed to unmarshal cc: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
