package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/baiirun/deck/internal/model"
)

// PersonRefJSON is an assignee as shown inside a task.
type PersonRefJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskJSON is the JSON shape of a task, including derived fields.
type TaskJSON struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Status        string          `json:"status"`
	DisplayStatus string          `json:"display_status"`
	Priority      string          `json:"priority"`
	Deadline      time.Time       `json:"deadline"`
	DueIn         string          `json:"due"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	Message       string          `json:"message,omitempty"`
	IsGroupTask   bool            `json:"is_group_task"`
	Assignees     []PersonRefJSON `json:"assignees"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HistoryJSON is one punctuality sample.
type HistoryJSON struct {
	Date        string  `json:"date"`
	Punctuality float64 `json:"punctuality"`
}

// PersonJSON is the JSON shape of a roster entry.
type PersonJSON struct {
	Rank          int           `json:"rank,omitempty"`
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Department    string        `json:"department"`
	Tags          []string      `json:"tags"`
	Avatar        string        `json:"avatar"`
	Reliability   float64       `json:"reliability"`
	AvgSpeedHours float64       `json:"avg_speed_hours"`
	LateRate      float64       `json:"late_rate"`
	History       []HistoryJSON `json:"task_history"`
	RecentTasks   []TaskJSON    `json:"recent_tasks,omitempty"`
}

// ChaserJSON is a recorded chaser.
type ChaserJSON struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	To        []string  `json:"to"`
	CC        []string  `json:"cc"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toTaskJSON(t model.Task, now time.Time) TaskJSON {
	assignees := make([]PersonRefJSON, 0, len(t.Assignees))
	for _, p := range t.Assignees {
		assignees = append(assignees, PersonRefJSON{ID: p.ID, Name: p.Name, Email: p.Email})
	}
	return TaskJSON{
		ID:            t.ID,
		Title:         t.Title,
		Status:        string(t.Status),
		DisplayStatus: string(model.DeriveDisplayStatus(t, now)),
		Priority:      string(t.Priority),
		Deadline:      t.Deadline,
		DueIn:         model.RelativeTime(t.Deadline, now),
		CompletedAt:   t.CompletedAt,
		Message:       t.Message,
		IsGroupTask:   t.IsGroupTask,
		Assignees:     assignees,
		CreatedAt:     t.CreatedAt,
	}
}

func toPersonJSON(p model.Person) PersonJSON {
	history := make([]HistoryJSON, 0, len(p.TaskHistory))
	for _, h := range p.TaskHistory {
		history = append(history, HistoryJSON{Date: h.Date, Punctuality: h.Punctuality})
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PersonJSON{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Department:    p.Department,
		Tags:          tags,
		Avatar:        p.Avatar,
		Reliability:   p.Stats.Reliability,
		AvgSpeedHours: p.Stats.AvgSpeedHours,
		LateRate:      p.Stats.LateRate,
		History:       history,
	}
}

func toChaserJSON(c model.Chaser) ChaserJSON {
	cc := c.CC
	if cc == nil {
		cc = []string{}
	}
	return ChaserJSON{
		ID:        c.ID,
		TaskID:    c.TaskID,
		To:        c.To,
		CC:        cc,
		Subject:   c.Subject,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
