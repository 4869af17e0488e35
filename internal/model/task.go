// Package model defines the people, tasks and chaser payloads tracked by deck,
// plus the pure derivations the views read on every render.
package model

import "time"

// Status is the stored, authoritative state of a task.
type Status string

const (
	StatusPending       Status = "pending"
	StatusCompleted     Status = "completed"
	StatusLateCompleted Status = "late_completed"
)

// IsValid reports whether s is one of the stored statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusLateCompleted:
		return true
	}
	return false
}

// IsCompleted reports whether s is one of the completed variants.
func (s Status) IsCompleted() bool {
	return s == StatusCompleted || s == StatusLateCompleted
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// PriorityOrder returns the sort order for a priority (lower = more important).
func PriorityOrder(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

type Task struct {
	ID          string
	Title       string
	Assignees   []Person
	Deadline    time.Time
	Status      Status
	CompletedAt *time.Time
	Message     string
	IsGroupTask bool
	Priority    Priority
	CreatedAt   time.Time
}

// HasAssignee reports whether the person with the given id is assigned.
func (t Task) HasAssignee(personID string) bool {
	for _, p := range t.Assignees {
		if p.ID == personID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Assignees = make([]Person, len(t.Assignees))
	for i, p := range t.Assignees {
		c.Assignees[i] = p.Clone()
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return c
}

// TaskDraft is the input to creating one or more tasks.
type TaskDraft struct {
	Title       string
	Deadline    time.Time
	Assignees   []Person
	Message     string
	IsGroupTask bool
	Priority    Priority
}
