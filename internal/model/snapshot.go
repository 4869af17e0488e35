package model

import (
	"strings"
	"time"
)

// Snapshot is an immutable view of both collections at one instant.
type Snapshot struct {
	People []Person
	Tasks  []Task
}

func (s Snapshot) FindTask(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func (s Snapshot) FindPerson(id string) (Person, bool) {
	for _, p := range s.People {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// FindPersonByEmail matches email case-insensitively. An empty email never
// matches.
func (s Snapshot) FindPersonByEmail(email string) (Person, bool) {
	if email == "" {
		return Person{}, false
	}
	for _, p := range s.People {
		if strings.EqualFold(p.Email, email) {
			return p, true
		}
	}
	return Person{}, false
}

// Chaser is a reminder drafted for an overdue task's assignees. deck only
// defines and records it; delivery belongs to an external mail collaborator.
type Chaser struct {
	ID        string
	TaskID    string
	To        []string
	CC        []string
	Subject   string
	Body      string
	CreatedAt time.Time
}
