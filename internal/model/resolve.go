package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoMatch   = errors.New("no match")
	ErrAmbiguous = errors.New("ambiguous reference")
)

// DeadlineLayouts are the accepted deadline inputs, tried in order.
var DeadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDeadline parses s using DeadlineLayouts. Layouts without a zone are
// read in loc. A bare date means the end of that day.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range DeadlineLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, loc)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognised deadline %q (want YYYY-MM-DD HH:MM or RFC3339)", s)
}

// ResolveTask finds a task by exact id or unique id prefix.
func (s Snapshot) ResolveTask(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := s.FindTask(ref); ok {
		return t, nil
	}
	var found []Task
	for _, t := range s.Tasks {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return Task{}, fmt.Errorf("task %q: %w", ref, ErrNoMatch)
	case 1:
		return found[0], nil
	}
	return Task{}, fmt.Errorf("task %q matches %d tasks: %w", ref, len(found), ErrAmbiguous)
}

// ResolvePerson finds a person by exact id, email (case-insensitive) or
// unique id prefix.
func (s Snapshot) ResolvePerson(ref string) (Person, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := s.FindPerson(ref); ok {
		return p, nil
	}
	if p, ok := s.FindPersonByEmail(ref); ok {
		return p, nil
	}
	var found []Person
	for _, p := range s.People {
		if ref != "" && strings.HasPrefix(p.ID, ref) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return Person{}, fmt.Errorf("person %q: %w", ref, ErrNoMatch)
	case 1:
		return found[0], nil
	}
	return Person{}, fmt.Errorf("person %q matches %d people: %w", ref, len(found), ErrAmbiguous)
}

// ResolvePeople resolves each ref, dropping duplicates.
func (s Snapshot) ResolvePeople(refs []string) ([]Person, error) {
	var out []Person
	seen := make(map[string]bool)
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		p, err := s.ResolvePerson(ref)
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}
