package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DisplayStatus is what a user sees. It extends Status with "urgent", which is
// never stored: it is derived from the deadline each time it is read.
type DisplayStatus string

const (
	DisplayPending       DisplayStatus = "pending"
	DisplayUrgent        DisplayStatus = "urgent"
	DisplayCompleted     DisplayStatus = "completed"
	DisplayLateCompleted DisplayStatus = "late_completed"
)

// Label returns the badge text for a display status.
func (d DisplayStatus) Label() string {
	switch d {
	case DisplayPending:
		return "Pending"
	case DisplayUrgent:
		return "OVERDUE"
	case DisplayCompleted:
		return "Completed"
	case DisplayLateCompleted:
		return "Late"
	default:
		return string(d)
	}
}

// IsUrgent reports whether a pending task is past its deadline.
// The comparison is strict: a deadline equal to now is not urgent.
func IsUrgent(t Task, now time.Time) bool {
	return t.Status == StatusPending && now.After(t.Deadline)
}

// DeriveDisplayStatus computes the display status of t at now.
// Only pending tasks can change; every other stored status maps to itself.
func DeriveDisplayStatus(t Task, now time.Time) DisplayStatus {
	if IsUrgent(t, now) {
		return DisplayUrgent
	}
	return DisplayStatus(t.Status)
}

// RelativeTime renders target relative to now, e.g. "in 3 hours" or
// "2 days ago". Hours and days are rounded half away from zero on the
// absolute difference. A target equal to now takes the "ago" branch.
func RelativeTime(target, now time.Time) string {
	diff := target.Sub(now)
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	hours := int64(math.Round(abs.Hours()))
	days := int64(math.Round(abs.Hours() / 24))

	if diff > 0 {
		switch {
		case hours < 1:
			return "in < 1 hour"
		case hours < 24:
			return fmt.Sprintf("in %d hour%s", hours, plural(hours))
		default:
			return fmt.Sprintf("in %d day%s", days, plural(days))
		}
	}
	switch {
	case hours < 1:
		return "< 1 hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	default:
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	}
}

func plural(n int64) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// ActiveTasks returns the tasks still needing attention (pending or urgent),
// preserving order.
func ActiveTasks(tasks []Task, now time.Time) []Task {
	var active []Task
	for _, t := range tasks {
		switch DeriveDisplayStatus(t, now) {
		case DisplayPending, DisplayUrgent:
			active = append(active, t)
		}
	}
	return active
}

// SortByPriority returns a copy of tasks ordered critical first. Tasks of equal
// priority keep their collection order.
func SortByPriority(tasks []Task) []Task {
	sorted := append([]Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return PriorityOrder(sorted[i].Priority) < PriorityOrder(sorted[j].Priority)
	})
	return sorted
}

// Summary counts tasks by display status for the dashboard header.
type Summary struct {
	Urgent    int
	Pending   int
	Completed int // completed + late_completed
}

func Summarize(tasks []Task, now time.Time) Summary {
	var s Summary
	for _, t := range tasks {
		switch DeriveDisplayStatus(t, now) {
		case DisplayUrgent:
			s.Urgent++
		case DisplayPending:
			s.Pending++
		case DisplayCompleted, DisplayLateCompleted:
			s.Completed++
		}
	}
	return s
}
