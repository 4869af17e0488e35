// Package chaser drafts the reminder sent to the assignees of an overdue task
// and hands finished drafts to a Dispatcher.
package chaser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baiirun/deck/internal/model"
)

// DefaultSignOff closes the body when no sender is configured.
const DefaultSignOff = "Best regards"

// DefaultSuggestionLimit caps CC suggestions.
const DefaultSuggestionLimit = 5

var (
	ErrNoRecipients = errors.New("chaser needs at least one recipient")
	ErrNoSubject    = errors.New("chaser needs a subject")
	// ErrNotUrgent is returned when chasing a task that is not overdue.
	ErrNotUrgent = errors.New("task is not overdue")
)

// Draft is an editable chaser before it is dispatched.
type Draft struct {
	TaskID  string
	To      []string
	CC      []string
	Subject string
	Body    string
}

// NewDraft fills the default subject and body for task, addressed to every
// assignee.
func NewDraft(task model.Task, signOff string) Draft {
	if signOff == "" {
		signOff = DefaultSignOff
	}
	to := make([]string, 0, len(task.Assignees))
	for _, p := range task.Assignees {
		if p.Email != "" && !contains(to, p.Email) {
			to = append(to, p.Email)
		}
	}
	return Draft{
		TaskID:  task.ID,
		To:      to,
		CC:      []string{},
		Subject: fmt.Sprintf("URGENT: %s is Overdue", task.Title),
		Body: fmt.Sprintf("Hi Team,\n\nThis is an urgent follow-up regarding the task %q which was due on %s.\n\n"+
			"Please provide a status update at your earliest convenience.\n\n%s",
			task.Title, task.Deadline.Format("Jan 2, 2006"), signOff),
	}
}

// CheckUrgent returns ErrNotUrgent unless task is overdue at now.
func CheckUrgent(task model.Task, now time.Time) error {
	if !model.IsUrgent(task, now) {
		return fmt.Errorf("%s: %w", task.ID, ErrNotUrgent)
	}
	return nil
}

// CCSuggestions returns up to limit people whose name contains query
// (case-insensitive), skipping anyone already addressed. An empty query
// suggests nobody.
func CCSuggestions(people []model.Person, d Draft, query string, limit int) []model.Person {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}
	var out []model.Person
	for _, p := range people {
		if len(out) == limit {
			break
		}
		if contains(d.To, p.Email) || contains(d.CC, p.Email) {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

// AddCC adds email to the CC list unless it is already addressed.
func (d *Draft) AddCC(email string) {
	email = strings.TrimSpace(email)
	if email == "" || contains(d.To, email) || contains(d.CC, email) {
		return
	}
	d.CC = append(d.CC, email)
}

// RemoveRecipient drops email from To.
func (d *Draft) RemoveRecipient(email string) {
	d.To = without(d.To, email)
}

// RemoveCC drops email from CC.
func (d *Draft) RemoveCC(email string) {
	d.CC = without(d.CC, email)
}

func (d Draft) Validate() error {
	if len(d.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(d.Subject) == "" {
		return ErrNoSubject
	}
	return nil
}

// Dispatcher accepts a validated draft for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Draft) (model.Chaser, error)
}

// Outbox is where an OutboxDispatcher records chasers. db.Repository
// satisfies it.
type Outbox interface {
	AppendChaser(ctx context.Context, c model.Chaser) error
}

// OutboxDispatcher writes chasers to an outbox that an external mail
// collaborator drains. It never sends anything itself.
type OutboxDispatcher struct {
	outbox Outbox
	ids    model.IDGenerator
	clock  func() time.Time
}

func NewOutboxDispatcher(outbox Outbox, ids model.IDGenerator, clock func() time.Time) *OutboxDispatcher {
	if ids == nil {
		ids = model.UUIDGenerator{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &OutboxDispatcher{outbox: outbox, ids: ids, clock: clock}
}

func (o *OutboxDispatcher) Dispatch(ctx context.Context, d Draft) (model.Chaser, error) {
	if err := d.Validate(); err != nil {
		return model.Chaser{}, err
	}
	c := model.Chaser{
		ID:        o.ids.NewID(model.ChaserIDPrefix),
		TaskID:    d.TaskID,
		To:        append([]string(nil), d.To...),
		CC:        append([]string{}, d.CC...),
		Subject:   d.Subject,
		Body:      d.Body,
		CreatedAt: o.clock(),
	}
	if err := o.outbox.AppendChaser(ctx, c); err != nil {
		return model.Chaser{}, fmt.Errorf("failed to record chaser: %w", err)
	}
	return c, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
