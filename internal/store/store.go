// Package store holds deck's authoritative in-memory state: the people roster
// and the task list.
//
// Every mutator builds a new collection and swaps it in whole, so a reader
// holding a Snapshot never sees a partial update. Writers are serialised by a
// mutex; reads are lock-free.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baiirun/deck/internal/model"
)

var (
	// ErrNotFound is returned when no task matches the given id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTask is returned when a task draft is missing a title,
	// deadline or assignees.
	ErrInvalidTask = errors.New("invalid task")
	// ErrInvalidStatus is returned for a status outside the stored set.
	ErrInvalidStatus = errors.New("invalid status")
)

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex // serialises writers
	state atomic.Pointer[model.Snapshot]

	clock func() time.Time
	ids   model.IDGenerator
	log   *slog.Logger

	subMu  sync.Mutex
	subs   map[int]func(model.Snapshot)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, used for completion timestamps and CreatedAt.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides the default UUIDv7 generator.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSnapshot seeds the store, typically from a persisted snapshot.
func WithSnapshot(snap model.Snapshot) Option {
	return func(s *Store) {
		c := cloneSnapshot(snap)
		s.state.Store(&c)
	}
}

// New creates an empty store unless WithSnapshot is given.
func New(opts ...Option) *Store {
	s := &Store{
		clock: time.Now,
		ids:   model.UUIDGenerator{},
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:  make(map[int]func(model.Snapshot)),
	}
	s.state.Store(&model.Snapshot{})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	return cloneSnapshot(*s.state.Load())
}

// People returns the roster in insertion order.
func (s *Store) People() []model.Person {
	return s.Snapshot().People
}

// Tasks returns the task list, most recent first.
func (s *Store) Tasks() []model.Task {
	return s.Snapshot().Tasks
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.clock()
}

// Subscribe registers fn to receive the new snapshot after every successful
// mutation. fn runs on the mutating goroutine, after the write lock is
// released. The returned function unregisters it.
func (s *Store) Subscribe(fn func(model.Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// AddPerson appends a new person with a fresh id, neutral stats and an empty
// history. Repeated tags are kept once, in first-seen order. It never fails.
func (s *Store) AddPerson(draft model.PersonDraft) model.Person {
	s.mu.Lock()
	cur := s.state.Load()

	avatar := draft.Avatar
	if avatar == "" {
		avatar = model.DefaultAvatar(draft.Name)
	}
	p := model.Person{
		ID:          s.ids.NewID(model.PersonIDPrefix),
		Name:        draft.Name,
		Email:       draft.Email,
		Department:  draft.Department,
		Tags:        uniqueTags(draft.Tags),
		Avatar:      avatar,
		Stats:       model.NeutralStats(),
		TaskHistory: []model.HistorySample{},
	}

	people := make([]model.Person, 0, len(cur.People)+1)
	people = append(people, cur.People...)
	people = append(people, p)
	next := s.commit(&model.Snapshot{People: people, Tasks: cur.Tasks})
	s.mu.Unlock()

	s.log.Debug("person added", "op", "add_person", "person_id", p.ID, "people", len(people))
	s.notify(next)
	return p.Clone()
}

// AddTask creates the tasks described by draft and prepends them to the list.
//
// A group draft, or one with a single assignee, yields one task holding every
// assignee. Otherwise one task per assignee is created, ids suffixed with the
// assignee index off a shared base. Drafts without a title, deadline or
// assignees are rejected with ErrInvalidTask.
func (s *Store) AddTask(draft model.TaskDraft) ([]model.Task, error) {
	if err := validateDraft(draft); err != nil {
		s.log.Warn("task rejected", "op", "add_task", "err", err)
		return nil, err
	}
	priority := draft.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	s.mu.Lock()
	cur := s.state.Load()
	now := s.clock()
	base := s.ids.NewID(model.TaskIDPrefix)

	newTask := func(id string, assignees []model.Person) model.Task {
		cloned := make([]model.Person, len(assignees))
		for i, p := range assignees {
			cloned[i] = p.Clone()
		}
		return model.Task{
			ID:          id,
			Title:       draft.Title,
			Assignees:   cloned,
			Deadline:    draft.Deadline,
			Status:      model.StatusPending,
			Message:     draft.Message,
			IsGroupTask: draft.IsGroupTask,
			Priority:    priority,
			CreatedAt:   now,
		}
	}

	var created []model.Task
	if draft.IsGroupTask || len(draft.Assignees) == 1 {
		created = []model.Task{newTask(base, draft.Assignees)}
	} else {
		for i, p := range draft.Assignees {
			created = append(created, newTask(model.MemberID(base, i), []model.Person{p}))
		}
	}

	tasks := make([]model.Task, 0, len(cur.Tasks)+len(created))
	tasks = append(tasks, created...)
	tasks = append(tasks, cur.Tasks...)
	next := s.commit(&model.Snapshot{People: cur.People, Tasks: tasks})
	s.mu.Unlock()

	s.log.Debug("tasks added", "op", "add_task", "base_id", base, "created", len(created), "group", draft.IsGroupTask)
	s.notify(next)

	out := make([]model.Task, len(created))
	for i, t := range created {
		out[i] = t.Clone()
	}
	return out, nil
}

// UpdateTaskStatus replaces a task's status and completion time, leaving every
// other field alone. Moving back to pending clears the completion time; a
// completed status with a nil completedAt is stamped with the store clock.
func (s *Store) UpdateTaskStatus(id string, status model.Status, completedAt *time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	cur := s.state.Load()
	idx := indexOfTask(cur.Tasks, id)
	if idx < 0 {
		s.mu.Unlock()
		s.log.Warn("task not found", "op", "update_status", "task_id", id)
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	var at *time.Time
	switch {
	case status == model.StatusPending:
	case completedAt != nil:
		t := *completedAt
		at = &t
	default:
		t := s.clock()
		at = &t
	}

	tasks := make([]model.Task, len(cur.Tasks))
	copy(tasks, cur.Tasks)
	updated := tasks[idx]
	updated.Status = status
	updated.CompletedAt = at
	tasks[idx] = updated
	next := s.commit(&model.Snapshot{People: cur.People, Tasks: tasks})
	s.mu.Unlock()

	s.log.Debug("task status updated", "op", "update_status", "task_id", id, "status", status)
	s.notify(next)
	return nil
}

// ArchiveTask removes the task from the list entirely, keeping the relative
// order of the rest.
func (s *Store) ArchiveTask(id string) error {
	s.mu.Lock()
	cur := s.state.Load()
	idx := indexOfTask(cur.Tasks, id)
	if idx < 0 {
		s.mu.Unlock()
		s.log.Warn("task not found", "op", "archive", "task_id", id)
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	tasks := make([]model.Task, 0, len(cur.Tasks)-1)
	tasks = append(tasks, cur.Tasks[:idx]...)
	tasks = append(tasks, cur.Tasks[idx+1:]...)
	next := s.commit(&model.Snapshot{People: cur.People, Tasks: tasks})
	s.mu.Unlock()

	s.log.Debug("task archived", "op", "archive", "task_id", id, "tasks", len(tasks))
	s.notify(next)
	return nil
}

// commit must be called with s.mu held.
func (s *Store) commit(next *model.Snapshot) model.Snapshot {
	s.state.Store(next)
	return *next
}

func (s *Store) notify(snap model.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(model.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneSnapshot(snap))
	}
}

func validateDraft(d model.TaskDraft) error {
	switch {
	case d.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	case d.Deadline.IsZero():
		return fmt.Errorf("%w: deadline is required", ErrInvalidTask)
	case len(d.Assignees) == 0:
		return fmt.Errorf("%w: at least one assignee is required", ErrInvalidTask)
	case d.Priority != "" && !d.Priority.IsValid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, d.Priority)
	}
	return nil
}

func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func indexOfTask(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneSnapshot(snap model.Snapshot) model.Snapshot {
	out := model.Snapshot{
		People: make([]model.Person, len(snap.People)),
		Tasks:  make([]model.Task, len(snap.Tasks)),
	}
	for i, p := range snap.People {
		out.People[i] = p.Clone()
	}
	for i, t := range snap.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}
