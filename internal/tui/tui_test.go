package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/baiirun/deck/internal/chaser"
	"github.com/baiirun/deck/internal/model"
	"github.com/baiirun/deck/internal/seed"
	"github.com/baiirun/deck/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeDispatcher struct {
	drafts []chaser.Draft
}

func (f *fakeDispatcher) Dispatch(_ context.Context, d chaser.Draft) (model.Chaser, error) {
	f.drafts = append(f.drafts, d)
	return model.Chaser{ID: "ch-0001", TaskID: d.TaskID, To: d.To, CC: d.CC}, nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func setupModel(t *testing.T) (Model, *store.Store, *testClock, *fakeDispatcher) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)}
	s := store.New(
		store.WithClock(clock.Now),
		store.WithIDGenerator(&model.SequenceGenerator{}),
		store.WithSnapshot(seed.Snapshot(clock.now, &model.SequenceGenerator{})),
	)
	disp := &fakeDispatcher{}
	m := New(Options{Store: s, Dispatcher: disp, Refresh: time.Second})
	return m, s, clock, disp
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	newM, cmd := m.Update(msg)
	got, ok := newM.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", newM)
	}
	return got, cmd
}

// runAction executes an action command and feeds its result back.
func runAction(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if _, ok := msg.(actionMsg); !ok {
		t.Fatalf("expected actionMsg, got %T", msg)
	}
	m, _ = update(t, m, msg)
	return m
}

func TestNew_ActiveTasksOnly(t *testing.T) {
	m, _, _, _ := setupModel(t)

	if len(m.active) != 5 {
		t.Fatalf("expected 5 active tasks, got %d", len(m.active))
	}
	for _, task := range m.active {
		if task.Status.IsCompleted() {
			t.Errorf("completed task %q on dashboard", task.Title)
		}
	}
	if m.viewMode != ViewDashboard {
		t.Errorf("expected dashboard view, got %v", m.viewMode)
	}
}

func TestInit_Ticks(t *testing.T) {
	m, _, _, _ := setupModel(t)
	if m.Init() == nil {
		t.Error("expected Init to schedule a refresh tick")
	}
}

func TestTick_RederivesUrgency(t *testing.T) {
	m, _, clock, _ := setupModel(t)

	// Third seed task is due in 2 hours
	target := m.active[2]
	if model.DeriveDisplayStatus(target, m.now) != model.DisplayPending {
		t.Fatalf("expected %q to start pending", target.Title)
	}

	clock.now = clock.now.Add(3 * time.Hour)
	m, cmd := update(t, m, tickMsg(clock.now))
	if cmd == nil {
		t.Error("expected tick to reschedule itself")
	}
	if !m.now.Equal(clock.now) {
		t.Errorf("now = %v, want %v", m.now, clock.now)
	}
	if got := model.DeriveDisplayStatus(m.active[2], m.now); got != model.DisplayUrgent {
		t.Errorf("status after deadline = %q, want urgent", got)
	}
	if summary := model.Summarize(m.snap.Tasks, m.now); summary.Urgent != 3 {
		t.Errorf("urgent count = %d, want 3", summary.Urgent)
	}
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	m, _, _, _ := setupModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if cmd != nil {
		t.Error("expected no command from WindowSizeMsg")
	}
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
	if !strings.Contains(m.View(), "OVERDUE") {
		t.Error("expected split view to show an OVERDUE badge")
	}
}

func TestComplete(t *testing.T) {
	m, s, _, _ := setupModel(t)
	task := m.active[0]

	m, cmd := update(t, m, key("c"))
	m = runAction(t, m, cmd)

	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	got, _ := s.Snapshot().FindTask(task.ID)
	if got.Status != model.StatusCompleted || got.CompletedAt == nil {
		t.Errorf("status = %q completedAt = %v, want completed with a time", got.Status, got.CompletedAt)
	}
	if len(m.active) != 4 {
		t.Errorf("expected completed task to leave the dashboard, got %d active", len(m.active))
	}
}

func TestCompleteLate(t *testing.T) {
	m, s, _, _ := setupModel(t)
	task := m.active[0]

	m, cmd := update(t, m, key("L"))
	runAction(t, m, cmd)

	got, _ := s.Snapshot().FindTask(task.ID)
	if got.Status != model.StatusLateCompleted {
		t.Errorf("status = %q, want late_completed", got.Status)
	}
}

func TestArchive(t *testing.T) {
	m, s, _, _ := setupModel(t)
	before := len(s.Tasks())
	task := m.active[1]

	m, _ = update(t, m, key("down"))
	m, cmd := update(t, m, key("A"))
	runAction(t, m, cmd)

	if len(s.Tasks()) != before-1 {
		t.Errorf("expected %d tasks after archive, got %d", before-1, len(s.Tasks()))
	}
	if _, ok := s.Snapshot().FindTask(task.ID); ok {
		t.Errorf("expected %s to be archived", task.ID)
	}
}

func TestChaser_OnlyForOverdue(t *testing.T) {
	m, _, _, _ := setupModel(t)

	// Move to the first pending task (index 2)
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("e"))

	if m.inputMode != InputNone {
		t.Error("expected chaser to be refused for a pending task")
	}
	if !strings.Contains(m.message, "overdue") {
		t.Errorf("message = %q, want overdue hint", m.message)
	}
}

func TestChaser_ComposeAndSend(t *testing.T) {
	m, _, _, disp := setupModel(t)
	task := m.active[0]

	m, _ = update(t, m, key("e"))
	if m.inputMode != InputChaser {
		t.Fatalf("expected chaser composer, got mode %v", m.inputMode)
	}
	if got := m.chaserForm.subject.Value(); got != "URGENT: "+task.Title+" is Overdue" {
		t.Errorf("subject = %q, want default subject", got)
	}

	// CC Emily by name fragment
	m.chaserForm.cc.SetValue("emi")
	m, _ = update(t, m, key("enter"))
	if len(m.chaserForm.draft.CC) != 1 || m.chaserForm.draft.CC[0] != "emily.davis@company.com" {
		t.Errorf("cc = %v, want emily", m.chaserForm.draft.CC)
	}

	m, cmd := update(t, m, key("ctrl+s"))
	if m.inputMode != InputNone {
		t.Error("expected composer to close after send")
	}
	m = runAction(t, m, cmd)

	if len(disp.drafts) != 1 {
		t.Fatalf("expected one dispatched chaser, got %d", len(disp.drafts))
	}
	d := disp.drafts[0]
	if d.TaskID != task.ID || len(d.To) != len(task.Assignees) {
		t.Errorf("unexpected draft: %+v", d)
	}
	if !strings.Contains(m.message, "3 recipient") {
		t.Errorf("message = %q", m.message)
	}
}

func TestNewTaskForm(t *testing.T) {
	m, s, _, _ := setupModel(t)
	before := len(s.Tasks())

	m, _ = update(t, m, key("n"))
	if m.inputMode != InputNewTask {
		t.Fatalf("expected new task form, got mode %v", m.inputMode)
	}

	f := m.taskForm
	f.inputs[fieldTitle].SetValue("Write launch notes")
	f.inputs[fieldDeadline].SetValue("2024-06-12 09:00")
	f.inputs[fieldAssignees].SetValue("alex.chen@company.com, lisa.wang@company.com")
	f.inputs[fieldPriority].SetValue("high")
	m, _ = update(t, m, key("ctrl+g"))
	if !m.taskForm.group {
		t.Fatal("expected ctrl+g to enable group mode")
	}

	m, cmd := update(t, m, key("enter"))
	m = runAction(t, m, cmd)

	tasks := s.Tasks()
	if len(tasks) != before+1 {
		t.Fatalf("expected one group task, got %d new", len(tasks)-before)
	}
	if tasks[0].Title != "Write launch notes" || len(tasks[0].Assignees) != 2 || tasks[0].Priority != model.PriorityHigh {
		t.Errorf("unexpected task: %+v", tasks[0])
	}
	if m.active[0].ID != tasks[0].ID {
		t.Error("expected new task at the top of the dashboard")
	}
}

func TestNewTaskForm_InvalidKeepsForm(t *testing.T) {
	m, _, _, _ := setupModel(t)
	m, _ = update(t, m, key("n"))
	m.taskForm.inputs[fieldTitle].SetValue("No deadline")

	m, cmd := update(t, m, key("enter"))
	if cmd != nil {
		t.Error("expected no command for an invalid form")
	}
	if m.inputMode != InputNewTask || m.err == nil {
		t.Error("expected form to stay open with an error")
	}

	m, _ = update(t, m, key("esc"))
	if m.inputMode != InputNone {
		t.Error("expected esc to close the form")
	}
}

func TestRoster_RankAndFilter(t *testing.T) {
	m, _, _, _ := setupModel(t)

	m, _ = update(t, m, key("tab"))
	if m.viewMode != ViewRoster {
		t.Fatal("expected tab to switch to roster")
	}
	if m.roster[0].Name != "Emily Davis" || m.roster[5].Name != "Michael Brown" {
		t.Errorf("unexpected ranking: first %q last %q", m.roster[0].Name, m.roster[5].Name)
	}
	if !strings.Contains(m.View(), "1st") {
		t.Error("expected ordinal rank in roster view")
	}

	m, _ = update(t, m, key("/"))
	if m.inputMode != InputTagFilter {
		t.Fatal("expected tag filter input")
	}
	m, _ = update(t, m, key("Design"))
	m, _ = update(t, m, key("enter"))

	if len(m.roster) != 2 {
		t.Fatalf("expected 2 designers, got %d", len(m.roster))
	}
	if m.roster[0].Name != "Lisa Wang" {
		t.Errorf("expected Lisa Wang first, got %q", m.roster[0].Name)
	}

	m, _ = update(t, m, key("esc"))
	if len(m.roster) != 6 {
		t.Errorf("expected esc to clear filter, got %d people", len(m.roster))
	}
}

func TestSparkline(t *testing.T) {
	got := sparkline([]model.HistorySample{
		{Punctuality: 0}, {Punctuality: 50}, {Punctuality: 100}, {Punctuality: 140},
	})
	if got != "▁▄██" {
		t.Errorf("sparkline = %q, want %q", got, "▁▄██")
	}
}

func TestParseTags(t *testing.T) {
	got := parseTags(" Design, ,Engineering ")
	if len(got) != 2 || got[0] != "Design" || got[1] != "Engineering" {
		t.Errorf("parseTags = %v", got)
	}
}
