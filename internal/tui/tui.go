// Package tui provides the interactive deck dashboard and roster using Bubble
// Tea. It is a thin view over the store: every render re-derives urgency and
// countdowns from the current time.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/baiirun/deck/internal/chaser"
	"github.com/baiirun/deck/internal/model"
	"github.com/baiirun/deck/internal/store"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewMode represents the current screen.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewRoster
)

// InputMode represents what kind of input is active.
type InputMode int

const (
	InputNone      InputMode = iota
	InputTagFilter           // Entering roster tag filter
	InputNewTask             // New task form
	InputChaser              // Composing a chaser
)

// Options configures the TUI.
type Options struct {
	Store      *store.Store
	Dispatcher chaser.Dispatcher
	Refresh    time.Duration
	SignOff    string
	Logger     *slog.Logger
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	store      *store.Store
	dispatcher chaser.Dispatcher
	refresh    time.Duration
	signOff    string
	log        *slog.Logger

	now    time.Time
	snap   model.Snapshot
	active []model.Task   // dashboard rows
	roster []model.Person // ranked and filtered

	viewMode     ViewMode
	cursor       int
	rosterCursor int
	tagFilter    []string

	inputMode   InputMode
	filterInput textinput.Model
	taskForm    *taskForm
	chaserForm  *chaserForm

	width   int
	height  int
	err     error
	message string // temporary status message
}

// New creates a TUI model over the given store.
func New(opts Options) Model {
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fi := textinput.New()
	fi.Placeholder = "Engineering, Design"
	fi.CharLimit = 128
	fi.Width = 40

	m := Model{
		store:       opts.Store,
		dispatcher:  opts.Dispatcher,
		refresh:     refresh,
		signOff:     opts.SignOff,
		log:         log,
		filterInput: fi,
	}
	m.reload()
	return m
}

// Messages
type tickMsg time.Time

type actionMsg struct {
	message string
	err     error
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// reload pulls a fresh snapshot and re-derives every view from store time.
func (m *Model) reload() {
	m.now = m.store.Now()
	m.snap = m.store.Snapshot()
	m.active = model.ActiveTasks(m.snap.Tasks, m.now)
	m.roster = model.RankByReliability(model.FilterByTags(m.snap.People, m.tagFilter))

	if m.cursor >= len(m.active) {
		m.cursor = max(0, len(m.active)-1)
	}
	if m.rosterCursor >= len(m.roster) {
		m.rosterCursor = max(0, len(m.roster)-1)
	}
}

func (m Model) selectedTask() (model.Task, bool) {
	if len(m.active) == 0 || m.cursor >= len(m.active) {
		return model.Task{}, false
	}
	return m.active[m.cursor], true
}

func (m Model) selectedPerson() (model.Person, bool) {
	if len(m.roster) == 0 || m.rosterCursor >= len(m.roster) {
		return model.Person{}, false
	}
	return m.roster[m.rosterCursor], true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear message on any key
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.reload()
		return m, m.tick()

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
		}
		m.reload()
		return m, nil
	}

	// Forward cursor blinks to the active form
	switch m.inputMode {
	case InputNewTask:
		return m, m.taskForm.update(msg)
	case InputChaser:
		return m, m.chaserForm.update(msg)
	case InputTagFilter:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle input mode first
	switch m.inputMode {
	case InputTagFilter:
		return m.handleFilterKey(msg)
	case InputNewTask:
		return m.handleTaskFormKey(msg)
	case InputChaser:
		return m.handleChaserKey(msg)
	}

	switch m.viewMode {
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewRoster:
		return m.handleRosterKey(msg)
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.viewMode = ViewRoster

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.active)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.active)-1)

	case "r":
		m.reload()

	// Actions
	case "c":
		return m.doComplete(model.StatusCompleted)
	case "L":
		return m.doComplete(model.StatusLateCompleted)
	case "A":
		return m.doArchive()
	case "e":
		return m.startChaser()
	case "n":
		m.taskForm = newTaskForm(m.now)
		m.inputMode = InputNewTask
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleRosterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.viewMode = ViewDashboard

	case "up", "k":
		if m.rosterCursor > 0 {
			m.rosterCursor--
		}
	case "down", "j":
		if m.rosterCursor < len(m.roster)-1 {
			m.rosterCursor++
		}

	case "/":
		m.inputMode = InputTagFilter
		m.filterInput.SetValue(strings.Join(m.tagFilter, ", "))
		m.filterInput.Focus()
		return m, textinput.Blink

	case "esc":
		if len(m.tagFilter) > 0 {
			m.tagFilter = nil
			m.reload()
		}
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.filterInput.Blur()
		return m, nil
	case "enter":
		m.inputMode = InputNone
		m.filterInput.Blur()
		m.tagFilter = parseTags(m.filterInput.Value())
		m.rosterCursor = 0
		m.reload()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) handleTaskFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.taskForm
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.taskForm = nil
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case "ctrl+g":
		f.group = !f.group
		return m, nil
	case "enter":
		draft, err := f.draft(m.snap, time.Local)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.inputMode = InputNone
		m.taskForm = nil
		return m, m.addTask(draft)
	}
	return m, f.update(msg)
}

func (m Model) handleChaserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.chaserForm
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.chaserForm = nil
		return m, nil
	case "tab":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab":
		f.setFocus(f.focus - 1)
		return m, nil
	case "ctrl+x":
		f.removeLastCC()
		return m, nil
	case "ctrl+r":
		f.removeLastRecipient()
		return m, nil
	case "ctrl+s":
		d := f.final()
		if err := d.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		m.inputMode = InputNone
		m.chaserForm = nil
		return m, m.dispatch(d)
	case "enter":
		if f.focus == chaserCC {
			f.addCC(m.snap.People)
			return m, nil
		}
		if f.focus == chaserSubject {
			f.setFocus(chaserBody)
			return m, nil
		}
	}
	return m, f.update(msg)
}

func (m Model) doComplete(status model.Status) (Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		if err := m.store.UpdateTaskStatus(task.ID, status, nil); err != nil {
			return actionMsg{err: err}
		}
		verb := "Completed"
		if status == model.StatusLateCompleted {
			verb = "Completed late"
		}
		return actionMsg{message: fmt.Sprintf("%s: %s", verb, task.Title)}
	}
}

func (m Model) doArchive() (Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		if err := m.store.ArchiveTask(task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Archived %s", task.Title)}
	}
}

func (m Model) startChaser() (Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	if err := chaser.CheckUrgent(task, m.now); err != nil {
		m.message = "Only overdue tasks can be chased"
		return m, nil
	}
	if m.dispatcher == nil {
		m.err = fmt.Errorf("no chaser outbox configured")
		return m, nil
	}
	m.chaserForm = newChaserForm(task, m.signOff)
	m.inputMode = InputChaser
	return m, textinput.Blink
}

func (m Model) addTask(draft model.TaskDraft) tea.Cmd {
	return func() tea.Msg {
		created, err := m.store.AddTask(draft)
		if err != nil {
			return actionMsg{err: err}
		}
		if len(created) == 1 {
			return actionMsg{message: fmt.Sprintf("Created %s", created[0].ID)}
		}
		return actionMsg{message: fmt.Sprintf("Created %d tasks", len(created))}
	}
}

func (m Model) dispatch(d chaser.Draft) tea.Cmd {
	return func() tea.Msg {
		c, err := m.dispatcher.Dispatch(context.Background(), d)
		if err != nil {
			m.log.Warn("chaser dispatch failed", "task_id", d.TaskID, "err", err)
			return actionMsg{err: err}
		}
		m.log.Info("chaser queued", "chaser_id", c.ID, "task_id", c.TaskID, "to", len(c.To), "cc", len(c.CC))
		return actionMsg{message: fmt.Sprintf("Chaser queued for %d recipient(s)", len(c.To)+len(c.CC))}
	}
}

func parseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	switch {
	case m.inputMode == InputNewTask:
		b.WriteString(m.taskForm.view())
	case m.inputMode == InputChaser:
		b.WriteString(m.chaserForm.view(m.snap.People))
	case m.viewMode == ViewRoster:
		b.WriteString(m.rosterView())
	default:
		b.WriteString(m.dashboardView())
	}

	if m.inputMode == InputTagFilter {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render("Tags: ") + m.filterInput.View())
	}

	// Status message
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

// Run starts the TUI.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
