package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/baiirun/deck/internal/chaser"
	"github.com/baiirun/deck/internal/model"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Fields of the new task form, in tab order.
const (
	fieldTitle = iota
	fieldDeadline
	fieldAssignees
	fieldPriority
	fieldMessage
	fieldCount
)

var taskFieldLabels = [fieldCount]string{
	"Title:     ",
	"Deadline:  ",
	"Assignees: ",
	"Priority:  ",
	"Message:   ",
}

// taskForm collects a TaskDraft. Assignees are ids or emails separated by
// commas; ctrl+g toggles group mode.
type taskForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	group  bool
}

func newTaskForm(now time.Time) *taskForm {
	f := &taskForm{}
	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 50
		f.inputs[i] = ti
	}
	f.inputs[fieldTitle].Placeholder = "What needs doing?"
	f.inputs[fieldDeadline].Placeholder = now.Add(24 * time.Hour).Format("2006-01-02 15:04")
	f.inputs[fieldAssignees].Placeholder = "pe-..., someone@company.com"
	f.inputs[fieldPriority].Placeholder = string(model.PriorityMedium)
	f.inputs[fieldMessage].Placeholder = "Optional note"
	f.inputs[fieldTitle].Focus()
	return f
}

func (f *taskForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// draft validates the form against snap. Store-level validation still applies.
func (f *taskForm) draft(snap model.Snapshot, loc *time.Location) (model.TaskDraft, error) {
	title := strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		return model.TaskDraft{}, fmt.Errorf("title is required")
	}
	deadline, err := model.ParseDeadline(f.inputs[fieldDeadline].Value(), loc)
	if err != nil {
		return model.TaskDraft{}, err
	}
	assignees, err := snap.ResolvePeople(strings.Split(f.inputs[fieldAssignees].Value(), ","))
	if err != nil {
		return model.TaskDraft{}, err
	}
	if len(assignees) == 0 {
		return model.TaskDraft{}, fmt.Errorf("at least one assignee is required")
	}
	priority := model.Priority(strings.ToLower(strings.TrimSpace(f.inputs[fieldPriority].Value())))
	if priority != "" && !priority.IsValid() {
		return model.TaskDraft{}, fmt.Errorf("unknown priority %q", priority)
	}
	return model.TaskDraft{
		Title:       title,
		Deadline:    deadline,
		Assignees:   assignees,
		Message:     strings.TrimSpace(f.inputs[fieldMessage].Value()),
		IsGroupTask: f.group,
		Priority:    priority,
	}, nil
}

func (f *taskForm) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New task"))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := detailLabelStyle.Render(taskFieldLabels[i])
		b.WriteString(label + in.View() + "\n")
	}
	mode := "individual (one task per assignee)"
	if f.group {
		mode = "group (one shared task)"
	}
	b.WriteString(detailLabelStyle.Render("Mode:      ") + mode + "\n\n")
	b.WriteString(helpStyle.Render("tab:next field  ctrl+g:toggle group  enter:create  esc:cancel"))
	return b.String()
}

// Fields of the chaser composer.
const (
	chaserCC = iota
	chaserSubject
	chaserBody
	chaserFieldCount
)

// chaserForm edits a chaser.Draft before it is dispatched.
type chaserForm struct {
	task    model.Task
	draft   chaser.Draft
	cc      textinput.Model
	subject textinput.Model
	body    textarea.Model
	focus   int
}

func newChaserForm(task model.Task, signOff string) *chaserForm {
	d := chaser.NewDraft(task, signOff)

	cc := textinput.New()
	cc.Placeholder = "Type a name to CC..."
	cc.CharLimit = 128
	cc.Width = 50
	cc.Focus()

	subject := textinput.New()
	subject.CharLimit = 256
	subject.Width = 60
	subject.SetValue(d.Subject)

	body := textarea.New()
	body.ShowLineNumbers = false
	body.SetWidth(70)
	body.SetHeight(8)
	body.SetValue(d.Body)

	return &chaserForm{task: task, draft: d, cc: cc, subject: subject, body: body}
}

func (f *chaserForm) setFocus(i int) {
	f.cc.Blur()
	f.subject.Blur()
	f.body.Blur()
	f.focus = (i + chaserFieldCount) % chaserFieldCount
	switch f.focus {
	case chaserCC:
		f.cc.Focus()
	case chaserSubject:
		f.subject.Focus()
	case chaserBody:
		f.body.Focus()
	}
}

func (f *chaserForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case chaserCC:
		f.cc, cmd = f.cc.Update(msg)
	case chaserSubject:
		f.subject, cmd = f.subject.Update(msg)
	case chaserBody:
		f.body, cmd = f.body.Update(msg)
	}
	return cmd
}

func (f *chaserForm) suggestions(people []model.Person) []model.Person {
	return chaser.CCSuggestions(people, f.draft, f.cc.Value(), chaser.DefaultSuggestionLimit)
}

// addCC takes the typed address, or the first suggestion when the input is a
// name fragment.
func (f *chaserForm) addCC(people []model.Person) {
	value := strings.TrimSpace(f.cc.Value())
	if value == "" {
		return
	}
	if strings.Contains(value, "@") {
		f.draft.AddCC(value)
	} else if s := f.suggestions(people); len(s) > 0 {
		f.draft.AddCC(s[0].Email)
	} else {
		return
	}
	f.cc.SetValue("")
}

func (f *chaserForm) removeLastCC() {
	if n := len(f.draft.CC); n > 0 {
		f.draft.RemoveCC(f.draft.CC[n-1])
	}
}

func (f *chaserForm) removeLastRecipient() {
	if n := len(f.draft.To); n > 0 {
		f.draft.RemoveRecipient(f.draft.To[n-1])
	}
}

// final copies the edited subject and body into the draft.
func (f *chaserForm) final() chaser.Draft {
	d := f.draft
	d.Subject = f.subject.Value()
	d.Body = f.body.Value()
	return d
}

func (f *chaserForm) view(people []model.Person) string {
	var b strings.Builder
	b.WriteString(urgentBannerStyle.Render("Chase: " + f.task.Title))
	b.WriteString("\n\n")
	b.WriteString(detailLabelStyle.Render("To:      ") + strings.Join(f.draft.To, ", ") + "\n")
	b.WriteString(detailLabelStyle.Render("CC:      ") + strings.Join(f.draft.CC, ", ") + "\n")
	b.WriteString(detailLabelStyle.Render("Add CC:  ") + f.cc.View() + "\n")
	if f.focus == chaserCC {
		for _, p := range f.suggestions(people) {
			b.WriteString("         " + dimStyle.Render("→ "+p.Name+" <"+p.Email+">") + "\n")
		}
	}
	b.WriteString(detailLabelStyle.Render("Subject: ") + f.subject.View() + "\n\n")
	b.WriteString(f.body.View() + "\n\n")
	b.WriteString(helpStyle.Render("tab:next field  enter:add cc  ctrl+x:drop last cc  ctrl+r:drop last recipient  ctrl+s:send  esc:cancel"))
	return b.String()
}
