package tui

import (
	"fmt"
	"strings"

	"github.com/baiirun/deck/internal/model"
)

func (m Model) dashboardView() string {
	if m.width >= minSplitWidth {
		return m.splitPanes(m.renderTaskList, m.renderTaskDetail, true)
	}
	height := m.height - 8
	if height < 10 {
		height = 15
	}
	return m.renderTaskList(m.width-(contentPadding*2), height)
}

func (m Model) summaryLine() string {
	s := model.Summarize(m.snap.Tasks, m.now)
	parts := []string{
		statusStyle(model.DisplayUrgent).Render(fmt.Sprintf("%s %d overdue", iconUrgent, s.Urgent)),
		statusStyle(model.DisplayPending).Render(fmt.Sprintf("%s %d pending", iconPending, s.Pending)),
		statusStyle(model.DisplayCompleted).Render(fmt.Sprintf("%s %d done", iconCompleted, s.Completed)),
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTaskList(width, height int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("deck"))
	b.WriteString("  " + m.summaryLine())
	b.WriteString("  " + dimStyle.Render(m.now.Format("Mon 15:04")))
	b.WriteString("\n\n")

	// Header takes 2 lines, footer 3
	rows := max(3, height-5)

	if len(m.active) == 0 {
		b.WriteString("Nothing pending. Press n to create a task.\n")
	} else {
		rowWidth := max(width, 40)
		start, end := visibleWindow(m.cursor, len(m.active), rows)
		for i := start; i < end; i++ {
			task := m.active[i]
			if i == m.cursor {
				b.WriteString(selectedRowStyle.Width(rowWidth).Render(m.formatTaskLine(task, rowWidth, false)))
			} else {
				b.WriteString(padToWidth(m.formatTaskLine(task, rowWidth, true), rowWidth))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:nav  c:done  L:done late  A:archive  e:chase  n:new"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab:roster  r:refresh  q:quit"))
	return b.String()
}

// formatTaskLine renders: icon label title initials relative-deadline.
func (m Model) formatTaskLine(task model.Task, width int, styled bool) string {
	status := model.DeriveDisplayStatus(task, m.now)
	icon := statusIcon(status)
	label := fmt.Sprintf("%-9s", status.Label())
	due := model.RelativeTime(task.Deadline, m.now)

	var initials []string
	for _, p := range task.Assignees {
		initials = append(initials, p.Initials())
	}
	who := strings.Join(initials, ",")

	// icon(1) + space(1) + label(9) + space(1) + spaces(2) + who + due
	titleWidth := width - 14 - len(who) - len(due)
	if titleWidth < 12 {
		titleWidth = 12
	}
	title := fmt.Sprintf("%-*s", titleWidth, truncate(task.Title, titleWidth))

	if !styled {
		return fmt.Sprintf("%s %s %s %s  %s", icon, label, title, who, due)
	}
	st := statusStyle(status)
	return fmt.Sprintf("%s %s %s %s  %s",
		st.Render(icon), st.Render(label), title, tagStyle.Render(who), dimStyle.Render(due))
}

func (m Model) renderTaskDetail(width, height int) string {
	task, ok := m.selectedTask()
	if !ok {
		return "No task selected"
	}
	status := model.DeriveDisplayStatus(task, m.now)
	st := statusStyle(status)

	var lines []string
	lines = append(lines, st.Render(statusIcon(status))+" "+titleStyle.Render(truncate(task.Title, width-4)))
	lines = append(lines, "")
	lines = append(lines, detailLabelStyle.Render("ID:       ")+task.ID)
	lines = append(lines, detailLabelStyle.Render("Status:   ")+st.Render(status.Label()))
	lines = append(lines, detailLabelStyle.Render("Priority: ")+
		priorityStyle(task.Priority).Render(string(task.Priority)))
	lines = append(lines, detailLabelStyle.Render("Deadline: ")+
		task.Deadline.Local().Format("Mon Jan 2 15:04")+" "+dimStyle.Render("("+model.RelativeTime(task.Deadline, m.now)+")"))
	if task.CompletedAt != nil {
		lines = append(lines, detailLabelStyle.Render("Done:     ")+task.CompletedAt.Local().Format("Mon Jan 2 15:04"))
	}
	if task.IsGroupTask {
		lines = append(lines, detailLabelStyle.Render("Mode:     ")+"group")
	}

	lines = append(lines, "")
	lines = append(lines, detailLabelStyle.Render("Assignees:"))
	for _, p := range task.Assignees {
		lines = append(lines, "  "+dimStyle.Render("→")+" "+truncate(p.Name+" <"+p.Email+">", width-4))
	}

	if task.Message != "" {
		lines = append(lines, "")
		lines = append(lines, detailLabelStyle.Render("Message:"))
		for _, l := range strings.Split(task.Message, "\n") {
			lines = append(lines, truncate(l, width))
		}
	}

	if status == model.DisplayUrgent {
		lines = append(lines, "")
		lines = append(lines, urgentBannerStyle.Render("Overdue. Press e to send a chaser."))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
