package tui

import (
	"fmt"
	"strings"

	"github.com/baiirun/deck/internal/model"
	"github.com/dustin/go-humanize"
)

// recentTaskLimit is how many tasks the person pane lists.
const recentTaskLimit = 5

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline maps punctuality samples (0-100) onto block characters.
func sparkline(history []model.HistorySample) string {
	var b strings.Builder
	for _, h := range history {
		v := h.Punctuality
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v / 100 * float64(len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func (m Model) rosterView() string {
	if m.width >= minSplitWidth {
		return m.splitPanes(m.renderRosterList, m.renderPersonDetail, true)
	}
	height := m.height - 8
	if height < 10 {
		height = 15
	}
	return m.renderRosterList(m.width-(contentPadding*2), height)
}

func (m Model) renderRosterList(width, height int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("roster"))
	b.WriteString(fmt.Sprintf("  %d/%d people", len(m.roster), len(m.snap.People)))
	if len(m.tagFilter) > 0 {
		b.WriteString("  " + filterStyle.Render("tags:"+strings.Join(m.tagFilter, ",")))
	}
	b.WriteString("\n\n")

	rows := max(3, height-5)
	if len(m.roster) == 0 {
		if len(m.tagFilter) > 0 {
			b.WriteString("No people match these tags\n")
		} else {
			b.WriteString("Nobody on the roster yet. Add people with `deck person add`.\n")
		}
	} else {
		rowWidth := max(width, 40)
		start, end := visibleWindow(m.rosterCursor, len(m.roster), rows)
		for i := start; i < end; i++ {
			line := m.formatPersonLine(i, m.roster[i], rowWidth, i != m.rosterCursor)
			if i == m.rosterCursor {
				b.WriteString(selectedRowStyle.Width(rowWidth).Render(line))
			} else {
				b.WriteString(padToWidth(line, rowWidth))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:nav  /:filter tags  esc:clear filter"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab:dashboard  q:quit"))
	return b.String()
}

// formatPersonLine renders: rank name reliability avg-speed late-rate tags.
func (m Model) formatPersonLine(i int, p model.Person, width int, styled bool) string {
	rank := fmt.Sprintf("%-4s", humanize.Ordinal(i+1))
	rel := fmt.Sprintf("%3.0f%%", p.Stats.Reliability)
	speed := fmt.Sprintf("%4.1fh", p.Stats.AvgSpeedHours)
	late := fmt.Sprintf("%3.0f%% late", p.Stats.LateRate)

	nameWidth := 18
	name := fmt.Sprintf("%-*s", nameWidth, truncate(p.Name, nameWidth))

	tags := strings.Join(p.Tags, " ")
	tagWidth := width - 4 - nameWidth - len(rel) - len(speed) - len(late) - 5
	if tagWidth < 0 {
		tagWidth = 0
	}
	tags = truncate(tags, tagWidth)

	if !styled {
		return fmt.Sprintf("%s %s %s %s %s %s", rank, name, rel, speed, late, tags)
	}
	return fmt.Sprintf("%s %s %s %s %s %s",
		dimStyle.Render(rank), name,
		bandStyle(model.ReliabilityBand(p.Stats.Reliability)).Render(rel),
		dimStyle.Render(speed),
		bandStyle(model.LateRateBand(p.Stats.LateRate)).Render(late),
		tagStyle.Render(tags))
}

func (m Model) renderPersonDetail(width, height int) string {
	p, ok := m.selectedPerson()
	if !ok {
		return "No person selected"
	}

	var lines []string
	lines = append(lines, titleStyle.Render(truncate(p.Name, width-6))+" "+dimStyle.Render("("+p.Initials()+")"))
	lines = append(lines, "")
	lines = append(lines, detailLabelStyle.Render("ID:          ")+p.ID)
	lines = append(lines, detailLabelStyle.Render("Email:       ")+truncate(p.Email, width-14))
	lines = append(lines, detailLabelStyle.Render("Department:  ")+p.Department)
	if len(p.Tags) > 0 {
		var tags []string
		for _, t := range p.Tags {
			tags = append(tags, tagStyle.Render("["+t+"]"))
		}
		lines = append(lines, detailLabelStyle.Render("Tags:        ")+strings.Join(tags, " "))
	}

	lines = append(lines, "")
	lines = append(lines, detailLabelStyle.Render("Reliability: ")+
		bandStyle(model.ReliabilityBand(p.Stats.Reliability)).Render(fmt.Sprintf("%.0f%%", p.Stats.Reliability)))
	lines = append(lines, detailLabelStyle.Render("Avg speed:   ")+fmt.Sprintf("%.1fh", p.Stats.AvgSpeedHours))
	lines = append(lines, detailLabelStyle.Render("Late rate:   ")+
		bandStyle(model.LateRateBand(p.Stats.LateRate)).Render(fmt.Sprintf("%.0f%%", p.Stats.LateRate)))

	if len(p.TaskHistory) > 0 {
		first := p.TaskHistory[0].Date
		last := p.TaskHistory[len(p.TaskHistory)-1].Date
		lines = append(lines, detailLabelStyle.Render("Punctuality: ")+
			filterStyle.Render(sparkline(p.TaskHistory))+" "+dimStyle.Render(first+" → "+last))
	}

	lines = append(lines, "")
	lines = append(lines, detailLabelStyle.Render("Recent tasks:"))
	recent := model.RecentTasksFor(p.ID, m.snap.Tasks, recentTaskLimit)
	if len(recent) == 0 {
		lines = append(lines, "  "+dimStyle.Render("none"))
	}
	for _, t := range recent {
		status := model.DeriveDisplayStatus(t, m.now)
		lines = append(lines, "  "+statusStyle(status).Render(statusIcon(status)+" "+fmt.Sprintf("%-9s", status.Label()))+
			" "+truncate(t.Title, width-16))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
