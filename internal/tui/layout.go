package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const minSplitWidth = 80 // below this only the list pane is drawn

var (
	focusedBorder   = lipgloss.Color("39")
	unfocusedBorder = lipgloss.Color("241")
)

// splitPanes draws left and right next to each other, each inside a rounded
// border, sharing the width that remains after padding.
func (m Model) splitPanes(left, right func(width, height int) string, focusLeft bool) string {
	const gap = 1
	inner := m.width - 2*contentPadding - gap - 4 // two borders per pane
	leftWidth := inner / 2
	rightWidth := inner - leftWidth
	height := max(m.height-4, 10)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		pane(left(leftWidth, height), leftWidth, height, focusLeft),
		strings.Repeat(" ", gap),
		pane(right(rightWidth, height), rightWidth, height, !focusLeft),
	)
}

// pane boxes content at exactly width x height cells. Extra lines are cut.
func pane(content string, width, height int, focused bool) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = padToWidth(l, width)
	}
	border := unfocusedBorder
	if focused {
		border = focusedBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

// padToWidth right-pads s with spaces; styled text is measured by its
// visible cells.
func padToWidth(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return "..."
	}
	return string(r[:n-3]) + "..."
}

// visibleWindow returns the [start, end) range of n rows that keeps cursor
// inside a window of size rows.
func visibleWindow(cursor, n, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	start := 0
	if cursor >= size {
		start = cursor - size + 1
	}
	return start, min(start+size, n)
}
