package tui

import (
	"github.com/baiirun/deck/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Status icons
const (
	iconPending       = "○"
	iconUrgent        = "⚠"
	iconCompleted     = "●"
	iconLateCompleted = "◐"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	statusColors = map[model.DisplayStatus]lipgloss.Color{
		model.DisplayPending:       lipgloss.Color("252"),
		model.DisplayUrgent:        lipgloss.Color("196"),
		model.DisplayCompleted:     lipgloss.Color("42"),
		model.DisplayLateCompleted: lipgloss.Color("214"),
	}

	bandColors = map[model.Band]lipgloss.Color{
		model.BandGood: lipgloss.Color("42"),
		model.BandFair: lipgloss.Color("214"),
		model.BandPoor: lipgloss.Color("196"),
	}

	priorityColors = map[model.Priority]lipgloss.Color{
		model.PriorityCritical: lipgloss.Color("196"),
		model.PriorityHigh:     lipgloss.Color("214"),
		model.PriorityMedium:   lipgloss.Color("252"),
		model.PriorityLow:      lipgloss.Color("245"),
	}

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147"))

	urgentBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	// Content area padding
	contentPadding = 2
)

func statusIcon(s model.DisplayStatus) string {
	switch s {
	case model.DisplayPending:
		return iconPending
	case model.DisplayUrgent:
		return iconUrgent
	case model.DisplayCompleted:
		return iconCompleted
	case model.DisplayLateCompleted:
		return iconLateCompleted
	default:
		return "?"
	}
}

func statusStyle(s model.DisplayStatus) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColors[s])
}

func bandStyle(b model.Band) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(bandColors[b])
}

func priorityStyle(p model.Priority) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(priorityColors[p])
}
