package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayslice/internal/report"
)

var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")

	// same grey the report engine gives the unrecorded bucket
	colorUnrecorded = lipgloss.Color(report.UnrecordedColor)
)

// Chrome
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Day / Week / Month switcher inside the report panel
	periodActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorFg).
				Background(colorPrimary).
				Padding(0, 1)

	periodInactiveStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = panelStyle.
				BorderForeground(colorPrimary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)

// Timer face, one style per state
var (
	timerStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Align(lipgloss.Center)
	timerRunningStyle = timerStyle.Foreground(colorSuccess)
	timerPausedStyle  = timerStyle.Foreground(colorWarning)
)

// Text
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)

// Report rows
var (
	unrecordedStyle = lipgloss.NewStyle().Foreground(colorUnrecorded).Italic(true)
	slotClockStyle  = lipgloss.NewStyle().Foreground(colorHighlight)
	taskStyle       = mutedStyle.Italic(true)
	emptyBarStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
)

func tabStyle(active bool) lipgloss.Style {
	if active {
		return activeTabStyle
	}
	return inactiveTabStyle
}

func periodStyle(active bool) lipgloss.Style {
	if active {
		return periodActiveStyle
	}
	return periodInactiveStyle
}

// categoryStyle colours text with a category's hex colour. Categories
// without one render muted.
func categoryStyle(hex string) lipgloss.Style {
	if hex == "" {
		return mutedStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
