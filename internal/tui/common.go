package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/dayslice/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewRecord viewState = iota
	viewCategories
	viewReport
	viewSettings
)

var viewNames = []string{"Record", "Categories", "Report", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	record *store.TimeRecord
}

type timerStoppedMsg struct {
	record *store.TimeRecord
}

type timerIdleMsg struct {
	stopped bool
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct {
	prefs store.Preferences
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatHM renders d as "Xh Ym", the way report totals are shown.
func formatHM(d time.Duration) string {
	if d <= 0 {
		return "0h 0m"
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func colorDot(hex string) string {
	return categoryStyle(hex).Render("●")
}

// shareBar draws pct (0-100) as a bar of width cells.
func shareBar(pct float64, width int, hex string) string {
	if width < 1 {
		return ""
	}
	filled := int(pct/100*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := categoryStyle(hex).Render(strings.Repeat("█", filled))
	return bar + emptyBarStyle.Render(strings.Repeat("░", width-filled))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
