package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/config"
	"github.com/sadopc/dayslice/internal/export"
	"github.com/sadopc/dayslice/internal/store"
)

// exportFormats are the export picker entries, in display order.
var exportFormats = []string{"Records (CSV)", "Records (JSON, re-importable)", "Report summary (CSV)"}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	log    *zap.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	record     recordModel
	categories categoriesModel
	report     reportModel
	settings   settingsModel

	help        help.Model
	status      string
	statusError bool
}

// NewApp builds the TUI over s. rc supplies the week anchoring used by the
// report view; the remaining preferences come from the settings table.
func NewApp(s *store.Store, rc config.Report, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	h := help.New()
	h.ShowAll = false

	prefs := s.Preferences()
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return App{
		store:      s,
		log:        log,
		activeView: viewRecord,
		exportDir:  home,
		record:     newRecordModel(s, log, prefs),
		categories: newCategoriesModel(s),
		report:     newReportModel(s, rc, prefs),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.record.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.record.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		a.report.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewRecord
			return a, a.record.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCategories
			return a, a.categories.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReport
			return a, a.report.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Always route ticks to the timer
		var cmd tea.Cmd
		a.record, cmd = a.record.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	// Data messages go to their owner whatever view is active.
	case recordDataMsg:
		var cmd tea.Cmd
		a.record, cmd = a.record.update(msg)
		return a, cmd
	case categoriesDataMsg:
		var cmd tea.Cmd
		a.categories, cmd = a.categories.update(msg)
		return a, cmd
	case reportDataMsg:
		var cmd tea.Cmd
		a.report, cmd = a.report.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		if msg.isError {
			a.log.Warn("tui error", zap.String("status", msg.text))
		}
		return a, nil

	case timerStoppedMsg:
		a.setStatus("Recording stopped")
		if msg.record != nil {
			a.setStatus("Recording stopped: " + formatHM(time.Duration(msg.record.Duration)*time.Second))
		}
		return a, nil

	case timerStartedMsg:
		a.setStatus("Recording " + a.record.timer.categoryName)
		return a, nil

	case timerIdleMsg:
		if msg.stopped {
			a.setStatus("Idle: recording stopped at last activity")
		} else {
			a.setStatus("Idle: recording paused, press any key to resume")
		}
		return a, nil

	case settingsSavedMsg:
		a.record.prefs = msg.prefs
		a.record.timer.applyPreferences(msg.prefs)
		a.report.applyPreferences(msg.prefs)
		a.setStatus("Settings saved")
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to " + msg.path)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusError = false
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewRecord:
		a.record, cmd = a.record.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	case viewReport:
		a.report, cmd = a.report.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewRecord:
		return a.record.formActive
	case viewCategories:
		return a.categories.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewRecord:
		return a.record.refresh()
	case viewCategories:
		return a.categories.refresh()
	case viewReport:
		return a.report.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewRecord:
		content = a.record.view()
	case viewCategories:
		content = a.categories.view()
	case viewReport:
		content = a.report.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		tabs = append(tabs, tabStyle(viewState(i) == a.activeView).Render(name))
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("dayslice")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	if a.record.isRunning() {
		elapsed := a.record.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.record.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  summary uses the report period: "+windowLabel(a.report.nav.Window())))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	w, label := a.report.nav.Window(), a.report.label
	return func() tea.Msg {
		dateStr := time.Now().Format(time.DateOnly)

		var path string
		switch format {
		case 0, 1:
			records, err := a.store.ListRecords(store.RecordFilter{})
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			categories, err := a.store.ListCategories(true)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			if format == 0 {
				path = filepath.Join(a.exportDir, fmt.Sprintf("dayslice-export-%s.csv", dateStr))
				if err := export.ToCSV(records, export.CategoryMap(categories), path); err != nil {
					return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
				}
			} else {
				path = filepath.Join(a.exportDir, fmt.Sprintf("dayslice-export-%s.json", dateStr))
				if err := export.ToJSON(categories, records, path); err != nil {
					return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
				}
			}
		default:
			summary, err := a.store.BuildReport(w, label)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			path = filepath.Join(a.exportDir, fmt.Sprintf("dayslice-summary-%s.csv", w.Start.Format(time.DateOnly)))
			if err := export.SummaryToCSV(summary, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		}

		a.log.Info("exported", zap.String("path", path))
		return exportDoneMsg{path: path}
	}
}
