package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

const recentLimit = 5

type recordModel struct {
	store  *store.Store
	log    *zap.Logger
	timer  timerModel
	prefs  store.Preferences
	width  int
	height int

	today      report.Summary
	recent     []store.TimeRecord
	categories []store.Category
	names      map[string]string
	cursor     int

	formActive bool
	form       *huh.Form
	formType   string // "start", "manual" or "edit"
	editID     int64

	// Form field pointers (survive value copies)
	formCategory *string
	formTask     *string
	formDate     *string
	formStart    *string
	formEnd      *string
}

func newRecordModel(s *store.Store, log *zap.Logger, prefs store.Preferences) recordModel {
	cat, task, date, start, end := "", "", "", "", ""
	r := recordModel{
		store:        s,
		log:          log,
		prefs:        prefs,
		timer:        newTimerModel(s, log, prefs),
		formCategory: &cat,
		formTask:     &task,
		formDate:     &date,
		formStart:    &start,
		formEnd:      &end,
	}
	if err := r.timer.restore(); err != nil {
		log.Warn("restore running record", zap.Error(err))
	}
	return r
}

func (r recordModel) Init() tea.Cmd {
	return r.refresh()
}

func (r *recordModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r recordModel) isRunning() bool { return r.timer.running() }
func (r recordModel) isPaused() bool  { return r.timer.paused() }
func (r recordModel) elapsed() time.Duration {
	return r.timer.currentElapsed()
}

type recordDataMsg struct {
	today      report.Summary
	recent     []store.TimeRecord
	categories []store.Category
	err        error
}

func (r recordModel) unrecordedLabel() string {
	if !r.prefs.ShowUnrecorded {
		return ""
	}
	return r.prefs.UnrecordedLabel
}

func (r recordModel) refresh() tea.Cmd {
	label := r.unrecordedLabel()
	return func() tea.Msg {
		today, err := r.store.BuildReport(report.DayWindow(time.Now()), label)
		if err != nil {
			return recordDataMsg{err: err}
		}
		recent, err := r.store.ListRecords(store.RecordFilter{IncludeRunning: true, Limit: recentLimit})
		if err != nil {
			return recordDataMsg{err: err}
		}
		categories, err := r.store.ListCategories(true)
		if err != nil {
			return recordDataMsg{err: err}
		}
		return recordDataMsg{today: today, recent: recent, categories: categories}
	}
}

// visible returns the categories offered by pickers.
func (r recordModel) visible() []store.Category {
	var out []store.Category
	for _, c := range r.categories {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

func (r recordModel) update(msg tea.Msg) (recordModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		switch msg.(type) {
		case tickMsg, recordDataMsg:
		case tea.KeyMsg:
			r.timer.lastActivity = time.Now()
			return r.updateForm(msg)
		default:
			return r.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case recordDataMsg:
		if msg.err != nil {
			return r, statusCmd(fmt.Sprintf("Error: %v", msg.err), true)
		}
		r.today = msg.today
		r.recent = msg.recent
		r.categories = msg.categories
		r.names = make(map[string]string, len(msg.categories))
		for _, c := range msg.categories {
			r.names[c.ID] = c.ReportCategory().Name()
		}
		if r.cursor >= len(r.recent) {
			r.cursor = max(0, len(r.recent)-1)
		}
		return r, nil

	case tickMsg:
		idle, err := r.timer.tick(time.Time(msg))
		if err != nil {
			return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		if idle != nil {
			return r, tea.Batch(r.refresh(), func() tea.Msg { return *idle })
		}
		return r, nil

	case tea.KeyMsg:
		if err := r.timer.recordActivity(); err != nil {
			return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if r.timer.running() {
				return r, nil
			}
			if len(r.visible()) == 0 {
				return r, statusCmd("No categories yet. Press 2 to go to Categories and create one.", true)
			}
			return r.showStartForm()

		case key.Matches(msg, keys.Stop):
			return r.stopTimer()

		case key.Matches(msg, keys.Pause):
			if err := r.timer.toggle(); err != nil {
				return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
			}
			return r, r.refresh()

		case key.Matches(msg, keys.New):
			if len(r.visible()) == 0 {
				return r, statusCmd("No categories yet. Press 2 to go to Categories and create one.", true)
			}
			return r.showManualForm()

		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.recent)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			return r.showEditForm()
		case key.Matches(msg, keys.Delete):
			return r.deleteSelected()
		}
	}
	return r, nil
}

// categoryOptions lists the visible categories. keep is offered as well when
// it is hidden, so editing an old record does not lose its category.
func (r recordModel) categoryOptions(keep string) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, c := range r.categories {
		if c.Hidden && c.ID != keep {
			continue
		}
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s %s", c.Icon, c.ReportCategory().Name()), c.ID))
	}
	return opts
}

func (r recordModel) showStartForm() (recordModel, tea.Cmd) {
	*r.formCategory = r.visible()[0].ID
	*r.formTask = ""
	r.formType = "start"

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Category").Options(r.categoryOptions("")...).Value(r.formCategory),
			huh.NewInput().Title("Task (optional)").Value(r.formTask),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r recordModel) showManualForm() (recordModel, tea.Cmd) {
	now := time.Now()
	*r.formCategory = r.visible()[0].ID
	*r.formTask = ""
	*r.formDate = now.Format(time.DateOnly)
	*r.formStart = now.Add(-time.Hour).Format("15:04")
	*r.formEnd = now.Format("15:04")
	r.formType = "manual"
	r.form = r.intervalForm("")
	r.formActive = true
	return r, r.form.Init()
}

// showEditForm opens the selected record in the interval form. Only finished
// records can be edited.
func (r recordModel) showEditForm() (recordModel, tea.Cmd) {
	if r.cursor >= len(r.recent) {
		return r, nil
	}
	rec := r.recent[r.cursor]
	if rec.Running() {
		return r, statusCmd("Stop the recording before editing it", true)
	}
	start := rec.StartTime.Local()
	*r.formCategory = rec.CategoryID
	*r.formTask = rec.Task
	*r.formDate = start.Format(time.DateOnly)
	*r.formStart = start.Format("15:04")
	*r.formEnd = rec.EndTime.Local().Format("15:04")
	r.formType = "edit"
	r.editID = rec.ID
	r.form = r.intervalForm(rec.CategoryID)
	r.formActive = true
	return r, r.form.Init()
}

func (r recordModel) intervalForm(keep string) *huh.Form {
	date, start := r.formDate, r.formStart
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Category").Options(r.categoryOptions(keep)...).Value(r.formCategory),
			huh.NewInput().Title("Task (optional)").Value(r.formTask),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(r.formDate).Validate(validateDate),
			huh.NewInput().Title("Start (HH:MM)").Value(r.formStart).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM, before start means next day)").Value(r.formEnd).
				Validate(func(s string) error {
					if err := validateClock(s); err != nil {
						return err
					}
					if _, _, err := manualInterval(*date, *start, s); err != nil {
						return err
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (r recordModel) updateForm(msg tea.Msg) (recordModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		r.form = nil
		switch r.formType {
		case "start":
			return r.startTimer(*r.formCategory, strings.TrimSpace(*r.formTask))
		case "manual":
			return r.saveManual()
		case "edit":
			return r.saveEdit()
		}
	}

	return r, cmd
}

func (r recordModel) category(id string) (store.Category, bool) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return store.Category{}, false
}

func (r recordModel) startTimer(categoryID, task string) (recordModel, tea.Cmd) {
	c, ok := r.category(categoryID)
	if !ok {
		return r, statusCmd("Unknown category "+categoryID, true)
	}
	if err := r.timer.start(c, task); err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	rec := &store.TimeRecord{ID: r.timer.recordID, CategoryID: c.ID, Task: task, StartTime: r.timer.startTime}
	return r, tea.Batch(
		r.refresh(),
		func() tea.Msg { return timerStartedMsg{record: rec} },
	)
}

func (r recordModel) stopTimer() (recordModel, tea.Cmd) {
	if !r.timer.running() {
		return r, nil
	}
	rec, err := r.timer.stop()
	if err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return r, tea.Batch(
		r.refresh(),
		func() tea.Msg { return timerStoppedMsg{record: rec} },
	)
}

func (r recordModel) saveManual() (recordModel, tea.Cmd) {
	start, end, err := manualInterval(*r.formDate, *r.formStart, *r.formEnd)
	if err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	rec, err := r.store.CreateRecord(*r.formCategory, strings.TrimSpace(*r.formTask), start, end)
	if err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return r, tea.Batch(
		r.refresh(),
		statusCmd(fmt.Sprintf("Recorded %s %s", r.names[rec.CategoryID], formatHM(end.Sub(start))), false),
	)
}

func (r recordModel) saveEdit() (recordModel, tea.Cmd) {
	start, end, err := manualInterval(*r.formDate, *r.formStart, *r.formEnd)
	if err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	if err := r.store.UpdateRecord(r.editID, *r.formCategory, strings.TrimSpace(*r.formTask), start, end); err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	r.log.Debug("record edited", zap.Int64("id", r.editID))
	return r, tea.Batch(r.refresh(), statusCmd("Record updated", false))
}

func (r recordModel) deleteSelected() (recordModel, tea.Cmd) {
	if r.cursor >= len(r.recent) {
		return r, nil
	}
	rec := r.recent[r.cursor]
	if rec.Running() {
		return r, statusCmd("Stop the recording before deleting it", true)
	}
	if err := r.store.DeleteRecord(rec.ID); err != nil {
		return r, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return r, tea.Batch(r.refresh(), statusCmd("Record deleted", false))
}

func validateDate(s string) error {
	if _, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

// manualInterval turns the manual form fields into an interval. An end clock
// at or before the start clock is read as the next day.
func manualInterval(date, start, end string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("use YYYY-MM-DD")
	}
	from, err := clockOn(day, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := clockOn(day, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.After(from) {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func clockOn(day time.Time, s string) (time.Time, error) {
	c, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("use HH:MM")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location()), nil
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func (r recordModel) view() string {
	if r.width < 20 {
		return "Terminal too small"
	}

	contentWidth := r.width - 4

	if r.formActive && r.form != nil {
		title := titleStyle.Render("Start Recording")
		switch r.formType {
		case "manual":
			title = titleStyle.Render("Add Record")
		case "edit":
			title = titleStyle.Render("Edit Record")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", r.form.View())
		return activePanelStyle.Width(contentWidth).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		r.renderTimerPanel(contentWidth),
		r.renderTodayPanel(contentWidth),
		r.renderRecentPanel(contentWidth),
	)
}

func (r recordModel) renderTimerPanel(w int) string {
	var timeDisplay string
	var indicator string

	if r.timer.running() {
		timeStr := formatDuration(r.timer.currentElapsed())

		if r.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if r.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RECORDING")
		}

		categoryLine := highlightStyle.Render(r.timer.categoryName)
		if r.timer.task != "" {
			categoryLine += mutedStyle.Render(" / " + r.timer.task)
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			categoryLine,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay = timerStyle.Width(w - 6).Render("00:00:00")
	indicator = mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to start recording, n to add a past record")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (r recordModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatHM(r.today.Recorded))
	header := fmt.Sprintf("%s  %s recorded", title, total)

	if len(r.today.Slots) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing recorded today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	barWidth := max(10, w-50)
	var rows []string
	rows = append(rows, header)
	for _, a := range r.today.Aggregates {
		rows = append(rows, fmt.Sprintf("  %s %s %-18s %8s %6s  %s",
			colorDot(a.Color),
			a.Icon,
			truncate(a.Name, 18),
			formatHM(a.Total),
			fmt.Sprintf("%.1f%%", a.Percentage),
			shareBar(a.Percentage, barWidth, a.Color),
		))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (r recordModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Records")
	if len(r.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No records yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for i, rec := range r.recent {
		name, ok := r.names[rec.CategoryID]
		if !ok {
			name = report.UnknownLabel
		}
		dur := formatHM(time.Duration(rec.Duration) * time.Second)
		status := "✓"
		if rec.Running() {
			status = "●"
			dur = "recording"
		}
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := fmt.Sprintf("%s%s %s  %-16s %-10s %s",
			cursor, status,
			rec.StartTime.Local().Format("Jan 02 15:04"),
			truncate(name, 16), dur, taskStyle.Render(truncate(rec.Task, 30)))
		rows = append(rows, style.Render(row))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  s: start  x: stop  space: pause  n: add past record  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
