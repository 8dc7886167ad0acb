package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/config"
	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCategory(t *testing.T, s *store.Store) store.Category {
	t.Helper()
	require.NoError(t, s.UpsertCategory(store.Category{
		ID: "dev", Value: "dev", Label: "Dev", Icon: "💻", Color: "#3b82f6", Order: 1,
	}))
	c, err := s.GetCategory("dev")
	require.NoError(t, err)
	return *c
}

var testPrefs = store.Preferences{
	IdleTimeout:     5 * time.Minute,
	IdleAction:      "pause",
	DefaultPeriod:   "day",
	ShowUnrecorded:  true,
	UnrecordedLabel: "Unrecorded",
}

func newTestTimer(s *store.Store) timerModel {
	return newTimerModel(s, zap.NewNop(), testPrefs)
}

func keyPress(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// runStatus executes cmd and returns the statusMsg it produces.
func runStatus(t *testing.T, cmd tea.Cmd) statusMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(statusMsg)
	require.True(t, ok, "expected a statusMsg")
	return msg
}

// ============================================================
// Timer model
// ============================================================

func TestTimerStartStop(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)

	tm := newTestTimer(s)
	assert.False(t, tm.running(), "timer should start stopped")

	require.NoError(t, tm.start(c, "write tests"))
	assert.True(t, tm.running())
	assert.False(t, tm.paused())
	assert.Equal(t, "dev", tm.categoryID)
	assert.Equal(t, "Dev", tm.categoryName)
	assert.Equal(t, "write tests", tm.task)
	assert.NotZero(t, tm.recordID)

	running, err := s.RunningRecord()
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, tm.recordID, running.ID)

	_, err = tm.stop()
	require.NoError(t, err)
	assert.False(t, tm.running())

	running, err = s.RunningRecord()
	require.NoError(t, err)
	assert.Nil(t, running)
}

func TestTimerStopWhenStopped(t *testing.T) {
	s := newTestStore(t)
	tm := newTestTimer(s)

	rec, err := tm.stop()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestTimerStartWhileRecording(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))

	other := newTestTimer(s)
	assert.ErrorIs(t, other.start(c, ""), store.ErrRecordRunning)
}

func TestTimerPauseResumeSplitsRecords(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, "essay"))

	require.NoError(t, tm.pauseAt(tm.startTime.Add(90*time.Minute)))
	assert.True(t, tm.paused())
	assert.Equal(t, 90*time.Minute, tm.currentElapsed())

	running, err := s.RunningRecord()
	require.NoError(t, err)
	assert.Nil(t, running, "a paused timer has no running record")

	records, err := s.AllRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5400), records[0].Duration)

	require.NoError(t, tm.resume())
	assert.True(t, tm.running())
	assert.False(t, tm.paused())
	assert.GreaterOrEqual(t, tm.currentElapsed(), 90*time.Minute)

	running, err = s.RunningRecord()
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, "essay", running.Task)
	assert.Equal(t, "dev", running.CategoryID)

	_, err = tm.stop()
	require.NoError(t, err)
	assert.Zero(t, tm.currentElapsed())
}

func TestTimerStopWhilePaused(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))
	require.NoError(t, tm.pauseAt(tm.startTime.Add(time.Hour)))

	rec, err := tm.stop()
	require.NoError(t, err)
	assert.Nil(t, rec, "the paused segment is already saved")
	assert.False(t, tm.running())

	records, err := s.AllRecords()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestTimerStopAfterExternalStop(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))
	require.NoError(t, tm.pauseAt(tm.startTime.Add(time.Hour)))
	require.NoError(t, tm.resume())

	// `dayslice record stop` from another terminal
	_, err := s.StopRecordingAt(tm.startTime.Add(time.Hour))
	require.NoError(t, err)

	rec, err := tm.stop()
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.False(t, tm.running())
	assert.Zero(t, tm.banked)
	assert.Zero(t, tm.currentElapsed())
}

func TestTimerPauseAfterExternalStop(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))
	_, err := s.StopRecordingAt(tm.startTime.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, tm.toggle())
	assert.False(t, tm.running())
}

func TestTimerToggleWhenStopped(t *testing.T) {
	s := newTestStore(t)
	tm := newTestTimer(s)

	require.NoError(t, tm.toggle())
	assert.False(t, tm.running())
}

func TestTimerElapsedWhenStopped(t *testing.T) {
	s := newTestStore(t)
	tm := newTestTimer(s)
	assert.Zero(t, tm.currentElapsed())
}

// ============================================================
// Idle detection
// ============================================================

func TestTimerIdlePause(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))

	tm.lastActivity = tm.startTime.Add(2 * time.Minute)
	idle, err := tm.tick(tm.lastActivity.Add(10 * time.Minute))
	require.NoError(t, err)
	require.NotNil(t, idle)
	assert.False(t, idle.stopped)
	assert.True(t, tm.paused())
	assert.True(t, tm.isIdle)

	records, err := s.AllRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(120), records[0].Duration, "record is cut at the last activity")

	// a second tick while idle does nothing
	idle, err = tm.tick(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, idle)
}

func TestTimerIdleRecovery(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))

	tm.lastActivity = tm.startTime.Add(time.Minute)
	_, err := tm.tick(tm.lastActivity.Add(6 * time.Minute))
	require.NoError(t, err)
	require.True(t, tm.isIdle)

	require.NoError(t, tm.recordActivity())
	assert.False(t, tm.isIdle)
	assert.True(t, tm.running())
	assert.False(t, tm.paused())

	running, err := s.RunningRecord()
	require.NoError(t, err)
	assert.NotNil(t, running)
}

func TestTimerIdleStop(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	tm.idleAction = "stop"
	require.NoError(t, tm.start(c, ""))

	tm.lastActivity = tm.startTime.Add(3 * time.Minute)
	idle, err := tm.tick(tm.lastActivity.Add(10 * time.Minute))
	require.NoError(t, err)
	require.NotNil(t, idle)
	assert.True(t, idle.stopped)
	assert.False(t, tm.running())

	records, err := s.AllRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(180), records[0].Duration)
}

func TestTimerTickBeforeTimeout(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	require.NoError(t, tm.start(c, ""))

	idle, err := tm.tick(tm.lastActivity.Add(4 * time.Minute))
	require.NoError(t, err)
	assert.Nil(t, idle)
	assert.False(t, tm.paused())
}

func TestTimerIdleDisabled(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	tm := newTestTimer(s)
	tm.applyPreferences(store.Preferences{IdleTimeout: 0, IdleAction: "pause"})
	require.NoError(t, tm.start(c, ""))

	idle, err := tm.tick(time.Now().Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Nil(t, idle)
	assert.False(t, tm.paused())
}

// ============================================================
// Restore
// ============================================================

func TestTimerRestore(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	_, err := s.StartRecording(c.ID, "from the cli")
	require.NoError(t, err)

	tm := newTestTimer(s)
	require.NoError(t, tm.restore())
	assert.True(t, tm.running())
	assert.Equal(t, "Dev", tm.categoryName)
	assert.Equal(t, "from the cli", tm.task)
}

func TestTimerRestoreUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	_, err := s.StartRecording("deleted", "")
	require.NoError(t, err)

	tm := newTestTimer(s)
	require.NoError(t, tm.restore())
	assert.True(t, tm.running())
	assert.Equal(t, report.UnknownLabel, tm.categoryName)
}

func TestTimerRestoreNothingRunning(t *testing.T) {
	s := newTestStore(t)
	tm := newTestTimer(s)
	require.NoError(t, tm.restore())
	assert.False(t, tm.running())
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), "formatDuration(%v)", tt.d)
	}
}

func TestFormatHM(t *testing.T) {
	assert.Equal(t, "0h 0m", formatHM(0))
	assert.Equal(t, "0h 0m", formatHM(-time.Minute))
	assert.Equal(t, "1h 30m", formatHM(90*time.Minute))
	assert.Equal(t, "24h 0m", formatHM(24*time.Hour))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "睡眠…", truncate("睡眠時間です", 3))
	assert.Equal(t, "a", truncate("abc", 1))
}

func TestShareBar(t *testing.T) {
	bar := shareBar(50, 10, "#ef4444")
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))

	assert.Equal(t, 10, strings.Count(shareBar(150, 10, "#ef4444"), "█"), "clamped to width")
	assert.Equal(t, 10, strings.Count(shareBar(0, 10, "#ef4444"), "░"))
	assert.Empty(t, shareBar(50, 0, "#ef4444"))
}

func TestColorDot(t *testing.T) {
	assert.Contains(t, colorDot("#ef4444"), "●")
	assert.Contains(t, colorDot(""), "●")
}

func TestManualInterval(t *testing.T) {
	start, end, err := manualInterval("2024-03-12", "09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 90*time.Minute, end.Sub(start))

	start, end, err = manualInterval("2024-03-12", "23:00", "01:00")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, end.Sub(start), "end before start wraps to the next day")
	assert.Equal(t, 13, end.Day())

	_, _, err = manualInterval("12/03/2024", "09:00", "10:00")
	assert.Error(t, err)
	_, _, err = manualInterval("2024-03-12", "9am", "10:00")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate("2024-02-29"))
	assert.Error(t, validateDate("2023-02-29"))
	assert.NoError(t, validateClock("07:45"))
	assert.Error(t, validateClock("25:00"))
	assert.NoError(t, validateMinutes("0"))
	assert.Error(t, validateMinutes("-1"))
	assert.Error(t, validateMinutes("five"))
}

func TestWindowLabel(t *testing.T) {
	day := time.Date(2024, 3, 12, 15, 0, 0, 0, time.Local)
	assert.Equal(t, "Tue Mar 12, 2024", windowLabel(report.DayWindow(day)))
	assert.Equal(t, "Mar 06 - Mar 12, 2024", windowLabel(report.WeekWindow(day)))
	assert.Equal(t, "March 2024", windowLabel(report.MonthWindow(2024, time.March, time.Local)))
}

func TestSlotEnd(t *testing.T) {
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)
	s := report.TimeSlot{Start: day.Add(22 * time.Hour), End: day.AddDate(0, 0, 1)}
	assert.Equal(t, "24:00", slotEnd(s, "15:04"))

	s.End = day.Add(23 * time.Hour)
	assert.Equal(t, "23:00", slotEnd(s, "15:04"))
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	assert.Equal(t, []string{"Record", "Categories", "Report", "Settings"}, viewNames)
	assert.Equal(t, viewState(0), viewRecord)
	assert.Equal(t, viewState(3), viewSettings)
}

// ============================================================
// Record view
// ============================================================

func newTestRecordModel(s *store.Store) recordModel {
	r := newRecordModel(s, zap.NewNop(), testPrefs)
	r.setSize(120, 40)
	return r
}

func TestRecordInit(t *testing.T) {
	s := newTestStore(t)
	r := newTestRecordModel(s)

	assert.False(t, r.isRunning())
	assert.False(t, r.isPaused())
	assert.Zero(t, r.elapsed())
	assert.NotNil(t, r.Init())
}

func TestRecordRestoresRunningRecord(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	_, err := s.StartRecording(c.ID, "")
	require.NoError(t, err)

	r := newTestRecordModel(s)
	assert.True(t, r.isRunning())
}

func TestRecordRefresh(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := report.StartOfDay(time.Now())
	_, err := s.CreateRecord(c.ID, "standup", start, start.Add(6*time.Hour))
	require.NoError(t, err)

	r := newTestRecordModel(s)
	msg, ok := r.refresh()().(recordDataMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	require.Len(t, msg.today.Slots, 1)
	require.Len(t, msg.today.Aggregates, 2)
	assert.Equal(t, 25.0, msg.today.Aggregates[0].Percentage)
	assert.True(t, msg.today.Aggregates[1].Unrecorded)

	r, _ = r.update(msg)
	require.Len(t, r.recent, 1)
	assert.Equal(t, "Dev", r.names["dev"])
	assert.Contains(t, r.view(), "Dev")
}

func TestRecordStartStop(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)

	r := newTestRecordModel(s)
	r.categories = []store.Category{c}

	r, cmd := r.startTimer(c.ID, "")
	assert.NotNil(t, cmd)
	assert.True(t, r.isRunning())
	assert.Contains(t, r.view(), "RECORDING")

	r, _ = r.stopTimer()
	assert.False(t, r.isRunning())
}

func TestRecordStartUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	r := newTestRecordModel(s)

	r, cmd := r.startTimer("nope", "")
	assert.False(t, r.isRunning())
	assert.True(t, runStatus(t, cmd).isError)
}

func TestRecordStartWithoutCategories(t *testing.T) {
	s := newTestStore(t)
	r := newTestRecordModel(s)

	r, cmd := r.update(keyPress("s"))
	assert.False(t, r.formActive)
	assert.True(t, runStatus(t, cmd).isError)
}

func TestRecordStartOpensForm(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	r := newTestRecordModel(s)
	r.categories = []store.Category{c}

	r, _ = r.update(keyPress("s"))
	assert.True(t, r.formActive)
	assert.Equal(t, "start", r.formType)
	assert.Equal(t, c.ID, *r.formCategory)

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, r.formActive)
}

func TestRecordHiddenCategoriesNotOffered(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	c.Hidden = true
	r := newTestRecordModel(s)
	r.categories = []store.Category{c}

	assert.Empty(t, r.visible())
	_, cmd := r.update(keyPress("n"))
	assert.True(t, runStatus(t, cmd).isError)
}

func TestRecordSaveManual(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	r := newTestRecordModel(s)
	r.categories = []store.Category{c}

	*r.formCategory = c.ID
	*r.formTask = " reading "
	*r.formDate = "2024-03-12"
	*r.formStart = "09:00"
	*r.formEnd = "10:15"
	_, cmd := r.saveManual()
	assert.NotNil(t, cmd)

	records, err := s.AllRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(75*60), records[0].Duration)
	assert.Equal(t, "reading", records[0].Task)
}

func TestRecordDeleteSelected(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := time.Now().Add(-2 * time.Hour)
	_, err := s.CreateRecord(c.ID, "", start, start.Add(time.Hour))
	require.NoError(t, err)

	r := newTestRecordModel(s)
	r, _ = r.update(r.refresh()())
	require.Len(t, r.recent, 1)

	_, cmd := r.update(keyPress("d"))
	assert.NotNil(t, cmd)

	records, err := s.AllRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordEditSelected(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local)
	rec, err := s.CreateRecord(c.ID, "draft", start, start.Add(time.Hour))
	require.NoError(t, err)

	r := newTestRecordModel(s)
	r, _ = r.update(r.refresh()())
	require.Len(t, r.recent, 1)

	r, _ = r.update(keyPress("e"))
	assert.True(t, r.formActive)
	assert.Equal(t, "edit", r.formType)
	assert.Equal(t, rec.ID, r.editID)
	assert.Equal(t, "2024-03-12", *r.formDate)
	assert.Equal(t, "09:00", *r.formStart)
	assert.Equal(t, "10:00", *r.formEnd)
	assert.Equal(t, "draft", *r.formTask)
	assert.Contains(t, r.view(), "Edit Record")

	*r.formTask = " final "
	*r.formEnd = "11:30"
	_, cmd := r.saveEdit()
	assert.False(t, runStatus(t, cmd).isError)

	got, err := s.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Task)
	assert.Equal(t, int64(150*60), got.Duration)
}

func TestRecordEditRunningRefused(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	_, err := s.StartRecording(c.ID, "")
	require.NoError(t, err)

	r := newTestRecordModel(s)
	r, _ = r.update(r.refresh()())
	require.Len(t, r.recent, 1)

	r, cmd := r.update(keyPress("e"))
	assert.False(t, r.formActive)
	assert.True(t, runStatus(t, cmd).isError)
}

func TestRecordEditKeepsHiddenCategory(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	c.Hidden = true
	r := newTestRecordModel(s)
	r.categories = []store.Category{c}

	assert.Empty(t, r.categoryOptions(""))
	assert.Len(t, r.categoryOptions(c.ID), 1)
}

// ============================================================
// Categories view
// ============================================================

func TestCategoriesRefreshAndHide(t *testing.T) {
	s := newTestStore(t)
	newTestCategory(t, s)

	c := newCategoriesModel(s)
	c.setSize(120, 40)
	c, _ = c.update(c.refresh()())
	require.Len(t, c.categories, 1)
	assert.Contains(t, c.view(), "Dev")

	_, cmd := c.update(keyPress("d"))
	assert.NotNil(t, cmd)

	visible, err := s.ListCategories(false)
	require.NoError(t, err)
	assert.Empty(t, visible, "category is hidden")

	c, _ = c.update(keyPress("a"))
	assert.True(t, c.showHidden)
	c, _ = c.update(c.refresh()())
	require.Len(t, c.categories, 1)
	assert.True(t, c.categories[0].Hidden)
}

func TestCategoriesSaveNew(t *testing.T) {
	s := newTestStore(t)
	c := newCategoriesModel(s)

	c.formType = "new"
	*c.formValue = " study "
	*c.formLabel = ""
	*c.formIcon = ""
	*c.formColor = ""
	require.NotNil(t, c.save())

	cats, err := s.ListCategories(false)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "study", cats[0].Value)
	assert.Equal(t, "study", cats[0].Label, "label defaults to the value")
	assert.Equal(t, report.DefaultIcon, cats[0].Icon)
	assert.Empty(t, cats[0].Color)
}

func TestCategoriesSaveEdit(t *testing.T) {
	s := newTestStore(t)
	cat := newTestCategory(t, s)
	c := newCategoriesModel(s)

	c.formType = "edit"
	c.editingID = cat.ID
	*c.formLabel = "Development"
	*c.formIcon = "🛠"
	*c.formColor = report.PresetColors[2]
	require.NotNil(t, c.save())

	got, err := s.GetCategory(cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Development", got.Label)
	assert.Equal(t, "🛠", got.Icon)
	assert.Equal(t, report.PresetColors[2], got.Color)
}

func TestColorOptions(t *testing.T) {
	assert.Len(t, colorOptions(), len(report.PresetColors)+1)
}

// ============================================================
// Report view
// ============================================================

func newTestReportModel(s *store.Store, prefs store.Preferences) reportModel {
	r := newReportModel(s, config.Report{}, prefs)
	r.setSize(120, 40)
	return r
}

func TestReportDefaultPeriod(t *testing.T) {
	s := newTestStore(t)
	prefs := testPrefs
	prefs.DefaultPeriod = "month"
	assert.Equal(t, report.Month, newTestReportModel(s, prefs).nav.Granularity())

	prefs.DefaultPeriod = "bogus"
	assert.Equal(t, report.Day, newTestReportModel(s, prefs).nav.Granularity())
}

func TestReportRefreshDay(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := report.StartOfDay(time.Now())
	_, err := s.CreateRecord(c.ID, "", start, start.Add(6*time.Hour))
	require.NoError(t, err)

	r := newTestReportModel(s, testPrefs)
	r, _ = r.update(r.refresh()())
	require.True(t, r.loaded)
	assert.Equal(t, 6*time.Hour, r.summary.Recorded)
	require.Len(t, r.summary.Aggregates, 2)
	assert.True(t, r.summary.Aggregates[1].Unrecorded)
	assert.Nil(t, r.daily)

	out := r.view()
	assert.Contains(t, out, "Dev")
	assert.Contains(t, out, "Unrecorded")
}

func TestReportHidesUnrecordedWhenDisabled(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := report.StartOfDay(time.Now())
	_, err := s.CreateRecord(c.ID, "", start, start.Add(time.Hour))
	require.NoError(t, err)

	prefs := testPrefs
	prefs.ShowUnrecorded = false
	r := newTestReportModel(s, prefs)
	r, _ = r.update(r.refresh()())
	require.Len(t, r.summary.Aggregates, 1)
	assert.False(t, r.summary.Aggregates[0].Unrecorded)
}

func TestReportNavigationClamped(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := report.StartOfDay(time.Now())
	_, err := s.CreateRecord(c.ID, "", start, start.Add(time.Hour))
	require.NoError(t, err)

	r := newTestReportModel(s, testPrefs)
	r, _ = r.update(r.refresh()())
	before := r.nav.Window()

	r, cmd := r.update(keyPress("h"))
	msg := runStatus(t, cmd)
	assert.True(t, msg.isError)
	assert.Equal(t, "No earlier records", msg.text)
	assert.True(t, r.nav.Window().Start.Equal(before.Start), "window unchanged")

	_, cmd = r.update(keyPress("l"))
	assert.Equal(t, "No later records", runStatus(t, cmd).text)
}

func TestReportNavigationMoves(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	today := report.StartOfDay(time.Now())
	old := today.AddDate(0, 0, -3)
	_, err := s.CreateRecord(c.ID, "", old, old.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.CreateRecord(c.ID, "", today, today.Add(time.Hour))
	require.NoError(t, err)

	r := newTestReportModel(s, testPrefs)
	r, _ = r.update(r.refresh()())

	r, cmd := r.update(keyPress("h"))
	require.NotNil(t, cmd)
	_, isData := cmd().(reportDataMsg)
	assert.True(t, isData)
	assert.True(t, r.nav.Window().Start.Equal(today.AddDate(0, 0, -1)))

	r, _ = r.update(keyPress("t"))
	assert.True(t, r.nav.Window().Start.Equal(today))
}

func TestReportSwitchToWeek(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := report.StartOfDay(time.Now())
	_, err := s.CreateRecord(c.ID, "", start, start.Add(2*time.Hour))
	require.NoError(t, err)

	r := newTestReportModel(s, testPrefs)
	r, cmd := r.update(keyPress("p"))
	assert.Equal(t, report.Week, r.nav.Granularity())

	r, _ = r.update(cmd())
	require.Len(t, r.daily, 7)
	assert.Equal(t, 2*time.Hour, r.summary.Recorded)
	assert.Contains(t, r.view(), "Week")

	r, _ = r.update(keyPress("p"))
	assert.Equal(t, report.Month, r.nav.Granularity())
	r, _ = r.update(keyPress("p"))
	assert.Equal(t, report.Day, r.nav.Granularity())
}

func TestReportSlots(t *testing.T) {
	s := newTestStore(t)
	c := newTestCategory(t, s)
	start := report.StartOfDay(time.Now())
	_, err := s.CreateRecord(c.ID, "deep work", start, start.Add(90*time.Minute))
	require.NoError(t, err)

	r := newTestReportModel(s, testPrefs)
	r, _ = r.update(r.refresh()())
	r, _ = r.update(keyPress("v"))
	require.True(t, r.showSlots)

	out := r.view()
	assert.Contains(t, out, "Slots 1-1 of 1")
	assert.Contains(t, out, "deep work")
}

func TestReportEmpty(t *testing.T) {
	s := newTestStore(t)
	r := newTestReportModel(s, testPrefs)
	assert.Contains(t, r.view(), "Loading")

	r, _ = r.update(r.refresh()())
	assert.Contains(t, r.view(), "No records in this period")
}

// ============================================================
// Settings view
// ============================================================

func TestFormatSettingValue(t *testing.T) {
	assert.Equal(t, "5 min", formatSettingValue("idle_timeout", "300"))
	assert.Equal(t, "off", formatSettingValue("idle_timeout", "0"))
	assert.Equal(t, "yes", formatSettingValue("show_unrecorded", "true"))
	assert.Equal(t, "no", formatSettingValue("show_unrecorded", "false"))
	assert.Equal(t, "week", formatSettingValue("default_period", "week"))
}

func TestMinToSecs(t *testing.T) {
	assert.Equal(t, "300", minToSecs("5"))
	assert.Equal(t, "0", minToSecs("0"))
	assert.Equal(t, "abc", minToSecs("abc"))
}

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)

	*m.idleTimeout = "10"
	*m.idleAction = "stop"
	*m.defaultPeriod = "week"
	*m.showUnrecorded = false
	*m.unrecordedLabel = "  "
	require.NoError(t, m.saveSettings())

	p := s.Preferences()
	assert.Equal(t, 10*time.Minute, p.IdleTimeout)
	assert.Equal(t, "stop", p.IdleAction)
	assert.Equal(t, "week", p.DefaultPeriod)
	assert.False(t, p.ShowUnrecorded)
	assert.Equal(t, "Unrecorded", p.UnrecordedLabel, "blank label keeps the old one")
}

func TestSettingsRefresh(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)
	m.setSize(120, 40)

	m, _ = m.update(m.refresh()())
	assert.NotEmpty(t, m.settings)
	assert.Contains(t, m.view(), "idle_timeout")

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.formActive)
	assert.Equal(t, "5", *m.idleTimeout)
}

// ============================================================
// App
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	app := NewApp(newTestStore(t), config.Report{}, zap.NewNop())
	app.width = 120
	app.height = 40
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, viewRecord, app.activeView)
	assert.False(t, app.showHelp)
	assert.False(t, app.exportPicking)
	assert.False(t, app.isFormActive())
	assert.NotNil(t, app.Init())
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t)
	for v := range viewNames {
		app.activeView = viewState(v)
		assert.NotEmpty(t, app.View(), "view %d rendered empty", v)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t)
	header := app.renderHeader()
	assert.Contains(t, header, "dayslice")
	for _, name := range viewNames {
		assert.Contains(t, header, name)
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(newTestStore(t), config.Report{}, nil)
	assert.Equal(t, "Loading...", app.View())
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t)

	m, _ := app.Update(statusMsg{text: "something broke", isError: true})
	app = m.(App)
	assert.True(t, app.statusError)
	assert.Contains(t, app.renderFooter(), "something broke")

	m, _ = app.Update(timerIdleMsg{stopped: true})
	app = m.(App)
	assert.False(t, app.statusError)
	assert.Contains(t, app.status, "stopped")
}

func TestAppTabCycles(t *testing.T) {
	app := newTestApp(t)

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = m.(App)
	assert.Equal(t, viewCategories, app.activeView)
	assert.NotNil(t, cmd)

	for range 3 {
		m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = m.(App)
	}
	assert.Equal(t, viewRecord, app.activeView)

	m, _ = app.Update(keyPress("3"))
	assert.Equal(t, viewReport, m.(App).activeView)
}

func TestAppDataMessagesReachInactiveViews(t *testing.T) {
	app := newTestApp(t)
	newTestCategory(t, app.store)

	msg := app.categories.refresh()()
	m, _ := app.Update(msg)
	app = m.(App)
	assert.Equal(t, viewRecord, app.activeView)
	assert.Len(t, app.categories.categories, 1)
}

func TestAppSettingsSaved(t *testing.T) {
	app := newTestApp(t)

	prefs := testPrefs
	prefs.IdleTimeout = 42 * time.Minute
	prefs.ShowUnrecorded = false
	m, _ := app.Update(settingsSavedMsg{prefs: prefs})
	app = m.(App)

	assert.Equal(t, 42*time.Minute, app.record.timer.idleTimeout)
	assert.Empty(t, app.report.label)
	assert.Empty(t, app.record.unrecordedLabel())
}

func TestAppExportPicker(t *testing.T) {
	app := newTestApp(t)

	m, _ := app.Update(keyPress("E"))
	app = m.(App)
	require.True(t, app.exportPicking)
	assert.Contains(t, app.View(), "Report summary")

	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = m.(App)
	assert.Equal(t, 1, app.exportCursor)

	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.(App).exportPicking)
}

func TestAppExport(t *testing.T) {
	app := newTestApp(t)
	app.exportDir = t.TempDir()
	c := newTestCategory(t, app.store)
	start := report.StartOfDay(time.Now())
	_, err := app.store.CreateRecord(c.ID, "", start, start.Add(time.Hour))
	require.NoError(t, err)

	for format := range exportFormats {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		require.True(t, ok, "format %d: got %#v", format, msg)
		_, err := os.Stat(done.path)
		assert.NoError(t, err)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	assert.NotEmpty(t, keys.ShortHelp())
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	require.NotEmpty(t, groups)
	for i, g := range groups {
		assert.NotEmpty(t, g, "full help group %d is empty", i)
	}
}

// ============================================================
// Styles (smoke test, just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timer", func() string { return timerStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"timerPaused", func() string { return timerPausedStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"periodActive", func() string { return periodActiveStyle.Render("test") }},
		{"periodInactive", func() string { return periodInactiveStyle.Render("test") }},
		{"unrecorded", func() string { return unrecordedStyle.Render("test") }},
		{"slotClock", func() string { return slotClockStyle.Render("test") }},
		{"task", func() string { return taskStyle.Render("test") }},
		{"emptyBar", func() string { return emptyBarStyle.Render("test") }},
	}

	for _, s := range styles {
		assert.NotEmpty(t, s.fn(), "style %q rendered empty", s.name)
	}
}

func TestStyleSelectors(t *testing.T) {
	assert.Equal(t, activeTabStyle.Render("x"), tabStyle(true).Render("x"))
	assert.Equal(t, inactiveTabStyle.Render("x"), tabStyle(false).Render("x"))
	assert.Equal(t, periodActiveStyle.Render("x"), periodStyle(true).Render("x"))
	assert.Equal(t, mutedStyle.Render("x"), categoryStyle("").Render("x"))
	assert.Contains(t, categoryStyle("#ef4444").Render("x"), "x")
}
