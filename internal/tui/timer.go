package tui

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel drives the store's running record. A pause closes the running
// record and a resume opens a new one with the same category and task, so
// paused time is never recorded.
type timerModel struct {
	store *store.Store
	log   *zap.Logger

	state     timerState
	startTime time.Time     // start of the running record
	banked    time.Duration // records already closed by pauses
	pausedAt  time.Time

	categoryID   string
	categoryName string
	task         string
	recordID     int64

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	idleAction   string
	isIdle       bool
}

func newTimerModel(s *store.Store, log *zap.Logger, prefs store.Preferences) timerModel {
	return timerModel{
		store:        s,
		log:          log,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  prefs.IdleTimeout,
		idleAction:   prefs.IdleAction,
	}
}

func (t *timerModel) applyPreferences(prefs store.Preferences) {
	t.idleTimeout = prefs.IdleTimeout
	t.idleAction = prefs.IdleAction
}

// restore picks up a recording left running by a previous session or by
// `dayslice record start`.
func (t *timerModel) restore() error {
	rec, err := t.store.RunningRecord()
	if err != nil || rec == nil {
		return err
	}
	name := report.UnknownLabel
	if c, err := t.store.GetCategory(rec.CategoryID); err == nil {
		name = c.ReportCategory().Name()
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	t.begin(rec, rec.CategoryID, name, rec.Task)
	t.banked = 0
	t.log.Info("restored running record", zap.Int64("id", rec.ID), zap.String("category", rec.CategoryID))
	return nil
}

func (t *timerModel) start(c store.Category, task string) error {
	rec, err := t.store.StartRecording(c.ID, task)
	if err != nil {
		return err
	}
	t.begin(rec, c.ID, c.ReportCategory().Name(), task)
	t.banked = 0
	return nil
}

func (t *timerModel) begin(rec *store.TimeRecord, categoryID, name, task string) {
	t.state = timerRunning
	t.startTime = rec.StartTime
	t.recordID = rec.ID
	t.categoryID = categoryID
	t.categoryName = name
	t.task = task
	t.lastActivity = time.Now()
	t.isIdle = false
}

// stop ends the session. The returned record is nil when the timer was paused
// (the last segment is already saved), the final segment was empty, or the
// record was already stopped outside this session.
func (t *timerModel) stop() (*store.TimeRecord, error) {
	switch t.state {
	case timerStopped:
		return nil, nil
	case timerPaused:
		t.reset()
		return nil, nil
	}
	rec, err := t.store.StopRecording()
	if errors.Is(err, store.ErrNotRecording) {
		t.log.Info("record already stopped elsewhere", zap.Int64("id", t.recordID))
		t.reset()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.reset()
	return rec, nil
}

func (t *timerModel) reset() {
	t.state = timerStopped
	t.banked = 0
	t.isIdle = false
}

func (t *timerModel) pauseAt(at time.Time) error {
	if t.state != timerRunning {
		return nil
	}
	if _, err := t.store.StopRecordingAt(at); err != nil {
		if errors.Is(err, store.ErrNotRecording) {
			t.reset()
			return nil
		}
		return err
	}
	if at.After(t.startTime) {
		t.banked += at.Sub(t.startTime)
	}
	t.state = timerPaused
	t.pausedAt = at
	return nil
}

func (t *timerModel) pause() error {
	return t.pauseAt(time.Now())
}

func (t *timerModel) resume() error {
	if t.state != timerPaused {
		return nil
	}
	rec, err := t.store.StartRecording(t.categoryID, t.task)
	if err != nil {
		return err
	}
	banked := t.banked
	t.begin(rec, t.categoryID, t.categoryName, t.task)
	t.banked = banked
	return nil
}

func (t *timerModel) toggle() error {
	switch t.state {
	case timerRunning:
		return t.pause()
	case timerPaused:
		return t.resume()
	}
	return nil
}

// tick checks for idleness. When the idle timeout passes, the running record
// is cut at the last activity and either paused or stopped according to
// idleAction; the returned msg is non-nil in that case.
func (t *timerModel) tick(now time.Time) (*timerIdleMsg, error) {
	if t.state != timerRunning || t.idleTimeout <= 0 || t.isIdle {
		return nil, nil
	}
	if now.Sub(t.lastActivity) <= t.idleTimeout {
		return nil, nil
	}

	if t.idleAction == "stop" {
		if _, err := t.store.StopRecordingAt(t.lastActivity); err != nil && !errors.Is(err, store.ErrNotRecording) {
			return nil, err
		}
		t.reset()
		t.log.Info("idle, recording stopped", zap.Time("at", t.lastActivity))
		return &timerIdleMsg{stopped: true}, nil
	}

	if err := t.pauseAt(t.lastActivity); err != nil {
		return nil, err
	}
	t.isIdle = true
	t.log.Info("idle, recording paused", zap.Time("at", t.lastActivity))
	return &timerIdleMsg{}, nil
}

// recordActivity resets the idle clock and resumes a timer paused by idleness.
func (t *timerModel) recordActivity() error {
	t.lastActivity = time.Now()
	if t.isIdle && t.state == timerPaused {
		t.isIdle = false
		return t.resume()
	}
	return nil
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerRunning:
		return t.banked + time.Since(t.startTime)
	case timerPaused:
		return t.banked
	}
	return 0
}
