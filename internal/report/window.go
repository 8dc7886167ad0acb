package report

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow is returned when a window does not start before it ends.
var ErrInvalidWindow = errors.New("window start must be before end")

// Window is the half-open interval [Start, End) a report covers. Start is
// local midnight of the first day, End is local midnight after the last day.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates caller-supplied bounds.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: start, End: end}
	if !w.Valid() {
		return Window{}, fmt.Errorf("new window %s..%s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), ErrInvalidWindow)
	}
	return w, nil
}

// StartOfDay returns local midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayWindow covers the calendar day containing date.
func DayWindow(date time.Time) Window {
	start := StartOfDay(date)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow covers the seven days ending at endDate, inclusive.
func WeekWindow(endDate time.Time) Window {
	end := StartOfDay(endDate).AddDate(0, 0, 1)
	return Window{Start: end.AddDate(0, 0, -7), End: end}
}

// MonthWindow covers one calendar month.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// Duration is End - Start. DST days are 23 or 25 hours long.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Days returns the local midnight of every day in the window.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// LastDay is the local midnight of the final day in the window.
func (w Window) LastDay() time.Time {
	return StartOfDay(w.End.Add(-time.Nanosecond))
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether the two half-open windows share any instant.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

func (w Window) String() string {
	last := w.LastDay()
	if last.Equal(w.Start) {
		return w.Start.Format("Mon Jan 02, 2006")
	}
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 02"), last.Format("Jan 02, 2006"))
}
