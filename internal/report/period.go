package report

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the size of a report window.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
)

var granularityNames = []string{"day", "week", "month"}

func (g Granularity) String() string {
	if g < Day || g > Month {
		return fmt.Sprintf("granularity(%d)", int(g))
	}
	return granularityNames[g]
}

// ParseGranularity accepts day, week or month (any case).
func ParseGranularity(s string) (Granularity, error) {
	for i, name := range granularityNames {
		if strings.EqualFold(s, name) {
			return Granularity(i), nil
		}
	}
	return Day, fmt.Errorf("unknown period %q (want day, week or month)", s)
}

// Period is one navigable report window. Anchor is the day for Day, the last
// included day for Week and the first of the month for Month.
type Period struct {
	Granularity Granularity
	Anchor      time.Time
}

// NewPeriod returns the period of granularity g that contains date. Weeks end
// at date.
func NewPeriod(g Granularity, date time.Time) Period {
	day := StartOfDay(date)
	if g == Month {
		day = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}
	return Period{Granularity: g, Anchor: day}
}

func (p Period) Window() Window {
	switch p.Granularity {
	case Week:
		return WeekWindow(p.Anchor)
	case Month:
		return MonthWindow(p.Anchor.Year(), p.Anchor.Month(), p.Anchor.Location())
	default:
		return DayWindow(p.Anchor)
	}
}

// Step moves n units forward (negative n moves back).
func (p Period) Step(n int) Period {
	switch p.Granularity {
	case Week:
		p.Anchor = p.Anchor.AddDate(0, 0, 7*n)
	case Month:
		p.Anchor = p.Anchor.AddDate(0, n, 0)
	default:
		p.Anchor = p.Anchor.AddDate(0, 0, n)
	}
	return p
}

// BoundsOf returns the navigable range for records: local midnight of the
// earliest start through the end of the day of the latest end. Without any
// well-formed record the range is one year either side of today.
func BoundsOf(records []TimeRecord, today time.Time) Window {
	loc := today.Location()
	var lo, hi time.Time
	found := false
	for _, r := range records {
		if !r.valid() {
			continue
		}
		s, e := r.Start.In(loc), r.End.In(loc)
		if !found || s.Before(lo) {
			lo = s
		}
		if !found || e.After(hi) {
			hi = e
		}
		found = true
	}
	if !found {
		day := StartOfDay(today)
		return Window{Start: day.AddDate(-1, 0, 0), End: day.AddDate(1, 0, 1)}
	}
	return Window{Start: StartOfDay(lo), End: StartOfDay(hi.Add(-time.Nanosecond)).AddDate(0, 0, 1)}
}

// Navigator walks periods inside a bounded date range. Moves that would leave
// the range are ignored.
type Navigator struct {
	period Period
	bounds Window
}

// NewNavigator starts at the period of granularity g containing today, pulled
// into bounds when today lies outside them.
func NewNavigator(g Granularity, today time.Time, bounds Window) Navigator {
	n := Navigator{bounds: bounds}
	n.period = n.clamp(NewPeriod(g, today))
	return n
}

func (n Navigator) Period() Period { return n.period }
func (n Navigator) Window() Window { return n.period.Window() }
func (n Navigator) Bounds() Window { return n.bounds }

func (n Navigator) Granularity() Granularity { return n.period.Granularity }

// Previous moves one unit back. It reports whether the period changed.
func (n *Navigator) Previous() bool { return n.move(-1) }

// Next moves one unit forward. It reports whether the period changed.
func (n *Navigator) Next() bool { return n.move(1) }

func (n *Navigator) move(step int) bool {
	p := n.period.Step(step)
	if !n.inBounds(p) {
		return false
	}
	n.period = p
	return true
}

// CanPrevious and CanNext report whether the corresponding move would succeed.
func (n Navigator) CanPrevious() bool { return n.inBounds(n.period.Step(-1)) }
func (n Navigator) CanNext() bool     { return n.inBounds(n.period.Step(1)) }

// SetGranularity switches granularity and re-derives a period around today.
func (n *Navigator) SetGranularity(g Granularity, today time.Time) {
	n.period = n.clamp(NewPeriod(g, today))
}

// JumpTo selects the period containing date if that period is in range.
func (n *Navigator) JumpTo(date time.Time) bool {
	p := NewPeriod(n.period.Granularity, date)
	if !n.inBounds(p) {
		return false
	}
	n.period = p
	return true
}

// SetBounds replaces the range, keeping the current period when possible.
func (n *Navigator) SetBounds(bounds Window) {
	n.bounds = bounds
	n.period = n.clamp(n.period)
}

func (n Navigator) inBounds(p Period) bool {
	if !n.bounds.Valid() {
		return true
	}
	return p.Window().Overlaps(n.bounds)
}

func (n Navigator) clamp(p Period) Period {
	if n.inBounds(p) {
		return p
	}
	w := p.Window()
	if !w.End.After(n.bounds.Start) {
		return NewPeriod(p.Granularity, n.bounds.Start)
	}
	return NewPeriod(p.Granularity, n.bounds.LastDay())
}
