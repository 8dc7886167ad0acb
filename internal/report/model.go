// Package report turns raw time records into a non-overlapping partition of a
// day, week or month window and aggregates it per category.
//
// Everything in this package is a pure function of its inputs. Nothing here
// touches the database or the clock.
package report

import "time"

// Category is the read-only view of a category the engine needs.
type Category struct {
	ID    string
	Value string
	Label string
	Icon  string
	Color string // hex, optional
	Order int
}

// Name returns the label, falling back to the value.
func (c Category) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Value
}

// CategoryLookup resolves a category id.
type CategoryLookup interface {
	Category(id string) (Category, bool)
}

// Categories is an id-keyed CategoryLookup.
type Categories map[string]Category

func (c Categories) Category(id string) (Category, bool) {
	cat, ok := c[id]
	return cat, ok
}

// NewCategories indexes cats by id.
func NewCategories(cats []Category) Categories {
	m := make(Categories, len(cats))
	for _, c := range cats {
		m[c.ID] = c
	}
	return m
}

// TimeRecord is a raw interval as stored. Duration is whatever the writer
// computed and may be stale; the engine only looks at Start and End.
type TimeRecord struct {
	ID         string
	CategoryID string
	Task       string
	Start      time.Time
	End        time.Time
	Duration   int64 // seconds
}

func (r TimeRecord) valid() bool {
	return r.End.After(r.Start)
}

// TimeSlot is one category-tagged piece of a window.
type TimeSlot struct {
	Category Category
	Color    string
	RecordID string
	Task     string
	Start    time.Time
	End      time.Time
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func (s TimeSlot) DurationMinutes() float64 {
	return s.Duration().Minutes()
}

// CategoryAggregate is the total time spent on one category inside a window.
type CategoryAggregate struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	Total      time.Duration
	Percentage float64
	Unrecorded bool
}

// TotalSeconds returns Total in seconds.
func (a CategoryAggregate) TotalSeconds() float64 {
	return a.Total.Seconds()
}
