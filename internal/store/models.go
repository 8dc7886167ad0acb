package store

import "time"

type Category struct {
	ID        string
	Value     string
	Label     string
	Icon      string
	Color     string
	Order     int
	Hidden    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TimeRecord struct {
	ID         int64
	ExternalID string // id from an imported document, empty for local records
	CategoryID string
	Task       string
	StartTime  time.Time
	EndTime    *time.Time // nil while recording
	Duration   int64      // seconds
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Running reports whether the record is the current recording.
func (r TimeRecord) Running() bool {
	return r.EndTime == nil
}

type Setting struct {
	Key   string
	Value string
}

// RecordFilter is used to filter time records in queries. From/To select
// records overlapping [From, To).
type RecordFilter struct {
	CategoryID     *string
	From           *time.Time
	To             *time.Time
	IncludeRunning bool
	Limit          int
}
