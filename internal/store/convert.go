package store

import (
	"strconv"
	"time"

	"github.com/sadopc/dayslice/internal/report"
)

// ReportCategory converts c for the report engine.
func (c Category) ReportCategory() report.Category {
	return report.Category{
		ID:    c.ID,
		Value: c.Value,
		Label: c.Label,
		Icon:  c.Icon,
		Color: c.Color,
		Order: c.Order,
	}
}

// Lookup builds the engine's category lookup. Hidden categories are included
// so that old records keep their name.
func Lookup(categories []Category) report.Categories {
	m := make(report.Categories, len(categories))
	for _, c := range categories {
		m[c.ID] = c.ReportCategory()
	}
	return m
}

// ReportRecords converts finished records for the report engine, preserving
// order. Running records are skipped.
func ReportRecords(records []TimeRecord) []report.TimeRecord {
	out := make([]report.TimeRecord, 0, len(records))
	for _, r := range records {
		if r.EndTime == nil {
			continue
		}
		out = append(out, report.TimeRecord{
			ID:         strconv.FormatInt(r.ID, 10),
			CategoryID: r.CategoryID,
			Task:       r.Task,
			Start:      r.StartTime,
			End:        *r.EndTime,
			Duration:   r.Duration,
		})
	}
	return out
}

// BuildReport loads everything overlapping w and runs the report pipeline.
func (s *Store) BuildReport(w report.Window, unrecordedLabel string) (report.Summary, error) {
	categories, err := s.ListCategories(true)
	if err != nil {
		return report.Summary{}, err
	}
	records, err := s.RecordsOverlapping(w.Start, w.End)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Build(ReportRecords(records), Lookup(categories), w, unrecordedLabel), nil
}

// NavigationBounds is report.BoundsOf computed in SQL rather than over every
// record.
func (s *Store) NavigationBounds(today time.Time) (report.Window, error) {
	first, last, ok, err := s.Bounds()
	if err != nil {
		return report.Window{}, err
	}
	if !ok {
		return report.BoundsOf(nil, today), nil
	}
	return report.BoundsOf([]report.TimeRecord{{Start: first, End: last}}, today), nil
}
