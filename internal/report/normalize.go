package report

import (
	"fmt"
	"sort"
)

// Normalize partitions w into non-overlapping slots taken from records.
//
// Records are ordered by start time with a stable sort, so among records that
// start at the same instant the one earlier in the input wins. Walking that
// order, each record only contributes the part of itself that lies past the
// end of everything accepted before it: earlier-starting records win every
// contested span. Records that end before they start, or that fall entirely
// outside w, are dropped. Gaps are not materialized. Slot bounds are
// expressed in w's location.
//
// Normalize panics if w is not a valid window.
func Normalize(records []TimeRecord, w Window, lookup CategoryLookup) []TimeSlot {
	if !w.Valid() {
		panic(fmt.Sprintf("report: normalize: %v", ErrInvalidWindow))
	}

	sorted := make([]TimeRecord, 0, len(records))
	for _, r := range records {
		if r.valid() {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	colors := newColorResolver()
	for _, r := range sorted {
		if cat, ok := resolveCategory(lookup, r.CategoryID); ok {
			colors.reserve(cat.Color)
		}
	}

	loc := w.Start.Location()
	var slots []TimeSlot
	cursor := w.Start
	for _, r := range sorted {
		if !r.End.After(w.Start) || !r.Start.Before(w.End) {
			continue
		}
		end := r.End
		if end.After(w.End) {
			end = w.End
		}
		if !end.After(cursor) {
			continue
		}
		start := r.Start
		if start.Before(cursor) {
			start = cursor
		}

		cat, ok := resolveCategory(lookup, r.CategoryID)
		if !ok {
			cat = UnknownCategory()
		}
		slots = append(slots, TimeSlot{
			Category: cat,
			Color:    colors.resolve(cat.ID, cat.Color),
			RecordID: r.ID,
			Task:     r.Task,
			Start:    start.In(loc),
			End:      end.In(loc),
		})
		cursor = end
	}
	return slots
}

func resolveCategory(lookup CategoryLookup, id string) (Category, bool) {
	if lookup == nil {
		return Category{}, false
	}
	return lookup.Category(id)
}
