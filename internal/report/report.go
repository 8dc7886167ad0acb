package report

import "time"

// Summary is the full result of one report run.
type Summary struct {
	Window     Window
	Slots      []TimeSlot
	Aggregates []CategoryAggregate
	Recorded   time.Duration
	Unrecorded time.Duration
}

// Build runs Normalize then Aggregate over w.
func Build(records []TimeRecord, lookup CategoryLookup, w Window, unrecordedLabel string) Summary {
	slots := Normalize(records, w, lookup)
	var recorded time.Duration
	for _, s := range slots {
		recorded += s.Duration()
	}
	return Summary{
		Window:     w,
		Slots:      slots,
		Aggregates: Aggregate(slots, w, unrecordedLabel),
		Recorded:   recorded,
		Unrecorded: w.Duration() - recorded,
	}
}

// RecordedAggregates returns the aggregates without the unrecorded bucket.
func (s Summary) RecordedAggregates() []CategoryAggregate {
	var out []CategoryAggregate
	for _, a := range s.Aggregates {
		if !a.Unrecorded {
			out = append(out, a)
		}
	}
	return out
}

// DayBreakdown is the per-category split of one day inside a longer window.
type DayBreakdown struct {
	Day        time.Time
	Aggregates []CategoryAggregate
}

// Daily splits an already normalized slot list by day. Slots crossing
// midnight are cut at the day boundary. The day windows come from w, so the
// result has one entry per day even when a day has no slots.
func Daily(slots []TimeSlot, w Window) []DayBreakdown {
	days := w.Days()
	out := make([]DayBreakdown, 0, len(days))
	i := 0
	for _, day := range days {
		dw := DayWindow(day)
		var parts []TimeSlot
		for j := i; j < len(slots) && slots[j].Start.Before(dw.End); j++ {
			s := slots[j]
			if !s.End.After(dw.Start) {
				continue
			}
			if s.Start.Before(dw.Start) {
				s.Start = dw.Start
			}
			if s.End.After(dw.End) {
				s.End = dw.End
			}
			parts = append(parts, s)
		}
		for i < len(slots) && !slots[i].End.After(dw.End) {
			i++
		}
		out = append(out, DayBreakdown{Day: day, Aggregates: Aggregate(parts, dw, "")})
	}
	return out
}
