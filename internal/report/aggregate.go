package report

import (
	"fmt"
	"sort"
	"time"
)

// Aggregate totals slots per category, longest first (ties by category id).
// When unrecordedLabel is non-empty and the slots leave part of w uncovered, an
// extra aggregate for that remainder is appended last, so the totals of the
// returned list add up to w.Duration().
//
// Aggregate panics if w is not a valid window.
func Aggregate(slots []TimeSlot, w Window, unrecordedLabel string) []CategoryAggregate {
	if !w.Valid() {
		panic(fmt.Sprintf("report: aggregate: %v", ErrInvalidWindow))
	}

	colors := newColorResolver()
	for _, s := range slots {
		colors.reserve(s.Category.Color)
	}

	index := make(map[string]int)
	var out []CategoryAggregate
	var recorded time.Duration
	for _, s := range slots {
		d := s.Duration()
		recorded += d
		id := s.Category.ID
		if i, ok := index[id]; ok {
			out[i].Total += d
			continue
		}

		explicit := s.Category.Color
		if explicit == "" {
			explicit = s.Color
		}
		icon := s.Category.Icon
		if icon == "" {
			icon = DefaultIcon
		}
		name := s.Category.Name()
		if name == "" {
			name = UnknownLabel
		}
		index[id] = len(out)
		out = append(out, CategoryAggregate{
			CategoryID: id,
			Name:       name,
			Icon:       icon,
			Color:      colors.resolve(id, explicit),
			Total:      d,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CategoryID < out[j].CategoryID
	})

	total := w.Duration()
	if unrecordedLabel != "" {
		if rest := total - recorded; rest > 0 {
			out = append(out, CategoryAggregate{
				CategoryID: UnrecordedCategoryID,
				Name:       unrecordedLabel,
				Icon:       UnrecordedIcon,
				Color:      UnrecordedColor,
				Total:      rest,
				Unrecorded: true,
			})
		}
	}

	for i := range out {
		out[i].Percentage = percentOf(out[i].Total, total)
	}
	return out
}

func percentOf(d, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(d) / float64(total) * 100
}
