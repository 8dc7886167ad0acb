package report

import "strings"

// PresetColors is the fallback palette for categories without a colour.
var PresetColors = []string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#10b981", // green
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#06b6d4", // cyan
	"#84cc16", // lime
	"#f97316", // orange
	"#ec4899", // pink
	"#6b7280", // gray
}

const (
	UnknownCategoryID = "__unknown__"
	UnknownLabel      = "Unknown"
	DefaultIcon       = "📋"

	UnrecordedCategoryID   = "__unrecorded__"
	DefaultUnrecordedLabel = "Unrecorded"
	UnrecordedIcon         = "⚪️"
	UnrecordedColor        = "#e5e7eb"
)

// UnknownCategory stands in for records whose category id cannot be resolved.
func UnknownCategory() Category {
	return Category{
		ID:    UnknownCategoryID,
		Value: UnknownLabel,
		Label: UnknownLabel,
		Icon:  DefaultIcon,
	}
}

// colorResolver hands out display colours per category id. Explicit colours
// win; colourless categories get the next palette entry nobody uses yet, in
// first-seen order. When the palette is exhausted it wraps.
type colorResolver struct {
	taken    map[string]bool
	assigned map[string]string
	next     int
}

func newColorResolver() *colorResolver {
	return &colorResolver{
		taken:    make(map[string]bool),
		assigned: make(map[string]string),
	}
}

// reserve marks an explicit colour as in use without assigning it.
func (r *colorResolver) reserve(color string) {
	if color != "" {
		r.taken[strings.ToLower(color)] = true
	}
}

func (r *colorResolver) resolve(id, explicit string) string {
	if c, ok := r.assigned[id]; ok {
		return c
	}
	c := explicit
	if c == "" {
		c = r.nextFree()
	}
	r.assigned[id] = c
	r.reserve(c)
	return c
}

func (r *colorResolver) nextFree() string {
	n := len(PresetColors)
	for i := 0; i < n; i++ {
		idx := (r.next + i) % n
		c := PresetColors[idx]
		if !r.taken[strings.ToLower(c)] {
			r.next = (idx + 1) % n
			return c
		}
	}
	c := PresetColors[r.next%n]
	r.next = (r.next + 1) % n
	return c
}
