package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/dayslice/internal/config"
	"github.com/sadopc/dayslice/internal/report"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseDate reads YYYY-MM-DD in local time. Empty means today.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" || strings.EqualFold(s, "today") {
		return report.StartOfDay(now), nil
	}
	if strings.EqualFold(s, "yesterday") {
		return report.StartOfDay(now).AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// parseClock reads a full timestamp, or a bare HH:MM on the day of now.
func parseClock(s string, now time.Time) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		day := report.StartOfDay(now)
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want YYYY-MM-DD HH:MM or HH:MM)", s)
}

// periodWindow resolves the report window for a period name and date.
func periodWindow(period, date string, rc config.Report, now time.Time) (report.Window, error) {
	if period == "" {
		period = rc.DefaultPeriod
	}
	g, err := report.ParseGranularity(period)
	if err != nil {
		return report.Window{}, err
	}
	day, err := parseDate(date, now)
	if err != nil {
		return report.Window{}, err
	}
	if g == report.Week {
		day = rc.WeekAnchor(day)
	}
	return report.NewPeriod(g, day).Window(), nil
}
