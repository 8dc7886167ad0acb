package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

func ToCSV(records []store.TimeRecord, categories map[string]*store.Category, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Category", "Task", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, r := range records {
		endStr := ""
		if r.EndTime != nil {
			endStr = r.EndTime.Local().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			categoryName(categories, r.CategoryID),
			r.Task,
			r.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(r.Duration, 10),
			formatDuration(r.Duration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// SummaryToCSV writes one row per aggregate, unrecorded bucket included.
func SummaryToCSV(s report.Summary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Window Start", "Window End", "Category", "Icon", "Color", "Duration (s)", "Duration", "Percent"}); err != nil {
		return err
	}
	start := s.Window.Start.Format(time.RFC3339)
	end := s.Window.End.Format(time.RFC3339)
	for _, a := range s.Aggregates {
		secs := int64(a.Total / time.Second)
		row := []string{
			start,
			end,
			a.Name,
			a.Icon,
			a.Color,
			strconv.FormatInt(secs, 10),
			formatDuration(secs),
			strconv.FormatFloat(a.Percentage, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func categoryName(categories map[string]*store.Category, id string) string {
	if c, ok := categories[id]; ok && c != nil {
		return c.ReportCategory().Name()
	}
	return report.UnknownLabel
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
