// Package format renders report summaries for the command line.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sadopc/dayslice/internal/report"
)

// Options control WriteSummary.
type Options struct {
	Format        string // table, plain or json
	IncludeHeader bool
	Slots         bool // also list the chronological slots
}

// WriteSummary writes s to w in the requested format.
func WriteSummary(w io.Writer, s report.Summary, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", "table":
		return writeSummaryTable(w, s, opts)
	case "plain":
		return writeSummaryPlain(w, s, opts)
	case "json":
		return writeSummaryJSON(w, s, opts)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// Duration renders d as "Xh Ym", rounding down to the minute.
func Duration(d time.Duration) string {
	if d <= 0 {
		return "0h 0m"
	}
	h := int64(d / time.Hour)
	m := int64(d%time.Hour) / int64(time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}

func writeSummaryTable(w io.Writer, s report.Summary, opts Options) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(s.Window.String())
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 40},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	if opts.IncludeHeader {
		tw.AppendHeader(table.Row{"", "Category", "Time", "Share"})
	}
	for _, a := range s.Aggregates {
		tw.AppendRow(table.Row{a.Icon, a.Name, Duration(a.Total), fmt.Sprintf("%.1f%%", a.Percentage)})
	}
	if len(s.Aggregates) == 0 {
		tw.AppendRow(table.Row{"-", "(no records)", "0h 0m", "-"})
	}
	tw.AppendFooter(table.Row{"", "Recorded", Duration(s.Recorded), fmt.Sprintf("%.1f%%", percent(s.Recorded, s.Window.Duration()))})
	_ = tw.Render()

	if !opts.Slots || len(s.Slots) == 0 {
		return nil
	}

	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.SetStyle(table.StyleRounded)
	st.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 40},
	})
	if opts.IncludeHeader {
		st.AppendHeader(table.Row{"Start", "End", "Category", "Time", "Task"})
	}
	for _, sl := range s.Slots {
		st.AppendRow(table.Row{
			clock(sl.Start, s.Window),
			clock(sl.End, s.Window),
			sl.Category.Icon + " " + sl.Category.Name(),
			Duration(sl.Duration()),
			escapeNewlines(sl.Task),
		})
	}
	_ = st.Render()
	return nil
}

func writeSummaryPlain(w io.Writer, s report.Summary, opts Options) error {
	if opts.IncludeHeader {
		if _, err := fmt.Fprintln(w, "category_id\tname\tseconds\tpercent"); err != nil {
			return err
		}
	}
	for _, a := range s.Aggregates {
		line := fmt.Sprintf("%s\t%s\t%d\t%.2f", a.CategoryID, a.Name, int64(a.Total/time.Second), a.Percentage)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if !opts.Slots {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, sl := range s.Slots {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%d\t%s",
			sl.Start.Format(time.RFC3339),
			sl.End.Format(time.RFC3339),
			sl.Category.ID,
			int64(sl.Duration()/time.Second),
			escapeNewlines(sl.Task),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type jsonSummary struct {
	Start             string          `json:"start"`
	End               string          `json:"end"`
	WindowSeconds     int64           `json:"window_seconds"`
	RecordedSeconds   int64           `json:"recorded_seconds"`
	UnrecordedSeconds int64           `json:"unrecorded_seconds"`
	Aggregates        []jsonAggregate `json:"aggregates"`
	Slots             []jsonSlot      `json:"slots,omitempty"`
}

type jsonAggregate struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Seconds    float64 `json:"seconds"`
	Percentage float64 `json:"percentage"`
	Unrecorded bool    `json:"unrecorded,omitempty"`
}

type jsonSlot struct {
	CategoryID string  `json:"category_id"`
	Color      string  `json:"color"`
	RecordID   string  `json:"record_id"`
	Task       string  `json:"task,omitempty"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Minutes    float64 `json:"minutes"`
}

func writeSummaryJSON(w io.Writer, s report.Summary, opts Options) error {
	out := jsonSummary{
		Start:             s.Window.Start.Format(time.RFC3339),
		End:               s.Window.End.Format(time.RFC3339),
		WindowSeconds:     int64(s.Window.Duration() / time.Second),
		RecordedSeconds:   int64(s.Recorded / time.Second),
		UnrecordedSeconds: int64(s.Unrecorded / time.Second),
		Aggregates:        []jsonAggregate{},
	}
	for _, a := range s.Aggregates {
		out.Aggregates = append(out.Aggregates, jsonAggregate{
			CategoryID: a.CategoryID,
			Name:       a.Name,
			Icon:       a.Icon,
			Color:      a.Color,
			Seconds:    a.TotalSeconds(),
			Percentage: a.Percentage,
			Unrecorded: a.Unrecorded,
		})
	}
	if opts.Slots {
		for _, sl := range s.Slots {
			out.Slots = append(out.Slots, jsonSlot{
				CategoryID: sl.Category.ID,
				Color:      sl.Color,
				RecordID:   sl.RecordID,
				Task:       sl.Task,
				Start:      sl.Start.Format(time.RFC3339Nano),
				End:        sl.End.Format(time.RFC3339Nano),
				Minutes:    sl.DurationMinutes(),
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// clock shows times within a one-day window as HH:MM and longer windows with
// the date.
func clock(t time.Time, w report.Window) string {
	if !w.LastDay().Equal(w.Start) {
		return t.Format("Jan 02 15:04")
	}
	if !t.Before(w.End) {
		return "24:00"
	}
	return t.Format("15:04")
}

func percent(d, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(d) / float64(total) * 100
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}
