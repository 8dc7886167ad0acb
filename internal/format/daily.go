package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sadopc/dayslice/internal/report"
)

// WriteDaily writes one row per day with that day's category shares.
func WriteDaily(w io.Writer, days []report.DayBreakdown, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", "table":
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleRounded)
		if opts.IncludeHeader {
			tw.AppendHeader(table.Row{"Day", "Recorded", "Breakdown"})
		}
		for _, d := range days {
			tw.AppendRow(table.Row{d.Day.Format("Mon Jan 02"), Duration(dayTotal(d)), breakdown(d, ", ")})
		}
		_ = tw.Render()
		return nil
	case "plain":
		for _, d := range days {
			for _, a := range d.Aggregates {
				line := fmt.Sprintf("%s\t%s\t%d", d.Day.Format("2006-01-02"), a.CategoryID, int64(a.Total/time.Second))
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
		}
		return nil
	case "json":
		return writeDailyJSON(w, days)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func dayTotal(d report.DayBreakdown) time.Duration {
	var total time.Duration
	for _, a := range d.Aggregates {
		total += a.Total
	}
	return total
}

func breakdown(d report.DayBreakdown, sep string) string {
	if len(d.Aggregates) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(d.Aggregates))
	for _, a := range d.Aggregates {
		parts = append(parts, fmt.Sprintf("%s %s %s", a.Icon, a.Name, Duration(a.Total)))
	}
	return strings.Join(parts, sep)
}

type jsonDay struct {
	Day        string          `json:"day"`
	Aggregates []jsonAggregate `json:"aggregates"`
}

func writeDailyJSON(w io.Writer, days []report.DayBreakdown) error {
	out := make([]jsonDay, 0, len(days))
	for _, d := range days {
		jd := jsonDay{Day: d.Day.Format("2006-01-02"), Aggregates: []jsonAggregate{}}
		for _, a := range d.Aggregates {
			jd.Aggregates = append(jd.Aggregates, jsonAggregate{
				CategoryID: a.CategoryID,
				Name:       a.Name,
				Icon:       a.Icon,
				Color:      a.Color,
				Seconds:    a.TotalSeconds(),
				Percentage: a.Percentage,
			})
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
