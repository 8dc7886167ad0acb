package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayslice/internal/config"
	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

const maxSlotRows = 12

type reportModel struct {
	store  *store.Store
	rc     config.Report
	width  int
	height int

	nav        report.Navigator
	label      string
	summary    report.Summary
	daily      []report.DayBreakdown
	loaded     bool
	showSlots  bool
	slotOffset int

	chart barchart.Model
}

func newReportModel(s *store.Store, rc config.Report, prefs store.Preferences) reportModel {
	g, err := report.ParseGranularity(prefs.DefaultPeriod)
	if err != nil {
		g = report.Day
	}
	today := time.Now()
	r := reportModel{
		store: s,
		rc:    rc,
		chart: barchart.New(60, 12),
	}
	r.applyPreferences(prefs)
	r.nav = report.NewNavigator(g, r.anchor(g, today), report.BoundsOf(nil, today))
	return r
}

func (r *reportModel) applyPreferences(prefs store.Preferences) {
	r.label = ""
	if prefs.ShowUnrecorded {
		r.label = prefs.UnrecordedLabel
	}
}

// anchor is the date a fresh period of granularity g is built around.
func (r reportModel) anchor(g report.Granularity, today time.Time) time.Time {
	if g == report.Week {
		return r.rc.WeekAnchor(today)
	}
	return today
}

func (r *reportModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.loaded {
		r.buildChart()
	}
}

type reportDataMsg struct {
	bounds  report.Window
	window  report.Window
	summary report.Summary
	err     error
}

func (r reportModel) refresh() tea.Cmd {
	nav, label := r.nav, r.label
	return func() tea.Msg {
		bounds, err := r.store.NavigationBounds(time.Now())
		if err != nil {
			return reportDataMsg{err: err}
		}
		nav.SetBounds(bounds)
		w := nav.Window()
		summary, err := r.store.BuildReport(w, label)
		if err != nil {
			return reportDataMsg{err: err}
		}
		return reportDataMsg{bounds: bounds, window: w, summary: summary}
	}
}

func (r reportModel) update(msg tea.Msg) (reportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportDataMsg:
		if msg.err != nil {
			return r, statusCmd(fmt.Sprintf("Error: %v", msg.err), true)
		}
		r.nav.SetBounds(msg.bounds)
		if cur := r.nav.Window(); !cur.Start.Equal(msg.window.Start) || !cur.End.Equal(msg.window.End) {
			// navigated again while loading
			return r, r.refresh()
		}
		r.summary = msg.summary
		r.daily = nil
		if r.nav.Granularity() != report.Day {
			r.daily = report.Daily(msg.summary.Slots, msg.window)
		}
		r.loaded = true
		r.slotOffset = 0
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if !r.nav.Previous() {
				return r, statusCmd("No earlier records", true)
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if !r.nav.Next() {
				return r, statusCmd("No later records", true)
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Period):
			g := (r.nav.Granularity() + 1) % 3
			r.nav.SetGranularity(g, r.anchor(g, time.Now()))
			return r, r.refresh()
		case key.Matches(msg, keys.Today):
			g := r.nav.Granularity()
			r.nav.SetGranularity(g, r.anchor(g, time.Now()))
			return r, r.refresh()
		case key.Matches(msg, keys.Slots):
			r.showSlots = !r.showSlots
			r.slotOffset = 0
		case key.Matches(msg, keys.Down):
			if r.showSlots && r.slotOffset+maxSlotRows < len(r.summary.Slots) {
				r.slotOffset++
			}
		case key.Matches(msg, keys.Up):
			if r.showSlots && r.slotOffset > 0 {
				r.slotOffset--
			}
		}
	}
	return r, nil
}

func hours(d time.Duration) float64 {
	return d.Hours()
}

func (r *reportModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 40 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	if r.nav.Granularity() == report.Day {
		// one bar per category, unrecorded included
		for _, a := range r.summary.Aggregates {
			bars = append(bars, barchart.BarData{
				Label: truncate(a.Name, 8),
				Values: []barchart.BarValue{{
					Name:  a.Name,
					Value: hours(a.Total),
					Style: categoryStyle(a.Color),
				}},
			})
		}
	} else {
		// one stacked bar per day, recorded time only
		labelFormat := "Mon 02"
		if r.nav.Granularity() == report.Month {
			labelFormat = "02"
		}
		for _, day := range r.daily {
			var values []barchart.BarValue
			for _, a := range day.Aggregates {
				values = append(values, barchart.BarValue{
					Name:  a.Name,
					Value: hours(a.Total),
					Style: categoryStyle(a.Color),
				})
			}
			if len(values) == 0 {
				values = []barchart.BarValue{{Name: "", Value: 0, Style: emptyBarStyle}}
			}
			bars = append(bars, barchart.BarData{
				Label:  day.Day.Format(labelFormat),
				Values: values,
			})
		}
	}

	if len(bars) == 0 {
		return
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportModel) view() string {
	w := r.width - 4

	var tabs []string
	for g := report.Day; g <= report.Month; g++ {
		name := strings.ToUpper(g.String()[:1]) + g.String()[1:]
		tabs = append(tabs, periodStyle(g == r.nav.Granularity()).Render(name))
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	prev, next := "‹", "›"
	if !r.nav.CanPrevious() {
		prev = mutedStyle.Render(prev)
	}
	if !r.nav.CanNext() {
		next = mutedStyle.Render(next)
	}
	dateLabel := fmt.Sprintf("%s %s %s", prev, highlightStyle.Render(windowLabel(r.nav.Window())), next)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Report"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  p: day/week/month  t: today  v: slots")

	if !r.loaded {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  Loading..."), "", nav),
		)
	}

	totals := mutedStyle.Render(fmt.Sprintf("  %s recorded, %s unrecorded",
		formatHM(r.summary.Recorded), formatHM(r.summary.Unrecorded)))

	body := r.renderAggregates(w)
	if r.showSlots {
		body = r.renderSlots()
	}

	parts := []string{header, totals, ""}
	if len(r.summary.Slots) > 0 {
		parts = append(parts, r.chart.View(), "")
	}
	parts = append(parts, body, "", nav)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func windowLabel(w report.Window) string {
	last := w.LastDay()
	if last.Equal(w.Start) {
		return w.Start.Format("Mon Jan 02, 2006")
	}
	if w.Start.Day() == 1 && last.AddDate(0, 0, 1).Day() == 1 {
		return w.Start.Format("January 2006")
	}
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 02"), last.Format("Jan 02, 2006"))
}

func (r reportModel) renderAggregates(w int) string {
	if len(r.summary.Slots) == 0 && len(r.summary.Aggregates) <= 1 {
		return mutedStyle.Render("  No records in this period")
	}

	barWidth := max(10, w-52)
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("      %-20s %9s %7s", "Category", "Total", "Share")))
	for _, a := range r.summary.Aggregates {
		name := truncate(a.Name, 20)
		row := fmt.Sprintf("  %s %s %-20s %9s %6.1f%%  %s",
			colorDot(a.Color), a.Icon, name, formatHM(a.Total), a.Percentage,
			shareBar(a.Percentage, barWidth, a.Color))
		if a.Unrecorded {
			row = unrecordedStyle.Render(fmt.Sprintf("  %s %s %-20s %9s %6.1f%%  ",
				colorDot(a.Color), a.Icon, name, formatHM(a.Total), a.Percentage)) +
				shareBar(a.Percentage, barWidth, a.Color)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (r reportModel) renderSlots() string {
	slots := r.summary.Slots
	if len(slots) == 0 {
		return mutedStyle.Render("  No records in this period")
	}

	layout := "15:04"
	if r.nav.Granularity() != report.Day {
		layout = "Jan 02 15:04"
	}

	end := min(len(slots), r.slotOffset+maxSlotRows)
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("  Slots %d-%d of %d", r.slotOffset+1, end, len(slots))))
	for _, s := range slots[r.slotOffset:end] {
		rows = append(rows, fmt.Sprintf("  %s %s  %s %-18s %8s  %s",
			colorDot(s.Color),
			slotClockStyle.Render(s.Start.Format(layout)+" - "+slotEnd(s, layout)),
			s.Category.Icon, categoryStyle(s.Color).Render(truncate(s.Category.Name(), 18)),
			formatHM(s.Duration()),
			taskStyle.Render(truncate(s.Task, 30)),
		))
	}
	return strings.Join(rows, "\n")
}

// slotEnd prints a slot ending at midnight as 24:00 of its own day.
func slotEnd(s report.TimeSlot, layout string) string {
	if layout == "15:04" && s.End.Equal(report.StartOfDay(s.End)) && s.End.After(s.Start) {
		return "24:00"
	}
	return s.End.Format(layout)
}
