package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/export"
	"github.com/sadopc/dayslice/internal/format"
	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/wire"
)

func reportCmd(a *app) *cobra.Command {
	var (
		date       string
		formatFlag string
		input      string
		csvPath    string
		slots      bool
		daily      bool
		noHeader   bool
		noUnrec    bool
	)

	cmd := &cobra.Command{
		Use:   "report [day|week|month]",
		Short: "Show how a day, week or month was spent",
		Long: `Show the share of a period spent in each category.

Without a period the configured default is used. Weeks are the seven days
ending on the chosen date unless report.week_end says otherwise. With --input
the report is built from an exported JSON document instead of the database.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			period := ""
			if len(args) == 1 {
				period = args[0]
			}
			w, err := periodWindow(period, date, a.cfg.Report, time.Now())
			if err != nil {
				return err
			}
			label := a.cfg.Report.Unrecorded()
			if noUnrec {
				label = ""
			}

			var summary report.Summary
			if input != "" {
				summary, err = reportFromFile(input, w, label, a.log)
			} else {
				summary, err = a.reportFromStore(w, label)
			}
			if err != nil {
				return err
			}
			a.log.Debug("built report",
				zap.Stringer("window", w),
				zap.Int("slots", len(summary.Slots)),
				zap.Duration("recorded", summary.Recorded))

			if csvPath != "" {
				if err := export.SummaryToCSV(summary, csvPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", csvPath)
			}

			out := cmd.OutOrStdout()
			opts := format.Options{Format: formatFlag, IncludeHeader: !noHeader, Slots: slots}
			if err := format.WriteSummary(out, summary, opts); err != nil {
				return err
			}
			if daily && len(w.Days()) > 1 {
				return format.WriteDaily(out, report.Daily(summary.Slots, w), opts)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&date, "date", "d", "", "date inside the period, YYYY-MM-DD (default: today)")
	flags.StringVarP(&formatFlag, "format", "f", "table", "output format: table, plain or json")
	flags.StringVarP(&input, "input", "i", "", "build the report from an exported JSON file")
	flags.StringVar(&csvPath, "csv", "", "also write the category totals to this CSV file")
	flags.BoolVar(&slots, "slots", false, "list the time slots in order")
	flags.BoolVar(&daily, "daily", false, "break a week or month down by day")
	flags.BoolVar(&noHeader, "no-header", false, "omit table headers")
	flags.BoolVar(&noUnrec, "no-unrecorded", false, "leave out the unrecorded share")
	return cmd
}

func (a *app) reportFromStore(w report.Window, label string) (report.Summary, error) {
	s, err := a.openStore()
	if err != nil {
		return report.Summary{}, err
	}
	defer s.Close()
	return s.BuildReport(w, label)
}

func reportFromFile(path string, w report.Window, label string, log *zap.Logger) (report.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Summary{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	doc, err := wire.Decode(f)
	if err != nil {
		return report.Summary{}, err
	}
	records, cats, skipped := doc.ReportInput()
	if skipped > 0 {
		log.Warn("skipped unreadable records", zap.String("file", path), zap.Int("count", skipped))
	}
	return report.Build(records, cats, w, label), nil
}
