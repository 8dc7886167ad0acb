package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/export"
	"github.com/sadopc/dayslice/internal/store"
)

func exportCmd(a *app) *cobra.Command {
	var (
		formatFlag string
		outPath    string
		period     string
		date       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records or a period summary",
		Long: `Export records to CSV or JSON, or the category totals of one period to CSV.

  csv      every finished record, one row each
  json     categories and records in the import format
  summary  category totals for --period/--date`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			kind := strings.ToLower(formatFlag)
			if outPath == "" {
				ext := kind
				if kind == "summary" {
					ext = "csv"
				}
				outPath = fmt.Sprintf("dayslice-%s-%s.%s", kind, time.Now().Format("2006-01-02"), ext)
			}

			if err := a.writeExport(s, kind, outPath, period, date); err != nil {
				return err
			}
			a.log.Info("exported", zap.String("format", kind), zap.String("path", outPath))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&formatFlag, "format", "f", "csv", "export format: csv, json or summary")
	flags.StringVarP(&outPath, "output", "o", "", "output file (default: dayslice-<format>-<date>.<ext>)")
	flags.StringVar(&period, "period", "", "summary period: day, week or month")
	flags.StringVarP(&date, "date", "d", "", "summary date, YYYY-MM-DD (default: today)")
	return cmd
}

func (a *app) writeExport(s *store.Store, kind, path, period, date string) error {
	switch kind {
	case "csv", "json":
		records, err := s.ListRecords(store.RecordFilter{IncludeRunning: kind == "json"})
		if err != nil {
			return err
		}
		categories, err := s.ListCategories(true)
		if err != nil {
			return err
		}
		if kind == "json" {
			return export.ToJSON(categories, records, path)
		}
		return export.ToCSV(records, export.CategoryMap(categories), path)
	case "summary":
		w, err := periodWindow(period, date, a.cfg.Report, time.Now())
		if err != nil {
			return err
		}
		summary, err := s.BuildReport(w, a.cfg.Report.Unrecorded())
		if err != nil {
			return err
		}
		return export.SummaryToCSV(summary, path)
	default:
		return fmt.Errorf("unsupported export format: %s (want csv, json or summary)", kind)
	}
}
