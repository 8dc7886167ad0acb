package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/format"
	"github.com/sadopc/dayslice/internal/store"
)

func recordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "record",
		Aliases: []string{"rec"},
		Short:   "Add records or control the running recording",
	}
	cmd.AddCommand(
		addRecordCmd(a),
		listRecordsCmd(a),
		editRecordCmd(a),
		startRecordCmd(a),
		stopRecordCmd(a),
		statusRecordCmd(a),
	)
	return cmd
}

func addRecordCmd(a *app) *cobra.Command {
	var start, end, task string

	cmd := &cobra.Command{
		Use:   "add CATEGORY",
		Short: "Add a finished record",
		Long: `Add a record for an interval that already happened. Times are
"YYYY-MM-DD HH:MM" or "HH:MM" for today.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			from, err := parseClock(start, now)
			if err != nil {
				return err
			}
			to, err := parseClock(end, now)
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.GetCategory(args[0])
			if err != nil {
				return err
			}
			r, err := s.CreateRecord(c.ID, task, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s for %s\n", c.Icon, c.Label,
				format.Duration(time.Duration(r.Duration)*time.Second))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&start, "start", "s", "", "start time (required)")
	flags.StringVarP(&end, "end", "e", "", "end time (required)")
	flags.StringVarP(&task, "task", "t", "", "what you were doing")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func listRecordsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.ListRecords(store.RecordFilter{IncludeRunning: true, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No records yet.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"ID", "Category", "Start", "End", "Duration", "Task"})
			for _, r := range records {
				end, dur := "", "recording"
				if r.EndTime != nil {
					end = r.EndTime.Local().Format("2006-01-02 15:04")
					dur = format.Duration(time.Duration(r.Duration) * time.Second)
				}
				tw.AppendRow(table.Row{r.ID, r.CategoryID, r.StartTime.Local().Format("2006-01-02 15:04"), end, dur, r.Task})
			}
			_ = tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}

func editRecordCmd(a *app) *cobra.Command {
	var category, start, end, task string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a finished record",
		Long: `Change the category, task or interval of a finished record. Flags that are
not given keep their current value. IDs are shown by "dayslice record list".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", args[0])
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.GetRecord(id)
			if err != nil {
				return err
			}
			if r.Running() {
				return fmt.Errorf("edit record %d: %w", id, store.ErrRecordRunning)
			}

			from, to := r.StartTime, *r.EndTime
			now := time.Now()
			if start != "" {
				if from, err = parseClock(start, now); err != nil {
					return err
				}
			}
			if end != "" {
				if to, err = parseClock(end, now); err != nil {
					return err
				}
			}
			categoryID := r.CategoryID
			if category != "" {
				c, err := s.GetCategory(category)
				if err != nil {
					return err
				}
				categoryID = c.ID
			}
			if cmd.Flags().Changed("task") {
				r.Task = task
			}

			if err := s.UpdateRecord(id, categoryID, r.Task, from, to); err != nil {
				return err
			}
			a.log.Debug("record edited", zap.Int64("id", id))
			fmt.Fprintf(cmd.OutOrStdout(), "Updated record %d: %s for %s\n", id, categoryID,
				format.Duration(to.Sub(from)))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&category, "category", "c", "", "new category id")
	flags.StringVarP(&start, "start", "s", "", "new start time")
	flags.StringVarP(&end, "end", "e", "", "new end time")
	flags.StringVarP(&task, "task", "t", "", "new task, empty to clear")
	return cmd
}

func startRecordCmd(a *app) *cobra.Command {
	var task string

	cmd := &cobra.Command{
		Use:   "start CATEGORY",
		Short: "Start recording now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.GetCategory(args[0])
			if err != nil {
				return err
			}
			if _, err := s.StartRecording(c.ID, task); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recording %s %s\n", c.Icon, c.Label)
			return nil
		},
	}
	cmd.Flags().StringVarP(&task, "task", "t", "", "what you are doing")
	return cmd
}

func stopRecordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.StopRecording()
			if err != nil {
				return err
			}
			if r == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Stopped; the recording was under a second and was discarded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s after %s\n", r.CategoryID,
				format.Duration(time.Duration(r.Duration)*time.Second))
			return nil
		},
	}
}

func statusRecordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.RunningRecord()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if r == nil {
				fmt.Fprintln(out, "Not recording")
				return nil
			}
			fmt.Fprintf(out, "Recording %s for %s\n", describe(s, r), format.Duration(time.Since(r.StartTime)))
			return nil
		},
	}
}

func describe(s *store.Store, r *store.TimeRecord) string {
	name := r.CategoryID
	if c, err := s.GetCategory(r.CategoryID); err == nil {
		name = c.Icon + " " + c.Label
	}
	if r.Task != "" {
		name += ": " + r.Task
	}
	return name
}
