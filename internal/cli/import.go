package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/store"
	"github.com/sadopc/dayslice/internal/wire"
)

func importCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import categories and records from a JSON document",
		Long: `Import a JSON document with "categories" and "records" lists, as written by
"dayslice export --format json" or dumped from the hosted app. Timestamps are
{seconds, nanoseconds} objects. Records are matched by id, so importing the
same file twice updates instead of duplicating.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			doc, err := wire.Decode(f)
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var progress io.Writer
			if errFile, ok := cmd.ErrOrStderr().(*os.File); ok && !quiet && isTerminal(errFile) {
				progress = errFile
			}
			stats, err := importDocument(s, doc, progress, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d categories (%d matched existing), %d new records, %d updated\n",
				stats.Categories, stats.Remapped, stats.Created, stats.Updated)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")
	return cmd
}

// importDocument writes doc into s. Every record is converted before anything
// is written, and the store applies the whole document in one transaction. A
// progress bar is drawn on progress when it is non-nil.
func importDocument(s *store.Store, doc *wire.Document, progress io.Writer, log *zap.Logger) (store.ImportStats, error) {
	categories := make([]store.Category, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		categories = append(categories, c.StoreCategory())
	}
	records := make([]store.TimeRecord, 0, len(doc.Records))
	for i, wr := range doc.Records {
		r, err := wr.StoreRecord()
		if err != nil {
			return store.ImportStats{}, fmt.Errorf("import record %d: %w", i+1, err)
		}
		records = append(records, r)
	}

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(len(categories)+len(records),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan]Importing...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(progress)
			}),
		)
	}
	step := func() {
		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Warn("update progress bar", zap.Error(err))
			}
		}
	}

	return s.Import(categories, records, step)
}
