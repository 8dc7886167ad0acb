// Package cli wires the dayslice command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/dayslice/internal/config"
	"github.com/sadopc/dayslice/internal/logging"
	"github.com/sadopc/dayslice/internal/store"
	"github.com/sadopc/dayslice/internal/tui"
)

// app is the state shared by every command once the root pre-run has loaded
// configuration.
type app struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
	log     *zap.Logger
}

// NewRootCmd builds the command tree. Running the root command without a
// subcommand starts the terminal UI.
func NewRootCmd(version string) *cobra.Command {
	a := &app{loader: config.NewLoader(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "dayslice",
		Short: "Log where your time goes and see how each day was spent",
		Long: `dayslice records intervals of time against categories and shows how a day,
week or month was spent as shares of the whole period.

Run without a command to open the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.log.Sync()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/dayslice/config.yaml)")
	flags.String("db", "", "database file (default: ~/.config/dayslice/dayslice.db)")
	flags.String("log-level", "info", "log level (debug, info, warn, error, off)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("log-file", "", "write logs to this file")

	_ = a.loader.BindFlag("database.path", flags.Lookup("db"))
	_ = a.loader.BindFlag("logging.level", flags.Lookup("log-level"))
	_ = a.loader.BindFlag("logging.format", flags.Lookup("log-format"))
	_ = a.loader.BindFlag("logging.file", flags.Lookup("log-file"))

	root.AddCommand(
		reportCmd(a),
		importCmd(a),
		exportCmd(a),
		categoriesCmd(a),
		recordCmd(a),
		versionCmd(version),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}
	// The TUI owns the terminal, so its logs always go to a file.
	if cmd == cmd.Root() && opts.File == "" {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		opts.File = filepath.Join(dir, "dayslice.log")
	}
	logger, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.log = logger
	if cfg.File != "" {
		a.log.Debug("loaded config", zap.String("file", cfg.File))
	}
	return nil
}

// openStore opens the configured database and seeds the default categories
// into a new one.
func (a *app) openStore() (*store.Store, error) {
	path := a.cfg.Database.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("locate database: %w", err)
		}
		path = p
	}
	s, err := store.New(path, a.log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := s.SeedDefaults(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (a *app) runTUI() error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	a.log.Info("starting tui")
	p := tea.NewProgram(tui.NewApp(s, a.cfg.Report, a.log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dayslice %s\n", version)
		},
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
