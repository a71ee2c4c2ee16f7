package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashiz/internal/backend"
	"github.com/abhisek/flashiz/internal/config"
	"github.com/abhisek/flashiz/internal/logger"
	"github.com/abhisek/flashiz/internal/spacedrep"
	"github.com/abhisek/flashiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "flashiz",
	Short:         "Spaced repetition flashcards in the terminal",
	Long:          "Flashiz lets you study flashcard decks in your terminal with a spaced repetition scheduler.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides config and FLASHIZ_DB_PATH)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(decksCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is what every command needs: configuration, a logger and the open
// collection.
type env struct {
	cfg    *config.Config
	dbPath string
	log    *slog.Logger
	store  *store.Store
	coll   *backend.Local

	closers []io.Closer
}

// Close releases the store and the log file.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// openEnv loads configuration, sets up logging and opens the collection.
// The TUI logs to the file only since stderr shares the terminal.
func openEnv(cmd *cobra.Command, tui bool) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	e := &env{cfg: cfg}
	logOpts := logger.Options{Level: logger.ParseLevel(cfg.LogLevel)}
	if !tui {
		logOpts.Console = os.Stderr
	}
	if f, err := openLogFile(cfg); err == nil {
		logOpts.File = f
		e.closers = append(e.closers, f)
	} else if !tui {
		fmt.Fprintln(os.Stderr, "Logging to file disabled:", err)
	}
	e.log = logger.Init(logOpts)

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.dbPath = dbPath
	e.store = st
	e.closers = append(e.closers, st)

	sched := spacedrep.NewScheduler(spacedrep.Config{LeechThreshold: cfg.Review.LeechThreshold})
	e.coll = backend.New(st, sched, backend.Options{
		NewPerDay:     cfg.Review.NewPerDay,
		ReviewsPerDay: cfg.Review.ReviewsPerDay,
		LearnAhead:    cfg.Review.LearnAhead,
		LeechAction:   backend.LeechAction(cfg.Review.LeechAction),
		Logger:        e.log,
	})
	e.log.Debug("collection opened", "db", dbPath)
	return e, nil
}

func openLogFile(cfg *config.Config) (*os.File, error) {
	path := cfg.LogFile
	if path == "" {
		var err error
		if path, err = config.DefaultLogPath(); err != nil {
			return nil, err
		}
	}
	return logger.OpenFile(path)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or FLASHIZ_DB_PATH, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
