package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/config"
	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/metrics"
	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

// app is everything a database-backed command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	metrics *metrics.Metrics
	ledger  *ledger.Service
}

// loadConfig reads --config, applies --db and --verbose, and validates.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.DB != "" {
		cfg.Database.Path = opts.DB
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration and opens the database. Callers must close
// the returned app. Failures are already reported through the formatter.
func openApp(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		_ = f.Error(ErrCodeInvalidInput, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := cfg.Logging.Logger(cmd.ErrOrStderr())

	logger.Debug("opening database", "path", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		_ = f.Error(ErrCodeStorage, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	m := metrics.New()
	r := reorder.New(
		reorder.WithMaxDepth(cfg.Ordering.MaxDepth),
		reorder.WithLogger(logger),
		reorder.WithRecorder(m),
	)
	svc := ledger.New(st, r,
		ledger.WithLogger(logger),
		ledger.WithInsertEdge(cfg.Ordering.Edge()),
		ledger.WithIDGenerator(opts.IDs),
	)
	return &app{cfg: cfg, logger: logger, store: st, metrics: m, ledger: svc}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}
