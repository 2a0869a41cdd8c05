package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// MaintainOptions holds flags for the maintain command.
type MaintainOptions struct {
	*RootOptions
	Interval    time.Duration
	MetricsAddr string
	Once        bool
}

// NewMaintainCommand creates the maintain command.
func NewMaintainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MaintainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Heal unhealthy groups periodically",
		Long: `Run a heal sweep every interval until interrupted.

With --metrics-addr a Prometheus endpoint is served at /metrics alongside
the loop. SIGINT or SIGTERM stops both gracefully.

Example:
  tally maintain --interval 30s --metrics-addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				return runMaintain(ctx, opts, a, f)
			})
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "time between sweeps (default from config)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "run a single sweep and exit")

	return cmd
}

func runMaintain(ctx context.Context, opts *MaintainOptions, a *app, f *OutputFormatter) error {
	interval := a.cfg.Maintain.Interval
	if opts.Interval > 0 {
		interval = opts.Interval
	}
	addr := a.cfg.Maintain.MetricsAddr
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}

	if opts.Once {
		healed, err := sweepOnce(ctx, a)
		if err != nil {
			return f.fail(err)
		}
		if f.Format == "json" {
			return f.Success(map[string]int{"healed_groups": healed})
		}
		fmt.Fprintf(f.Writer, "Sweep done: %d group(s) healed\n", healed)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return maintainLoop(ctx, a, interval)
	})
	if addr != "" {
		g.Go(func() error {
			return a.metrics.Serve(ctx, addr, a.logger)
		})
	}

	a.logger.Info("maintain started", "interval", interval, "metrics_addr", addr)
	fmt.Fprintln(f.GetErrWriter(), "Maintaining. Press Ctrl-C to stop.")

	if err := g.Wait(); err != nil {
		return f.fail(err)
	}
	a.logger.Info("maintain stopped gracefully")
	return nil
}

// maintainLoop sweeps immediately and then on every tick until ctx is done.
// A failed sweep is logged and retried on the next tick.
func maintainLoop(ctx context.Context, a *app, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := sweepOnce(ctx, a); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("heal sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func sweepOnce(ctx context.Context, a *app) (int, error) {
	reports, err := a.ledger.HealAll(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		return 0, fmt.Errorf("heal sweep: %w", err)
	}
	for _, r := range reports {
		a.logger.Info("healed group", "kind", r.Kind, "group", r.Group, "items", r.Items, "updated", r.Updated)
	}
	return len(reports), nil
}
