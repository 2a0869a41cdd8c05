package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/position"
	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/reorder/memlist"
)

// ShuffleOptions holds flags for the shuffle command.
type ShuffleOptions struct {
	*RootOptions
	Items    int
	Moves    int
	Seed     uint64
	MaxDepth int
}

// ShuffleReport summarizes a shuffle run.
type ShuffleReport struct {
	Items      int                      `json:"items"`
	Moves      int                      `json:"moves"`
	Seed       uint64                   `json:"seed"`
	Drift      int                      `json:"drift"`
	FirstDrift int                      `json:"first_drift"`
	Strategies map[reorder.Strategy]int `json:"strategies"`
	Exhausted  int                      `json:"exhausted"`
	MaxDepth   int                      `json:"max_depth"`
	MaxDen     uint64                   `json:"max_denominator"`
	Healthy    bool                     `json:"healthy"`
}

// NewShuffleCommand creates the shuffle command.
func NewShuffleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShuffleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Stress the reorderer against a flat-list reference",
		Long: `Apply random moves to an in-memory list and compare the display order
with a naive remove-and-reinsert reference after every move.

Drift counts the moves after which the two disagreed; it should be zero.
The report also shows the largest denominator left in the list, which grows
as repeated inserts between the same neighbours use up precision.

Exit codes:
  0 - No drift
  1 - The order drifted from the reference`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShuffleCommand(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Items, "items", 40, "number of items in the list")
	cmd.Flags().IntVar(&opts.Moves, "moves", 10000, "number of random moves")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", position.DefaultMaxDepth, "search depth budget")

	return cmd
}

func runShuffleCommand(opts *ShuffleOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	if opts.Items < 2 || opts.Moves < 0 || opts.MaxDepth < 1 {
		return f.fail(fmt.Errorf("%w: need --items >= 2, --moves >= 0 and --max-depth >= 1", ledger.ErrInvalidInput))
	}

	report, err := Shuffle(cmd.Context(), *opts)
	if err != nil {
		return f.fail(err)
	}

	if f.Format == "json" {
		if err := f.Success(report); err != nil {
			return err
		}
	} else {
		w := f.Writer
		fmt.Fprintf(w, "Items: %d, moves: %d, seed: %d\n", report.Items, report.Moves, report.Seed)
		for _, s := range []reorder.Strategy{reorder.StrategySkip, reorder.StrategySwap, reorder.StrategySearch, reorder.StrategyRenumber} {
			fmt.Fprintf(w, "  %-9s %d\n", s, report.Strategies[s])
		}
		fmt.Fprintf(w, "Exhausted searches: %d\n", report.Exhausted)
		fmt.Fprintf(w, "Deepest search: %d\n", report.MaxDepth)
		fmt.Fprintf(w, "Max denominator: %d\n", report.MaxDen)
		fmt.Fprintf(w, "Healthy: %t\n", report.Healthy)
		if report.Drift == 0 {
			fmt.Fprintln(w, "✓ No drift")
		} else {
			fmt.Fprintf(w, "✗ Drift after %d move(s), first at move %d\n", report.Drift, report.FirstDrift)
		}
	}
	if report.Drift > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("order drifted after %d move(s)", report.Drift))
	}
	return nil
}

// shuffleRecorder tallies what the reorderer did.
type shuffleRecorder struct {
	report *ShuffleReport
}

func (r shuffleRecorder) ObserveMove(_ reorder.Kind, s reorder.Strategy, depth int) {
	r.report.Strategies[s]++
	r.report.MaxDepth = max(r.report.MaxDepth, depth)
}

func (r shuffleRecorder) ObserveExhausted(reorder.Kind) { r.report.Exhausted++ }

func (r shuffleRecorder) ObserveHeal(reorder.Kind, int) {}

// Shuffle runs opts.Moves random moves and edge moves over one group,
// checking the order against the reference after each.
func Shuffle(ctx context.Context, opts ShuffleOptions) (ShuffleReport, error) {
	report := ShuffleReport{
		Items:      opts.Items,
		Moves:      opts.Moves,
		Seed:       opts.Seed,
		FirstDrift: -1,
		Strategies: make(map[reorder.Strategy]int),
	}
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(opts.Items)))

	const group = "shuffle"
	l := memlist.New(reorder.KindAccount)
	want := make([]string, opts.Items)
	for i := range want {
		want[i] = fmt.Sprintf("item-%04d", i)
		l.Insert(reorder.Item{ID: want[i], Group: group, Position: float64(opts.Items - i)})
	}

	r := reorder.New(
		reorder.WithMaxDepth(opts.MaxDepth),
		reorder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		reorder.WithRecorder(shuffleRecorder{report: &report}),
	)

	for step := 0; step < opts.Moves; step++ {
		id := want[rng.IntN(len(want))]
		if rng.IntN(10) == 0 {
			edge := reorder.Edge(rng.IntN(2))
			if _, err := r.MoveToEdge(ctx, l, id, "", edge); err != nil {
				return report, fmt.Errorf("move %d: %w", step, err)
			}
			want = referenceEdge(want, id, edge)
		} else {
			// Favour short hops, the common drag-by-one-row case.
			var target string
			if rng.IntN(2) == 0 {
				idx := slices.Index(want, id) + rng.IntN(5) - 2
				target = want[max(0, min(idx, len(want)-1))]
			} else {
				target = want[rng.IntN(len(want))]
			}
			placement := reorder.Placement(rng.IntN(2))
			_, err := r.Move(ctx, l, reorder.MoveRequest{ID: id, TargetID: target, Placement: placement})
			if err != nil {
				return report, fmt.Errorf("move %d: %w", step, err)
			}
			want = referenceMove(want, id, target, placement)
		}

		if got := l.IDs(group); !slices.Equal(got, want) {
			report.Drift++
			if report.FirstDrift < 0 {
				report.FirstDrift = step
			}
			// Resync so one divergence is not counted on every later move.
			want = got
		}
	}

	items, err := l.Items(ctx, group)
	if err != nil {
		return report, err
	}
	// Integers sit deep down the right spine, so walk past the search budget.
	for _, it := range items {
		if _, den, ok := position.Rational(it.Position, 1<<20); ok {
			report.MaxDen = max(report.MaxDen, den)
		}
	}
	check, err := r.Check(ctx, l, group)
	if err != nil {
		return report, err
	}
	report.Healthy = check.Healthy
	return report, nil
}

// referenceMove is the naive flat-list implementation: remove the item and
// reinsert it next to the target.
func referenceMove(ids []string, id, target string, placement reorder.Placement) []string {
	if id == target {
		return ids
	}
	out := slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
	at := slices.Index(out, target)
	if placement == reorder.PlaceAfter {
		at++
	}
	return slices.Insert(out, at, id)
}

func referenceEdge(ids []string, id string, edge reorder.Edge) []string {
	out := slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
	if edge == reorder.EdgeFirst {
		return slices.Insert(out, 0, id)
	}
	return append(out, id)
}
