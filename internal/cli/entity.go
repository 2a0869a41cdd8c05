package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/reorder"
)

// entity describes the operations shared by accounts, categories and
// subcategories. The functions are ledger.Service method expressions.
type entity struct {
	noun      string // "account"
	groupFlag string // flag naming the ordering group on edge
	groupHelp string

	move      func(*ledger.Service, context.Context, string, string, reorder.Placement) (reorder.Outcome, error)
	toEdge    func(*ledger.Service, context.Context, string, string, reorder.Edge) (reorder.Outcome, error)
	rename    func(*ledger.Service, context.Context, string, string) error
	archive   func(*ledger.Service, context.Context, string) error
	unarchive func(*ledger.Service, context.Context, string, string) (float64, error)
}

// withApp opens the app, runs fn and closes it again.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)
	a, err := openApp(opts, cmd, f)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(cmd.Context(), a, f)
}

// subcommands returns move, edge, rename, archive and unarchive for e.
func (e entity) subcommands(opts *RootOptions) []*cobra.Command {
	return []*cobra.Command{
		e.moveCommand(opts),
		e.edgeCommand(opts),
		e.renameCommand(opts),
		e.archiveCommand(opts),
		e.unarchiveCommand(opts),
	}
}

func (e entity) moveCommand(opts *RootOptions) *cobra.Command {
	var before, after string
	cmd := &cobra.Command{
		Use:   "move <id> (--before <target> | --after <target>)",
		Short: fmt.Sprintf("Place a %s right before or after another", e.noun),
		Long: fmt.Sprintf(`Place a %[1]s right before or after another %[1]s.

A target in another group moves the %[1]s into that group. Adjacent moves
swap two positions; all others write only the moved %[1]s.`, e.noun),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, placement := before, reorder.PlaceBefore
			if after != "" {
				target, placement = after, reorder.PlaceAfter
			}
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				out, err := e.move(a.ledger, ctx, args[0], target, placement)
				if err != nil {
					return f.fail(err)
				}
				return outputOutcome(f, "Moved", args[0], out)
			})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "id to place the item before")
	cmd.Flags().StringVar(&after, "after", "", "id to place the item after")
	cmd.MarkFlagsMutuallyExclusive("before", "after")
	cmd.MarkFlagsOneRequired("before", "after")
	return cmd
}

func (e entity) edgeCommand(opts *RootOptions) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:           "edge <id> <first|last>",
		Short:         fmt.Sprintf("Move a %s to the top or bottom of its group", e.noun),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts, cmd)
			edge, err := reorder.ParseEdge(args[1])
			if err != nil {
				return f.fail(fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err))
			}
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				out, err := e.toEdge(a.ledger, ctx, args[0], group, edge)
				if err != nil {
					return f.fail(err)
				}
				return outputOutcome(f, "Moved", args[0], out)
			})
		},
	}
	cmd.Flags().StringVar(&group, e.groupFlag, "", e.groupHelp)
	return cmd
}

func (e entity) renameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rename <id> <name>",
		Short:         fmt.Sprintf("Rename a %s", e.noun),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				if err := e.rename(a.ledger, ctx, args[0], args[1]); err != nil {
					return f.fail(err)
				}
				return outputDone(f, "Renamed", args[0])
			})
		},
	}
}

func (e entity) archiveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "archive <id>",
		Short:         fmt.Sprintf("Hide a %s from its group", e.noun),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				if err := e.archive(a.ledger, ctx, args[0]); err != nil {
					return f.fail(err)
				}
				return outputDone(f, "Archived", args[0])
			})
		},
	}
}

func (e entity) unarchiveCommand(opts *RootOptions) *cobra.Command {
	var edge string
	cmd := &cobra.Command{
		Use:           "unarchive <id>",
		Short:         fmt.Sprintf("Bring an archived %s back at an edge of its group", e.noun),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				pos, err := e.unarchive(a.ledger, ctx, args[0], edge)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(map[string]any{"id": args[0], "position": pos})
				}
				fmt.Fprintf(f.Writer, "Unarchived %s at position %s\n", args[0], formatPosition(pos))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&edge, "edge", "", "first or last (default from config)")
	return cmd
}

// outputOutcome prints what a move did.
func outputOutcome(f *OutputFormatter, verb, id string, out reorder.Outcome) error {
	if f.Format == "json" {
		return f.Success(out)
	}
	fmt.Fprintf(f.Writer, "%s %s: %s to position %s in %s\n",
		verb, id, out.Strategy, formatPosition(out.Position), out.Group)
	if out.Exhausted {
		fmt.Fprintf(f.Writer, "  search exhausted, group renumbered (%d rows)\n", out.Renumbered)
	}
	return nil
}

func outputDone(f *OutputFormatter, verb, id string) error {
	if f.Format == "json" {
		return f.Success(map[string]string{"id": id})
	}
	fmt.Fprintf(f.Writer, "%s %s\n", verb, id)
	return nil
}

func formatPosition(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
