package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/reorder"
)

// HealResult lists the groups a heal run found unhealthy.
type HealResult struct {
	Checked bool                 `json:"checked_only"`
	Groups  []reorder.HealReport `json:"groups"`
}

// NewHealCommand creates the heal command.
func NewHealCommand(rootOpts *RootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Renumber groups whose positions collide or drifted",
		Long: `Scan every account type, category kind and subcategory parent.
Groups with duplicate or non-positive positions are renumbered to consecutive
integers in their current display order.

With --check nothing is written.

Exit codes:
  0 - Every group healthy (or healed)
  1 - --check found unhealthy groups`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				sweep := a.ledger.HealAll
				if check {
					sweep = a.ledger.CheckHealth
				}
				reports, err := sweep(ctx)
				if err != nil {
					return f.fail(err)
				}
				if err := outputHeal(f, check, reports); err != nil {
					return err
				}
				if check && len(reports) > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d unhealthy group(s)", len(reports)))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "report unhealthy groups without renumbering")
	return cmd
}

func outputHeal(f *OutputFormatter, check bool, reports []reorder.HealReport) error {
	if f.Format == "json" {
		return f.Success(HealResult{Checked: check, Groups: reports})
	}
	if len(reports) == 0 {
		fmt.Fprintln(f.Writer, "✓ All groups healthy")
		return nil
	}
	for _, r := range reports {
		if check {
			fmt.Fprintf(f.Writer, "✗ %s/%s: %d items, unhealthy\n", r.Kind, r.Group, r.Items)
		} else {
			fmt.Fprintf(f.Writer, "✓ %s/%s: %d items, renumbered %d\n", r.Kind, r.Group, r.Items, r.Updated)
		}
	}
	return nil
}
