package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.cue>",
		Short: "Create accounts and categories from a CUE file",
		Long: `Validate a CUE seed file and create every account, category and
subcategory it lists. Items are appended to their groups in file order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			file, err := seed.Load(args[0])
			if err != nil {
				var serr *seed.Error
				if errors.As(err, &serr) {
					var details any
					if serr.Pos.IsValid() {
						details = map[string]any{"line": serr.Pos.Line(), "column": serr.Pos.Column()}
					}
					_ = f.Error(ErrCodeInvalidInput, serr.Error(), details)
					return WrapExitError(ExitCommandError, "invalid seed file", err)
				}
				_ = f.Error(ErrCodeStorage, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to read seed file", err)
			}
			f.VerboseLog("Loaded %d account(s) and %d category(ies) from %s",
				len(file.Accounts), len(file.Categories), args[0])

			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				sum, err := seed.Apply(ctx, a.ledger, file)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(sum)
				}
				fmt.Fprintf(f.Writer, "Seeded %d account(s), %d category(ies), %d subcategory(ies)\n",
					sum.Accounts, sum.Categories, sum.Subcategories)
				return nil
			})
		},
	}
	return cmd
}
