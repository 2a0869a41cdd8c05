package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/position"
)

// PositionResult is the outcome of a position computation.
type PositionResult struct {
	Lower     float64 `json:"lower"`
	Upper     string  `json:"upper"` // "inf" is not valid JSON as a number
	Value     float64 `json:"value"`
	Num       uint64  `json:"num"`
	Den       uint64  `json:"den"`
	Depth     int     `json:"depth"`
	Exhausted bool    `json:"exhausted,omitempty"`
}

// NewPositionCommand creates the position command.
func NewPositionCommand(rootOpts *RootOptions) *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "position <lower> <upper>",
		Short: "Compute the simplest position strictly between two bounds",
		Long: `Compute the simplest rational strictly between lower and upper.

upper may be "inf" for an insert above the first item. When the depth
budget runs out the best value reached is printed and marked exhausted.`,
		Example: `  tally position 0 inf      # 1
  tally position 1 2        # 3/2
  tally position 0.9375 1   # 16/17`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			lower, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return f.fail(fmt.Errorf("%w: lower: %v", ledger.ErrInvalidInput, err))
			}
			upper, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return f.fail(fmt.Errorf("%w: upper: %v", ledger.ErrInvalidInput, err))
			}

			s, err := position.Locate(lower, upper, maxDepth)
			if s == nil {
				return f.fail(err)
			}
			num, den := s.Fraction()
			res := PositionResult{
				Lower:     lower,
				Upper:     formatPosition(upper),
				Value:     s.Value(),
				Num:       num,
				Den:       den,
				Depth:     s.Depth(),
				Exhausted: position.IsExhausted(err),
			}
			if f.Format == "json" {
				return f.Success(res)
			}
			fmt.Fprintf(f.Writer, "%d/%d = %s (depth %d)\n", num, den, formatPosition(res.Value), res.Depth)
			if res.Exhausted {
				fmt.Fprintf(f.Writer, "  search exhausted: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", position.DefaultMaxDepth, "search depth budget")
	return cmd
}
