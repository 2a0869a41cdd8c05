package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/ledger"
)

var accountEntity = entity{
	noun:      "account",
	groupFlag: "type",
	groupHelp: "move into this account type instead of the current one",
	move:      (*ledger.Service).MoveAccount,
	toEdge:    (*ledger.Service).MoveAccountToEdge,
	rename:    (*ledger.Service).RenameAccount,
	archive:   (*ledger.Service).ArchiveAccount,
	unarchive: (*ledger.Service).UnarchiveAccount,
}

// NewAccountCommand creates the account command group.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
		Long: `Manage money accounts. Accounts are ordered within their type
(cash, checking, savings, credit, investment, loan).`,
	}
	cmd.AddCommand(newAccountAddCommand(rootOpts))
	cmd.AddCommand(newAccountListCommand(rootOpts))
	cmd.AddCommand(accountEntity.subcommands(rootOpts)...)
	return cmd
}

func newAccountAddCommand(opts *RootOptions) *cobra.Command {
	in := ledger.NewAccount{}
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Example: `  tally account add "Everyday" --type checking --balance 1234.50
  tally account add "Euro Savings" --type savings --currency EUR --edge last`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				acct, err := a.ledger.CreateAccount(ctx, in)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(acct)
				}
				fmt.Fprintf(f.Writer, "Created account %s (%s, %s) at position %s\n",
					acct.ID, acct.Type, acct.DisplayBalance(), formatPosition(acct.Position))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Type, "type", "checking", "account type")
	cmd.Flags().StringVar(&in.Currency, "currency", "USD", "ISO 4217 currency code")
	cmd.Flags().StringVar(&in.Balance, "balance", "0", "opening balance")
	cmd.Flags().StringVar(&in.Edge, "edge", "", "first or last (default from config)")
	return cmd
}

func newAccountListCommand(opts *RootOptions) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List accounts by type in display order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				accounts, err := a.ledger.ListAccounts(ctx, archived)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(accounts)
				}
				if len(accounts) == 0 {
					fmt.Fprintln(f.Writer, "No accounts.")
					return nil
				}
				return ledger.RenderAccounts(f.Writer, accounts)
			})
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived accounts")
	return cmd
}
