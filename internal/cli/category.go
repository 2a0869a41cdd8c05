package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybook/tally/internal/ledger"
)

var categoryEntity = entity{
	noun:      "category",
	groupFlag: "kind",
	groupHelp: "move into this kind (income|expense) instead of the current one",
	move:      (*ledger.Service).MoveCategory,
	toEdge:    (*ledger.Service).MoveCategoryToEdge,
	rename:    (*ledger.Service).RenameCategory,
	archive:   (*ledger.Service).ArchiveCategory,
	unarchive: (*ledger.Service).UnarchiveCategory,
}

var subcategoryEntity = entity{
	noun:      "subcategory",
	groupFlag: "category",
	groupHelp: "move under this category id instead of the current parent",
	move:      (*ledger.Service).MoveSubcategory,
	toEdge:    (*ledger.Service).MoveSubcategoryToEdge,
	rename:    (*ledger.Service).RenameSubcategory,
	archive:   (*ledger.Service).ArchiveSubcategory,
	unarchive: (*ledger.Service).UnarchiveSubcategory,
}

// NewCategoryCommand creates the category command group.
func NewCategoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
		Long:  "Manage income and expense categories. Categories are ordered within their kind.",
	}
	cmd.AddCommand(newCategoryAddCommand(rootOpts))
	cmd.AddCommand(newCategoryListCommand(rootOpts))
	cmd.AddCommand(categoryEntity.subcommands(rootOpts)...)
	return cmd
}

func newCategoryAddCommand(opts *RootOptions) *cobra.Command {
	in := ledger.NewCategory{}
	cmd := &cobra.Command{
		Use:           "add <name>",
		Short:         "Create a category",
		Example:       `  tally category add "Housing" --kind expense`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				c, err := a.ledger.CreateCategory(ctx, in)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(c)
				}
				fmt.Fprintf(f.Writer, "Created category %s (%s) at position %s\n",
					c.ID, c.Kind, formatPosition(c.Position))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Kind, "kind", "expense", "income or expense")
	cmd.Flags().StringVar(&in.Edge, "edge", "", "first or last (default from config)")
	return cmd
}

func newCategoryListCommand(opts *RootOptions) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List categories with their subcategories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				categories, err := a.ledger.ListCategories(ctx, archived)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(categories)
				}
				if len(categories) == 0 {
					fmt.Fprintln(f.Writer, "No categories.")
					return nil
				}
				return ledger.RenderCategories(f.Writer, categories)
			})
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived categories and subcategories")
	return cmd
}

// NewSubcategoryCommand creates the subcategory command group.
func NewSubcategoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subcategory",
		Short: "Manage subcategories",
		Long:  "Manage subcategories. Subcategories are ordered within their parent category.",
	}
	cmd.AddCommand(newSubcategoryAddCommand(rootOpts))
	cmd.AddCommand(newSubcategoryListCommand(rootOpts))
	cmd.AddCommand(subcategoryEntity.subcommands(rootOpts)...)
	return cmd
}

func newSubcategoryAddCommand(opts *RootOptions) *cobra.Command {
	in := ledger.NewSubcategory{}
	cmd := &cobra.Command{
		Use:           "add <name> --category <id>",
		Short:         "Create a subcategory",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				s, err := a.ledger.CreateSubcategory(ctx, in)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(s)
				}
				fmt.Fprintf(f.Writer, "Created subcategory %s under %s at position %s\n",
					s.ID, s.CategoryID, formatPosition(s.Position))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "parent category id (required)")
	cmd.Flags().StringVar(&in.Edge, "edge", "", "first or last (default from config)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newSubcategoryListCommand(opts *RootOptions) *cobra.Command {
	var (
		categoryID string
		archived   bool
	)
	cmd := &cobra.Command{
		Use:           "list --category <id>",
		Short:         "List the subcategories of one category",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				subs, err := a.ledger.ListSubcategories(ctx, categoryID, archived)
				if err != nil {
					return f.fail(err)
				}
				if f.Format == "json" {
					return f.Success(subs)
				}
				if len(subs) == 0 {
					fmt.Fprintln(f.Writer, "No subcategories.")
					return nil
				}
				return ledger.RenderSubcategories(f.Writer, subs)
			})
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "parent category id (required)")
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived subcategories")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
