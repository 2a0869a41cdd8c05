package ledger

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// RenderAccounts writes accounts as an aligned table.
func RenderAccounts(w io.Writer, accounts []Account) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tBALANCE\tPOSITION")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			a.Type, displayName(a.Name, a.Archived), a.DisplayBalance(), formatPosition(a.Position))
	}
	return tw.Flush()
}

// RenderCategories writes categories as an aligned table, each followed by
// its subcategories.
func RenderCategories(w io.Writer, categories []Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tPOSITION")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Kind, displayName(c.Name, c.Archived), formatPosition(c.Position))
		for _, sub := range c.Subcategories {
			fmt.Fprintf(tw, "\t  - %s\t%s\n", displayName(sub.Name, sub.Archived), formatPosition(sub.Position))
		}
	}
	return tw.Flush()
}

// RenderSubcategories writes one category's subcategories as a table.
func RenderSubcategories(w io.Writer, subs []Subcategory) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPOSITION")
	for _, sub := range subs {
		fmt.Fprintf(tw, "%s\t%s\n", displayName(sub.Name, sub.Archived), formatPosition(sub.Position))
	}
	return tw.Flush()
}

func displayName(name string, archived bool) string {
	if archived {
		return name + " (archived)"
	}
	return name
}

// formatPosition prints the shortest decimal that round-trips.
func formatPosition(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
