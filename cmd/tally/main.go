// Command tally keeps accounts, categories and subcategories in a
// user-chosen order.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tallybook/tally/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own errors; cobra's usage errors are not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
