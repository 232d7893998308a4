package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "File-system routing for Go web applications",
		Long: `Arbor maps a directory tree to URL routes.

Every directory containing a page, layout, actions, api or error file
becomes part of the application: directories are URL segments, _name_
directories are dynamic {name} segments, and layouts compose from the
innermost page out to the root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		routesCmd(),
		docCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
