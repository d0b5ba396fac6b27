package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/junction/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "junction",
		Short: "Evaluate scripts against a Junction value store",
		Long: `Junction is a key/value store that unifies plain values and
observable signals behind one get/set interface.

The junction command builds a store from junction.yaml, runs a script of
store operations against it and prints the resulting snapshot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		evalCmd(),
		configCmd(),
		versionCmd(),
	)

	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
