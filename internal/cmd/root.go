// Package cmd wires the runner into a CLI. Binaries that declare example
// groups through the dsl package call Execute from main to get the standard
// flags, config loading, and reporter composition.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates and returns the root cobra command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rspec",
		Short: "Run declared example groups",
		Long: `Executes the example groups declared in this binary: one example at a
time, with before/after/around hooks, pending and skip handling, and
doc-style console output. JSON and HTML reports can be written alongside.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())

	return cmd
}
