// Package cli wires the cobra command tree: serve runs a review session
// over MCP or HTTP, the remaining commands are operator utilities against
// the same configuration.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand constructs the root command with all subcommands attached.
func NewRootCommand(version string) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "redline",
		Short: "Review comment placement and thread reconciliation for pull requests",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(serveCommand(version))
	root.AddCommand(threadsCommand())
	root.AddCommand(runsCommand())
	root.AddCommand(checkCommand())
	root.AddCommand(versionCommand(version))

	return root
}

func versionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
