// Command jr3d runs the .jr3d archive agent and inspects archives offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/jr3d/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jr3d",
		Short:         "Export, restore and inspect .jr3d project archives",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jr3d %s (commit %s, built %s)\n", config.Version, config.GitCommit, config.BuildTime)
		},
	}
}
