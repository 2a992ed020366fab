// Package daemon provides the daemon parent command and subcommands.
package daemon

import (
	"github.com/leefowlercu/pkmgraph/cmd/daemon/subcommands"
	"github.com/spf13/cobra"
)

// DaemonCmd is the parent command for all daemon-related subcommands.
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the watcher as a background process",
	Long: "Run the watcher as a background process.\n\n" +
		"The daemon command starts the filesystem watcher in the background and exposes " +
		"an HTTP surface for health checks, on-demand rebuilds, search, and stats, so the " +
		"graph can be queried without a separate watch process attached to your terminal.",
}

func init() {
	DaemonCmd.AddCommand(subcommands.StartCmd)
	DaemonCmd.AddCommand(subcommands.StopCmd)
	DaemonCmd.AddCommand(subcommands.StatusCmd)
	DaemonCmd.AddCommand(subcommands.RebuildCmd)
	DaemonCmd.AddCommand(subcommands.SearchCmd)
	DaemonCmd.AddCommand(subcommands.StatsCmd)
	DaemonCmd.AddCommand(subcommands.InstallCmd)
	DaemonCmd.AddCommand(subcommands.UninstallCmd)
}
