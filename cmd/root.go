package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/cmd/add"
	"github.com/leefowlercu/pkmgraph/cmd/brokenlinks"
	"github.com/leefowlercu/pkmgraph/cmd/daemon"
	cmdinit "github.com/leefowlercu/pkmgraph/cmd/init"
	"github.com/leefowlercu/pkmgraph/cmd/orphans"
	"github.com/leefowlercu/pkmgraph/cmd/search"
	"github.com/leefowlercu/pkmgraph/cmd/stats"
	"github.com/leefowlercu/pkmgraph/cmd/sync"
	"github.com/leefowlercu/pkmgraph/cmd/update"
	"github.com/leefowlercu/pkmgraph/cmd/version"
	"github.com/leefowlercu/pkmgraph/cmd/watch"
	"github.com/leefowlercu/pkmgraph/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads.
var logManager *logging.Manager

// Quiet suppresses non-error output when true.
var Quiet bool

var pkmgraphCmd = &cobra.Command{
	Use:   "pkmgraph",
	Short: "A knowledge graph engine for a markdown notes vault",
	Long: "pkmgraph builds and maintains a knowledge graph over a markdown notes vault: " +
		"wiki-links become edges, note content is embedded for semantic search, and a " +
		"filesystem watcher keeps the graph in sync as notes are added, edited, and removed.\n\n" +
		"Run 'pkmgraph init' to create a notes vault and configuration before using the " +
		"other commands.",
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	pkmgraphCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", false, "Suppress non-error output")

	pkmgraphCmd.AddCommand(version.VersionCmd)
	pkmgraphCmd.AddCommand(cmdinit.InitCmd)
	pkmgraphCmd.AddCommand(add.AddCmd)
	pkmgraphCmd.AddCommand(update.UpdateCmd)
	pkmgraphCmd.AddCommand(search.SearchCmd)
	pkmgraphCmd.AddCommand(sync.SyncCmd)
	pkmgraphCmd.AddCommand(stats.StatsCmd)
	pkmgraphCmd.AddCommand(orphans.OrphansCmd)
	pkmgraphCmd.AddCommand(brokenlinks.BrokenLinksCmd)
	pkmgraphCmd.AddCommand(watch.WatchCmd)
	pkmgraphCmd.AddCommand(daemon.DaemonCmd)
}

// Execute runs the root command, printing errors and usage the way a CLI
// user expects rather than cobra's default stack-trace-adjacent output.
func Execute() error {
	pkmgraphCmd.SilenceErrors = true
	pkmgraphCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := pkmgraphCmd.Execute()
	if err != nil {
		cmd, _, _ := pkmgraphCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = pkmgraphCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
