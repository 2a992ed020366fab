package subcommands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/daemonclient"
)

var (
	rebuildFull    bool
	rebuildVerbose bool
)

// RebuildCmd triggers a rebuild of the knowledge graph via the running daemon.
var RebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Trigger a graph sync on the running daemon",
	Long: "Trigger a graph sync on the running daemon.\n\n" +
		"By default, performs an incremental sync that only reprocesses notes whose " +
		"content hash changed. Use --full to force a complete rebuild. Orphaned vector " +
		"entries are reaped on every sync.",
	Example: `  # Incremental rebuild
  pkmgraph daemon rebuild

  # Full rebuild of all notes
  pkmgraph daemon rebuild --full

  # Full rebuild with progress output
  pkmgraph daemon rebuild --full --verbose`,
	PreRunE: validateRebuild,
	RunE:    runRebuild,
}

func init() {
	RebuildCmd.Flags().BoolVar(&rebuildFull, "full", false, "Force full rebuild of all notes")
	RebuildCmd.Flags().BoolVar(&rebuildVerbose, "verbose", false, "Show progress output")
}

func validateRebuild(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	quiet := isQuiet(cmd)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config; %w", err)
	}

	client, err := daemonclient.NewFromConfig(cfg, daemonclient.WithTimeout(daemonclient.RebuildTimeout))
	if err != nil {
		return fmt.Errorf("failed to initialize daemon client; %w", err)
	}

	if rebuildVerbose && !quiet {
		fmt.Fprintf(out, "Triggering %s rebuild...\n", rebuildType())
	}

	result, err := client.Rebuild(context.Background(), rebuildFull)
	if err != nil {
		return fmt.Errorf("rebuild failed; %w", err)
	}

	if !quiet {
		if rebuildVerbose {
			fmt.Fprintf(out, "Rebuild completed:\n")
			fmt.Fprintf(out, "  Status: %s\n", result.Status)
			fmt.Fprintf(out, "  Nodes: %d\n", result.Nodes)
			fmt.Fprintf(out, "  Edges: %d\n", result.Edges)
			fmt.Fprintf(out, "  Duration: %s\n", result.Duration)
		} else {
			fmt.Fprintf(out, "Rebuild %s: %d nodes, %d edges\n", result.Status, result.Nodes, result.Edges)
		}
	}

	return nil
}

func rebuildType() string {
	if rebuildFull {
		return "full"
	}
	return "incremental"
}
