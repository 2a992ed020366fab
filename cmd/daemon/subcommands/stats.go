package subcommands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/daemonclient"
)

// StatsCmd fetches graph statistics from the running daemon.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph statistics via the running daemon",
	Example: `  # Show stats via the daemon
  pkmgraph daemon stats`,
	PreRunE: validateStats,
	RunE:    runStats,
}

func validateStats(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config; %w", err)
	}

	client, err := daemonclient.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize daemon client; %w", err)
	}

	stats, err := client.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats request failed; %w", err)
	}

	out := cmd.OutOrStdout()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(out, "%s: %v\n", k, stats[k])
	}
	return nil
}
