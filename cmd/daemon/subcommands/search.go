package subcommands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/daemonclient"
)

var searchLimit int

// SearchCmd queries the running daemon's graph over HTTP.
var SearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the graph via the running daemon",
	Long: "Search the graph via the running daemon.\n\n" +
		"Equivalent to the top-level search command, but runs against a daemon's " +
		"already-warm graph instead of bootstrapping a new one for this invocation.",
	Args: cobra.ExactArgs(1),
	Example: `  # Search via the daemon
  pkmgraph daemon search "generics in Go"`,
	PreRunE: validateSearch,
	RunE:    runSearch,
}

func init() {
	SearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results to return")
}

func validateSearch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config; %w", err)
	}

	client, err := daemonclient.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize daemon client; %w", err)
	}

	results, err := client.Search(context.Background(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed; %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(out, "%d. %s [%s, %.2f, via %s]\n", i+1, r.Title, r.Category, r.RelevanceScore, r.SourceType)
		if r.Snippet != "" {
			fmt.Fprintf(out, "   %s\n", r.Snippet)
		}
	}
	return nil
}
