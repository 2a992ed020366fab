// Package stats implements the stats command: summary counts and
// histograms over the graph.
package stats

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
)

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph statistics",
	Long:  "Prints node/edge counts and category, tag, and relationship-type histograms.",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.Graph.GetStatistics()

	fmt.Fprintf(cmd.OutOrStdout(), "Nodes: %d\n", s.TotalNodes)
	fmt.Fprintf(cmd.OutOrStdout(), "Edges: %d\n", s.TotalEdges)
	fmt.Fprintf(cmd.OutOrStdout(), "Orphans: %d\n", s.Orphans)
	fmt.Fprintf(cmd.OutOrStdout(), "Broken links: %d\n", s.BrokenLinks)
	fmt.Fprintf(cmd.OutOrStdout(), "Hierarchy depth: %d\n", s.HierarchyDepth)

	printHistogram(cmd, "Categories", s.Categories)
	printHistogram(cmd, "Tags", s.Tags)
	printHistogram(cmd, "Relationship types", s.RelationshipTypes)
	return nil
}

func printHistogram(cmd *cobra.Command, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", label)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", k, counts[k])
	}
}
