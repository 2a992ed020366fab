// Package search implements the search command over the four query
// classes: semantic, grep, title, and tag, unified by default.
package search

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
	"github.com/leefowlercu/pkmgraph/internal/graph"
)

var SearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the notes graph",
	Long: "Searches notes by semantic similarity, literal text (grep), title, and tag, merging " +
		"results into one ranked list by default.\n\n" +
		"Pass one or more of --semantic, --grep, --title, --tag to restrict which sub-queries " +
		"run; with none given, all four run.",
	Args: cobra.ExactArgs(1),
	Example: `  # Unified search across all four query classes
  pkmgraph search "generics in Go"

  # Semantic search only
  pkmgraph search "type inference" --semantic

  # Literal grep only
  pkmgraph search "TODO" --grep

  # Tag search
  pkmgraph search "golang" --tag`,
	RunE: runSearch,
}

func init() {
	SearchCmd.Flags().Bool("semantic", false, "Include semantic (embedding) search")
	SearchCmd.Flags().Bool("grep", false, "Include literal text search")
	SearchCmd.Flags().Bool("title", false, "Include title search")
	SearchCmd.Flags().Bool("tag", false, "Include tag search")
	SearchCmd.Flags().Int("limit", 10, "Maximum results to return")
	SearchCmd.Flags().SortFlags = false
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	semantic, _ := cmd.Flags().GetBool("semantic")
	grep, _ := cmd.Flags().GetBool("grep")
	title, _ := cmd.Flags().GetBool("title")
	tag, _ := cmd.Flags().GetBool("tag")
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if !semantic && !grep && !title && !tag {
		semantic, grep, title, tag = true, true, true, true
	}

	opts := graph.UnifiedSearchOptions{
		IncludeSemantic:   semantic,
		IncludeGrep:       grep,
		IncludeTitle:      title,
		IncludeTag:        tag,
		SemanticThreshold: a.Config.Search.SemanticThreshold,
	}

	results, err := a.Graph.UnifiedSearch(cmd.Context(), query, limit, opts)
	if err != nil {
		return fmt.Errorf("search failed; %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s [%s, %.2f, via %s]\n", i+1, r.Title, r.Category, r.RelevanceScore, r.SourceType)
		if r.Snippet != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", r.Snippet)
		}
		if r.FilePath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", r.FilePath)
		}
	}
	return nil
}
