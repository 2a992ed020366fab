// Package add implements the add command: create a new note directly in
// the graph, bypassing the create-vs-update decision.
package add

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
)

var AddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new note to the graph",
	Long: "Creates a new note with the given title, embedding it for semantic search and " +
		"resolving any wiki-links it contains against the rest of the graph.\n\n" +
		"Body content is read from --body, or from stdin if --body is not given.",
	Args: cobra.ExactArgs(1),
	Example: `  # Add a note with an inline body
  pkmgraph add "Meeting Notes" --category Work --body "Discussed Q3 roadmap."

  # Add a note piping body content from stdin
  echo "Some content" | pkmgraph add "Quick Capture" --category Inbox

  # Tag the new note
  pkmgraph add "Go Generics" --category Technical --tags go,generics --body "..."`,
	RunE: runAdd,
}

func init() {
	AddCmd.Flags().String("category", "Inbox", "Note category")
	AddCmd.Flags().StringSlice("tags", nil, "Comma-separated tags")
	AddCmd.Flags().String("body", "", "Note body content; reads stdin if omitted")
	AddCmd.Flags().SortFlags = false
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := args[0]
	category, _ := cmd.Flags().GetString("category")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	body, _ := cmd.Flags().GetString("body")

	if body == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read body from stdin; %w", err)
			}
			body = strings.TrimSpace(string(data))
		}
	}
	if body == "" {
		return fmt.Errorf("note body is empty; pass --body or pipe content via stdin")
	}

	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.Graph.AddNoteFromContent(cmd.Context(), title, body, category, tags, "")
	if err != nil {
		return fmt.Errorf("failed to add note; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added note %q (id %s)\n", title, id)
	return nil
}
