// Package update implements the update command: append additional text to
// an existing note and resync it into the graph.
package update

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
)

var UpdateCmd = &cobra.Command{
	Use:   "update <title>",
	Short: "Append content to an existing note",
	Long: "Appends a timestamped \"## Update\" section to an existing note, identified by its " +
		"exact title, then resyncs the note into the graph. A no-op if the exact section " +
		"already exists (re-running update with the same text twice has no further effect).\n\n" +
		"Body content is read from --body, or from stdin if --body is not given.",
	Args: cobra.ExactArgs(1),
	Example: `  # Append to a note by title
  pkmgraph update "Go Generics" --body "Added a note on type inference."

  # Pipe the addition from stdin
  echo "More context here." | pkmgraph update "Meeting Notes"`,
	RunE: runUpdate,
}

func init() {
	UpdateCmd.Flags().String("body", "", "Text to append; reads stdin if omitted")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	title := args[0]
	body, _ := cmd.Flags().GetString("body")

	if body == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read addition from stdin; %w", err)
			}
			body = strings.TrimSpace(string(data))
		}
	}
	if body == "" {
		return fmt.Errorf("addition text is empty; pass --body or pipe content via stdin")
	}

	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	node, ok := a.Graph.NodeByTitle(title)
	if !ok {
		return fmt.Errorf("no note titled %q found", title)
	}

	if _, err := a.Notes.Update(node.FilePath, body); err != nil {
		return fmt.Errorf("failed to update note; %w", err)
	}

	if _, err := a.Graph.SyncFile(cmd.Context(), node.FilePath); err != nil {
		return fmt.Errorf("failed to resync note into graph; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated note %q\n", title)
	return nil
}
