// Package orphans implements the orphans command: notes that no other note
// links to.
package orphans

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
)

var OrphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List notes with no incoming links",
	RunE:  runOrphans,
}

func runOrphans(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	nodes := a.Graph.FindOrphans()
	if len(nodes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No orphaned notes.")
		return nil
	}

	for _, n := range nodes {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %s\n", n.Title, n.Category, n.FilePath)
	}
	return nil
}
