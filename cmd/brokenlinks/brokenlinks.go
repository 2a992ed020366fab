// Package brokenlinks implements the broken-links command: edges whose
// target no longer resolves to a node.
package brokenlinks

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
)

var BrokenLinksCmd = &cobra.Command{
	Use:   "broken-links",
	Short: "List wiki-links that no longer resolve to a note",
	RunE:  runBrokenLinks,
}

func runBrokenLinks(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	links := a.Graph.FindBrokenLinks()
	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No broken links.")
		return nil
	}

	for _, l := range links {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s [%s]\n", l.SourceTitle, l.TargetID, l.RelationType)
	}
	return nil
}
