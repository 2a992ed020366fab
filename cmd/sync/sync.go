// Package sync implements the sync command: a one-shot full reconciliation
// of the graph against the notes directory.
package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the graph against the notes directory",
	Long: "Walks the notes directory, adds nodes for new or changed files, removes nodes for " +
		"deleted files, and re-resolves wiki-links once at the end.\n\n" +
		"With --force, every note is re-parsed and re-embedded regardless of whether its " +
		"content hash changed. Every sync, forced or not, also reaps orphaned vector entries.",
	Example: `  # Incremental sync
  pkmgraph sync

  # Full rebuild of every note
  pkmgraph sync --force`,
	RunE: runSync,
}

func init() {
	SyncCmd.Flags().Bool("force", false, "Force a full rebuild of every note")
}

func runSync(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Graph.FullSync(cmd.Context(), force)
	if err != nil {
		return fmt.Errorf("sync failed; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sync %s completed in %.2fs\n", report.RunID, report.ProcessingTimeSeconds)
	fmt.Fprintf(cmd.OutOrStdout(), "Vault files found: %d\n", report.VaultFilesFound)
	fmt.Fprintf(cmd.OutOrStdout(), "Nodes: %d -> %d, edges: %d\n", report.GraphNodesBefore, report.GraphNodesAfter, report.GraphEdgesAfter)
	for _, action := range report.ActionsTaken {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", action)
	}
	if report.CleanupResults != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Orphaned vectors reaped: %d\n", report.CleanupResults.OrphanedVectorsRemoved)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", e)
	}
	return nil
}
