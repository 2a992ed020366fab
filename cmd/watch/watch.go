// Package watch implements the watch command: continuous filesystem
// watching with incremental sync, running in the foreground until
// interrupted.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
	"github.com/leefowlercu/pkmgraph/internal/watcher"
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the notes directory and keep the graph in sync",
	Long: "Runs an initial full sync, then watches the notes directory for creates, edits, " +
		"and deletes, coalescing rapid-fire filesystem events and applying them incrementally. " +
		"Runs in the foreground until interrupted (Ctrl-C) or SIGTERM.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Graph.FullSync(cmd.Context(), false); err != nil {
		return fmt.Errorf("initial sync failed; %w", err)
	}

	w, err := watcher.New(
		a.NotesDir,
		a.Graph,
		watcher.WithDebounceWindow(time.Duration(a.Config.Watcher.DebounceMs)*time.Millisecond),
		watcher.WithDeleteGracePeriod(time.Duration(a.Config.Watcher.DeleteGraceMs)*time.Millisecond),
		watcher.WithQueueCapacity(a.Config.Watcher.QueueCapacity),
		watcher.WithLogger(a.Logger),
	)
	if err != nil {
		return fmt.Errorf("failed to construct watcher; %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", a.NotesDir)
	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "Stopping...")

	return w.Stop()
}
