package subcommands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/pkmgraph/internal/app"
	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/daemon"
	"github.com/leefowlercu/pkmgraph/internal/graph"
	"github.com/leefowlercu/pkmgraph/internal/watcher"
)

// StartCmd starts the daemon in foreground mode.
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in foreground mode",
	Long: "Start the daemon in foreground mode.\n\n" +
		"The daemon runs an initial full sync, then watches the notes directory while " +
		"exposing health, rebuild, search, and stats endpoints over HTTP. Use standard " +
		"backgrounding methods like '&', 'nohup', or a service runner (launchd, systemd) " +
		"to run it in the background.",
	Example: `  # Start daemon in foreground
  pkmgraph daemon start

  # Start daemon in background
  pkmgraph daemon start &

  # Start daemon with nohup
  nohup pkmgraph daemon start &`,
	PreRunE: validateStart,
	RunE:    runStart,
}

func validateStart(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to bootstrap graph; %w", err)
	}
	defer a.Close()

	if _, err := a.Graph.FullSync(ctx, false); err != nil {
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

	cfg := daemon.DaemonConfig{
		HTTPPort:        a.Config.Daemon.HTTPPort,
		HTTPBind:        a.Config.Daemon.HTTPBind,
		ShutdownTimeout: time.Duration(a.Config.Daemon.ShutdownTimeout) * time.Second,
		PIDFile:         config.ExpandPath(a.Config.Daemon.PIDFile),
	}
	d := daemon.NewDaemon(cfg)
	wireServer(d.Server(), a)

	d.UpdateComponentHealth(map[string]daemon.ComponentHealth{
		"watcher": {Status: daemon.ComponentStatusRunning},
	})

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher; %w", err)
	}
	defer w.Stop()

	slog.Info("starting daemon",
		"http_bind", cfg.HTTPBind,
		"http_port", cfg.HTTPPort,
		"pid_file", cfg.PIDFile,
		"notes_dir", a.NotesDir,
	)

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("daemon error; %w", err)
	}

	return nil
}

// wireServer attaches the daemon's HTTP handlers to the running graph.
func wireServer(srv *daemon.Server, a *app.App) {
	srv.SetRebuildFunc(func(ctx context.Context, full bool) (*daemon.RebuildResult, error) {
		start := time.Now()
		report, err := a.Graph.FullSync(ctx, full)
		if err != nil {
			return nil, err
		}
		return &daemon.RebuildResult{
			Status:   "ok",
			Nodes:    report.GraphNodesAfter,
			Edges:    report.GraphEdgesAfter,
			Duration: time.Since(start).String(),
		}, nil
	})

	srv.SetSearchFunc(func(ctx context.Context, query string, limit int) ([]daemon.SearchResult, error) {
		results, err := a.Graph.UnifiedSearch(ctx, query, limit, graph.UnifiedSearchOptions{
			IncludeSemantic:   true,
			IncludeGrep:       true,
			IncludeTitle:      true,
			IncludeTag:        true,
			SemanticThreshold: a.Config.Search.SemanticThreshold,
		})
		if err != nil {
			return nil, err
		}

		out := make([]daemon.SearchResult, len(results))
		for i, r := range results {
			out[i] = daemon.SearchResult{
				Title:          r.Title,
				Category:       r.Category,
				SourceType:     r.SourceType,
				RelevanceScore: r.RelevanceScore,
				Snippet:        r.Snippet,
				FilePath:       r.FilePath,
			}
		}
		return out, nil
	})

	srv.SetStatsFunc(func(ctx context.Context) (any, error) {
		return a.Graph.GetStatistics(), nil
	})
}
