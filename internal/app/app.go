// Package app wires the engine's stores into a ready-to-use Graph for the
// CLI commands: load config, open the hash tracker, notes manager, vector
// store, and embeddings provider, then construct and initialize the Graph.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/decide"
	"github.com/leefowlercu/pkmgraph/internal/embeddings"
	"github.com/leefowlercu/pkmgraph/internal/graph"
	"github.com/leefowlercu/pkmgraph/internal/hashcache"
	"github.com/leefowlercu/pkmgraph/internal/notes"
	"github.com/leefowlercu/pkmgraph/internal/providers"
	"github.com/leefowlercu/pkmgraph/internal/vectorstore"
)

// App bundles the initialized stores a command needs. Close releases any
// held resources (the vector store's sqlite connection).
type App struct {
	Config  *config.Config
	Graph   *graph.Graph
	Tracker *hashcache.Tracker
	Notes   *notes.Manager
	Vectors *vectorstore.Store
	Logger  *slog.Logger

	// NotesDir is cfg.Notes.Directory with ~ expanded, the path callers
	// should pass to anything that walks or watches the filesystem.
	NotesDir string
}

// Bootstrap loads configuration and wires the stores into an initialized
// Graph. Callers must call Close when finished.
func Bootstrap(ctx context.Context, logger *slog.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrapWithConfig(ctx, cfg, logger)
}

func bootstrapWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	notesDir := config.ExpandPath(cfg.Notes.Directory)
	knowledgeBaseDir := config.ExpandPath(cfg.Notes.KnowledgeBaseDir)

	tracker, err := hashcache.New(filepath.Join(knowledgeBaseDir, "hashes.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open hash cache; %w", err)
	}

	notesMgr := notes.New(notesDir, tracker)
	if _, err := notesMgr.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize notes directory; %w", err)
	}

	var embedder providers.EmbeddingsProvider
	if cfg.Embeddings.Enabled {
		embedder, err = embeddings.New(cfg.Embeddings)
		if err != nil {
			return nil, fmt.Errorf("failed to construct embeddings provider; %w", err)
		}
	} else {
		// Semantic search needs some embedder to size the vector collection;
		// fall back to the zero-cost local provider rather than making the
		// rest of the graph conditional on embeddings being enabled.
		embedder = embeddings.NewLocalEmbeddingsProvider()
	}

	vectors, err := vectorstore.Open(config.ExpandPath(cfg.VectorStore.DatabasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store; %w", err)
	}

	g := graph.New(notesDir, knowledgeBaseDir, tracker, notesMgr, embedder, vectors, cfg.Search, logger)
	if err := g.Init(ctx); err != nil {
		vectors.Close()
		return nil, fmt.Errorf("failed to initialize graph; %w", err)
	}

	return &App{
		Config:   cfg,
		Graph:    g,
		Tracker:  tracker,
		Notes:    notesMgr,
		Vectors:  vectors,
		Logger:   logger,
		NotesDir: notesDir,
	}, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	return a.Vectors.Close()
}

// LLMDecider constructs a decide.LLMDecider from configuration, or nil when
// LLM refinement is disabled or no API key can be resolved.
func (a *App) LLMDecider() decide.LLMDecider {
	if !a.Config.Decide.LLMEnabled {
		return nil
	}
	apiKey := a.Config.Decide.ResolveAPIKey()
	if apiKey == "" {
		a.Logger.Warn("decide.llm_enabled is true but no API key could be resolved; falling back to heuristic only")
		return nil
	}

	switch a.Config.Decide.LLMProvider {
	case "anthropic":
		return decide.NewAnthropicLLMDecider(apiKey, a.Config.Decide.LLMModel, 1024, 30)
	default:
		return decide.NewOpenAILLMDecider(apiKey, a.Config.Decide.LLMModel, 1024)
	}
}
