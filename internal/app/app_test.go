package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/pkmgraph/internal/decide"
	"github.com/leefowlercu/pkmgraph/internal/testutil"
)

func TestBootstrapWithConfig(t *testing.T) {
	env := testutil.NewTestEnv(t)

	a, err := bootstrapWithConfig(context.Background(), env.Config, nil)
	if err != nil {
		t.Fatalf("bootstrapWithConfig() error = %v", err)
	}
	defer a.Close()

	if a.Graph == nil {
		t.Fatal("expected a non-nil Graph")
	}
	if a.Notes == nil {
		t.Fatal("expected a non-nil Notes manager")
	}
	if a.NotesDir != env.Config.Notes.Directory {
		t.Errorf("NotesDir = %q, want %q", a.NotesDir, env.Config.Notes.Directory)
	}

	if _, err := os.Stat(env.Config.Notes.KnowledgeBaseDir); err != nil {
		t.Errorf("expected knowledge base dir to be created: %v", err)
	}
}

func TestBootstrapWithConfig_EmbeddingsDisabled(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Config.Embeddings.Enabled = false

	a, err := bootstrapWithConfig(context.Background(), env.Config, nil)
	if err != nil {
		t.Fatalf("bootstrapWithConfig() error = %v", err)
	}
	defer a.Close()

	if a.LLMDecider() != nil {
		t.Error("expected nil LLMDecider when decide.llm_enabled is false")
	}
}

func TestLLMDecider_SelectsProviderFromConfig(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Config.Decide.LLMEnabled = true
	apiKey := "test-key"
	env.Config.Decide.APIKey = &apiKey

	a, err := bootstrapWithConfig(context.Background(), env.Config, nil)
	if err != nil {
		t.Fatalf("bootstrapWithConfig() error = %v", err)
	}
	defer a.Close()

	env.Config.Decide.LLMProvider = "openai"
	if _, ok := a.LLMDecider().(*decide.OpenAILLMDecider); !ok {
		t.Errorf("LLMDecider() with llm_provider=openai = %T, want *decide.OpenAILLMDecider", a.LLMDecider())
	}

	env.Config.Decide.LLMProvider = "anthropic"
	if _, ok := a.LLMDecider().(*decide.AnthropicLLMDecider); !ok {
		t.Errorf("LLMDecider() with llm_provider=anthropic = %T, want *decide.AnthropicLLMDecider", a.LLMDecider())
	}
}

func TestBootstrapWithConfig_ReopensExistingGraph(t *testing.T) {
	env := testutil.NewTestEnv(t)

	a, err := bootstrapWithConfig(context.Background(), env.Config, nil)
	if err != nil {
		t.Fatalf("bootstrapWithConfig() error = %v", err)
	}

	note := filepath.Join(env.Config.Notes.Directory, "projects", "hello.md")
	if err := os.MkdirAll(filepath.Dir(note), 0755); err != nil {
		t.Fatalf("failed to create note dir: %v", err)
	}
	if err := os.WriteFile(note, []byte("# Hello\n\nSome content.\n"), 0644); err != nil {
		t.Fatalf("failed to write note: %v", err)
	}

	if _, err := a.Graph.FullSync(context.Background(), false); err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	b, err := bootstrapWithConfig(context.Background(), env.Config, nil)
	if err != nil {
		t.Fatalf("second bootstrapWithConfig() error = %v", err)
	}
	defer b.Close()

	if _, ok := b.Graph.NodeByTitle("Hello"); !ok {
		t.Error("expected reopened graph to retain the synced note")
	}
}
