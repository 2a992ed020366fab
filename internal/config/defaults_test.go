package config

import "testing"

func TestNewDefaultConfig_PopulatesAllSections(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Watcher.DebounceMs != DefaultWatcherDebounceMs {
		t.Errorf("Watcher.DebounceMs = %d, want %d", cfg.Watcher.DebounceMs, DefaultWatcherDebounceMs)
	}
	if cfg.Search.ChunkSize != DefaultSearchChunkSize {
		t.Errorf("Search.ChunkSize = %d, want %d", cfg.Search.ChunkSize, DefaultSearchChunkSize)
	}
	if cfg.Embeddings.Provider != DefaultEmbeddingsProvider {
		t.Errorf("Embeddings.Provider = %q, want %q", cfg.Embeddings.Provider, DefaultEmbeddingsProvider)
	}
	if cfg.Decide.LLMProvider != DefaultDecideLLMProvider {
		t.Errorf("Decide.LLMProvider = %q, want %q", cfg.Decide.LLMProvider, DefaultDecideLLMProvider)
	}
	if len(cfg.Defaults.Include.Extensions) == 0 {
		t.Error("expected default include extensions to be non-empty")
	}
}

func TestEmbeddingsConfig_ResolveAPIKey_PrefersExplicitKey(t *testing.T) {
	explicit := "sk-explicit"
	cfg := EmbeddingsConfig{APIKey: &explicit, APIKeyEnv: "PKMGRAPH_TEST_KEY_UNSET"}

	if got := cfg.ResolveAPIKey(); got != explicit {
		t.Errorf("ResolveAPIKey() = %q, want %q", got, explicit)
	}
}

func TestEmbeddingsConfig_ResolveAPIKey_FallsBackToEnv(t *testing.T) {
	t.Setenv("PKMGRAPH_TEST_EMBEDDINGS_KEY", "sk-from-env")
	cfg := EmbeddingsConfig{APIKeyEnv: "PKMGRAPH_TEST_EMBEDDINGS_KEY"}

	if got := cfg.ResolveAPIKey(); got != "sk-from-env" {
		t.Errorf("ResolveAPIKey() = %q, want sk-from-env", got)
	}
}
