package config

import "os"

// Config is the root configuration structure for the knowledge base engine.
type Config struct {
	LogLevel    string            `yaml:"log_level" mapstructure:"log_level"`
	LogFile     string            `yaml:"log_file" mapstructure:"log_file"`
	Notes       NotesConfig       `yaml:"notes" mapstructure:"notes"`
	Watcher     WatcherConfig     `yaml:"watcher" mapstructure:"watcher"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings" mapstructure:"embeddings"`
	VectorStore VectorStoreConfig `yaml:"vector_store" mapstructure:"vector_store"`
	Decide      DecideConfig      `yaml:"decide" mapstructure:"decide"`
	Daemon      DaemonConfig      `yaml:"daemon" mapstructure:"daemon"`
	Defaults    DefaultsConfig    `yaml:"defaults" mapstructure:"defaults"`
}

// NotesConfig holds the root locations the engine operates over.
type NotesConfig struct {
	// Directory is the notes vault root (spec §6 notes root layout).
	Directory string `yaml:"directory" mapstructure:"directory"`

	// KnowledgeBaseDir is where the hash cache, note mapping, and graph
	// snapshot are persisted. Defaults to "<Directory>/.knowledge_base".
	KnowledgeBaseDir string `yaml:"knowledge_base_dir" mapstructure:"knowledge_base_dir"`
}

// WatcherConfig holds filesystem-watch debounce/coalescing parameters.
type WatcherConfig struct {
	// DebounceMs is the quiet period (ms) before a coalesced create/modify
	// event is published.
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`

	// DeleteGraceMs is the grace period before a coalesced delete is
	// published, giving a subsequent create a chance to cancel it out.
	DeleteGraceMs int `yaml:"delete_grace_ms" mapstructure:"delete_grace_ms"`

	// QueueCapacity bounds the coalesced-event channel; once full, new
	// events are dropped and logged rather than blocking the fsnotify
	// reader goroutine.
	QueueCapacity int `yaml:"queue_capacity" mapstructure:"queue_capacity"`
}

// SearchConfig holds unified-search and chunking parameters.
type SearchConfig struct {
	SemanticThreshold  float64 `yaml:"semantic_threshold" mapstructure:"semantic_threshold"`
	ChunkSize          int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap       int     `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	CaseSensitiveGrep  bool    `yaml:"case_sensitive_grep" mapstructure:"case_sensitive_grep"`
	DefaultResultLimit int     `yaml:"default_result_limit" mapstructure:"default_result_limit"`
}

// EmbeddingsConfig holds embeddings provider configuration.
type EmbeddingsConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Provider   string  `yaml:"provider" mapstructure:"provider"` // "local", "openai", "google", "voyage"
	Model      string  `yaml:"model" mapstructure:"model"`
	Dimensions int     `yaml:"dimensions" mapstructure:"dimensions"`
	APIKey     *string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv  string  `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// ResolveAPIKey returns the API key from config or falls back to the
// environment variable named by APIKeyEnv.
func (c *EmbeddingsConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// VectorStoreConfig holds the sqlite-vec backed vector store location.
type VectorStoreConfig struct {
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// DecideConfig holds note-action decider configuration.
type DecideConfig struct {
	// SimilarityThreshold is the Jaccard threshold above which an existing
	// note is treated as the same note (update rather than create).
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	// LLMEnabled turns on the optional LLM refinement step.
	LLMEnabled bool `yaml:"llm_enabled" mapstructure:"llm_enabled"`

	// LLMProvider selects the backend LLMDecider implementation: "openai"
	// or "anthropic".
	LLMProvider string  `yaml:"llm_provider" mapstructure:"llm_provider"`
	LLMModel    string  `yaml:"llm_model" mapstructure:"llm_model"`
	APIKeyEnv   string  `yaml:"api_key_env" mapstructure:"api_key_env"`
	APIKey      *string `yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// ResolveAPIKey returns the API key from config or falls back to the
// environment variable named by APIKeyEnv.
func (c *DecideConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// DaemonConfig holds the background watch daemon's HTTP health/rebuild
// surface and PID file location.
type DaemonConfig struct {
	HTTPPort        int    `yaml:"http_port" mapstructure:"http_port"`
	HTTPBind        string `yaml:"http_bind" mapstructure:"http_bind"`
	ShutdownTimeout int    `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	PIDFile         string `yaml:"pid_file" mapstructure:"pid_file"`
}

// DefaultsConfig holds default skip/include patterns applied during the
// notes directory scan (C4/C8).
type DefaultsConfig struct {
	Skip    SkipDefaults    `yaml:"skip" mapstructure:"skip"`
	Include IncludeDefaults `yaml:"include" mapstructure:"include"`
}

// SkipDefaults holds default patterns to skip.
type SkipDefaults struct {
	Directories []string `yaml:"directories,flow" mapstructure:"directories"`
	Files       []string `yaml:"files,flow" mapstructure:"files"`
	Hidden      bool     `yaml:"hidden" mapstructure:"hidden"`
}

// IncludeDefaults holds the file extensions treated as notes.
type IncludeDefaults struct {
	Extensions []string `yaml:"extensions,flow" mapstructure:"extensions"`
}
