package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and returns the typed configuration.
// It searches for configuration files in priority order:
//  1. Directory specified by PKMGRAPH_CONFIG_DIR environment variable
//  2. ~/.config/pkmgraph/
//  3. Current working directory (.)
//
// If no config file is found, returns an error directing the user to run
// `pkmgraph init`. If a config file exists but is invalid, returns a
// validation error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PKMGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setViperDefaults(v)

	if envPath := os.Getenv("PKMGRAPH_CONFIG_DIR"); envPath != "" {
		v.AddConfigPath(envPath)
	}

	if home := os.Getenv("HOME"); home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "pkmgraph"))
	}

	v.AddConfigPath(".")

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("no config file found; run 'pkmgraph init' to create one")
		}
		return nil, fmt.Errorf("failed to read config; %w", err)
	}

	return unmarshalConfig(v)
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PKMGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s; %w", path, err)
	}

	return unmarshalConfig(v)
}

// LoadWithDefaults returns configuration using defaults only.
// Use this in contexts where a config file is not required (e.g. `init`).
func LoadWithDefaults() *Config {
	cfg := NewDefaultConfig()
	return &cfg
}

// unmarshalConfig converts a viper config into a typed Config struct.
func unmarshalConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}

	if cfg.Notes.KnowledgeBaseDir == "" && cfg.Notes.Directory != "" {
		cfg.Notes.KnowledgeBaseDir = filepath.Join(cfg.Notes.Directory, DefaultKnowledgeBaseDirName)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setViperDefaults registers all default configuration values with a viper
// instance.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)

	v.SetDefault("watcher.debounce_ms", DefaultWatcherDebounceMs)
	v.SetDefault("watcher.delete_grace_ms", DefaultWatcherDeleteGraceMs)
	v.SetDefault("watcher.queue_capacity", DefaultWatcherQueueCapacity)

	v.SetDefault("search.semantic_threshold", DefaultSearchSemanticThreshold)
	v.SetDefault("search.chunk_size", DefaultSearchChunkSize)
	v.SetDefault("search.chunk_overlap", DefaultSearchChunkOverlap)
	v.SetDefault("search.case_sensitive_grep", DefaultSearchCaseSensitiveGrep)
	v.SetDefault("search.default_result_limit", DefaultSearchResultLimit)

	v.SetDefault("embeddings.enabled", DefaultEmbeddingsEnabled)
	v.SetDefault("embeddings.provider", DefaultEmbeddingsProvider)
	v.SetDefault("embeddings.model", DefaultEmbeddingsModel)
	v.SetDefault("embeddings.dimensions", DefaultEmbeddingsDimensions)
	v.SetDefault("embeddings.api_key_env", DefaultEmbeddingsAPIKeyEnv)

	v.SetDefault("vector_store.database_path", DefaultVectorStoreDatabasePath)

	v.SetDefault("decide.similarity_threshold", DefaultDecideSimilarityThreshold)
	v.SetDefault("decide.llm_enabled", DefaultDecideLLMEnabled)
	v.SetDefault("decide.llm_provider", DefaultDecideLLMProvider)
	v.SetDefault("decide.llm_model", DefaultDecideLLMModel)
	v.SetDefault("decide.api_key_env", DefaultDecideAPIKeyEnv)

	v.SetDefault("daemon.http_port", DefaultDaemonHTTPPort)
	v.SetDefault("daemon.http_bind", DefaultDaemonHTTPBind)
	v.SetDefault("daemon.shutdown_timeout", DefaultDaemonShutdownTimeout)
	v.SetDefault("daemon.pid_file", DefaultDaemonPIDFile)

	v.SetDefault("defaults.skip.directories", DefaultSkipDirectories)
	v.SetDefault("defaults.skip.files", DefaultSkipFiles)
	v.SetDefault("defaults.skip.hidden", true)
	v.SetDefault("defaults.include.extensions", DefaultIncludeExtensions)
}
