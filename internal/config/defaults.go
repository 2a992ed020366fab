package config

// Default configuration values.
const (
	// Logging defaults.
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/pkmgraph/pkmgraph.log"

	// Notes defaults.
	DefaultKnowledgeBaseDirName = ".knowledge_base"

	// Watcher defaults.
	DefaultWatcherDebounceMs    = 2000
	DefaultWatcherDeleteGraceMs = 5000
	DefaultWatcherQueueCapacity = 1024

	// Search defaults.
	DefaultSearchSemanticThreshold  = 0.35
	DefaultSearchChunkSize          = 500
	DefaultSearchChunkOverlap       = 50
	DefaultSearchResultLimit        = 10
	DefaultSearchCaseSensitiveGrep  = false

	// Embeddings provider defaults.
	DefaultEmbeddingsEnabled    = true
	DefaultEmbeddingsProvider   = "local"
	DefaultEmbeddingsModel      = "hashing-bow-v1"
	DefaultEmbeddingsDimensions = 256
	DefaultEmbeddingsAPIKeyEnv  = "OPENAI_API_KEY"

	// Vector store defaults.
	DefaultVectorStoreDatabasePath = "~/.config/pkmgraph/vectors.db"

	// Decide defaults.
	DefaultDecideSimilarityThreshold = 0.7
	DefaultDecideLLMEnabled          = false
	DefaultDecideLLMProvider         = "openai"
	DefaultDecideLLMModel            = "gpt-4o-mini"
	DefaultDecideAPIKeyEnv           = "OPENAI_API_KEY"

	// Daemon defaults.
	DefaultDaemonHTTPPort        = 7600
	DefaultDaemonHTTPBind        = "127.0.0.1"
	DefaultDaemonShutdownTimeout = 30
	DefaultDaemonPIDFile         = "~/.config/pkmgraph/daemon.pid"
)

// DefaultSkipDirectories lists directory names skipped during the notes
// directory scan (C4) unless a note path explicitly overrides it.
var DefaultSkipDirectories = []string{".git", ".knowledge_base", "node_modules", ".obsidian"}

// DefaultSkipFiles lists filenames skipped during the notes directory scan.
var DefaultSkipFiles = []string{".DS_Store"}

// DefaultIncludeExtensions lists the file extensions treated as notes.
var DefaultIncludeExtensions = []string{".md", ".markdown"}

// NewDefaultConfig returns a Config populated with all default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Notes: NotesConfig{
			Directory:        "",
			KnowledgeBaseDir: "",
		},
		Watcher: WatcherConfig{
			DebounceMs:    DefaultWatcherDebounceMs,
			DeleteGraceMs: DefaultWatcherDeleteGraceMs,
			QueueCapacity: DefaultWatcherQueueCapacity,
		},
		Search: SearchConfig{
			SemanticThreshold:  DefaultSearchSemanticThreshold,
			ChunkSize:          DefaultSearchChunkSize,
			ChunkOverlap:       DefaultSearchChunkOverlap,
			CaseSensitiveGrep:  DefaultSearchCaseSensitiveGrep,
			DefaultResultLimit: DefaultSearchResultLimit,
		},
		Embeddings: EmbeddingsConfig{
			Enabled:    DefaultEmbeddingsEnabled,
			Provider:   DefaultEmbeddingsProvider,
			Model:      DefaultEmbeddingsModel,
			Dimensions: DefaultEmbeddingsDimensions,
			APIKey:     nil,
			APIKeyEnv:  DefaultEmbeddingsAPIKeyEnv,
		},
		VectorStore: VectorStoreConfig{
			DatabasePath: DefaultVectorStoreDatabasePath,
		},
		Decide: DecideConfig{
			SimilarityThreshold: DefaultDecideSimilarityThreshold,
			LLMEnabled:          DefaultDecideLLMEnabled,
			LLMProvider:         DefaultDecideLLMProvider,
			LLMModel:            DefaultDecideLLMModel,
			APIKeyEnv:           DefaultDecideAPIKeyEnv,
		},
		Daemon: DaemonConfig{
			HTTPPort:        DefaultDaemonHTTPPort,
			HTTPBind:        DefaultDaemonHTTPBind,
			ShutdownTimeout: DefaultDaemonShutdownTimeout,
			PIDFile:         DefaultDaemonPIDFile,
		},
		Defaults: DefaultsConfig{
			Skip: SkipDefaults{
				Directories: DefaultSkipDirectories,
				Files:       DefaultSkipFiles,
				Hidden:      true,
			},
			Include: IncludeDefaults{
				Extensions: DefaultIncludeExtensions,
			},
		},
	}
}
