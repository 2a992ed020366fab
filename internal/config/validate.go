package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// validEmbeddingsProviders lists recognized embeddings providers.
var validEmbeddingsProviders = map[string]bool{
	"local":  true,
	"openai": true,
	"google": true,
	"voyage": true,
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.Notes.Directory == "" {
		errs = append(errs, ValidationError{
			Field:   "notes.directory",
			Message: "must not be empty",
		})
	}

	if cfg.Watcher.DebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "watcher.debounce_ms",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Watcher.DebounceMs),
		})
	}

	if cfg.Watcher.QueueCapacity < 1 {
		errs = append(errs, ValidationError{
			Field:   "watcher.queue_capacity",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Watcher.QueueCapacity),
		})
	}

	if cfg.Search.ChunkSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "search.chunk_size",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Search.ChunkSize),
		})
	}

	if cfg.Search.ChunkOverlap < 0 || cfg.Search.ChunkOverlap >= cfg.Search.ChunkSize {
		errs = append(errs, ValidationError{
			Field:   "search.chunk_overlap",
			Message: fmt.Sprintf("must be non-negative and less than chunk_size, got %d", cfg.Search.ChunkOverlap),
		})
	}

	if cfg.Search.SemanticThreshold < 0 || cfg.Search.SemanticThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "search.semantic_threshold",
			Message: fmt.Sprintf("must be between 0 and 1, got %f", cfg.Search.SemanticThreshold),
		})
	}

	if cfg.Embeddings.Enabled {
		if cfg.Embeddings.Provider == "" {
			errs = append(errs, ValidationError{
				Field:   "embeddings.provider",
				Message: "must not be empty when embeddings are enabled",
			})
		} else if !validEmbeddingsProviders[cfg.Embeddings.Provider] {
			errs = append(errs, ValidationError{
				Field:   "embeddings.provider",
				Message: fmt.Sprintf("must be one of: local, openai, google, voyage; got %q", cfg.Embeddings.Provider),
			})
		}

		if cfg.Embeddings.Model == "" {
			errs = append(errs, ValidationError{
				Field:   "embeddings.model",
				Message: "must not be empty when embeddings are enabled",
			})
		}

		if cfg.Embeddings.Dimensions < 1 {
			errs = append(errs, ValidationError{
				Field:   "embeddings.dimensions",
				Message: fmt.Sprintf("must be at least 1, got %d", cfg.Embeddings.Dimensions),
			})
		}
	}

	if cfg.VectorStore.DatabasePath == "" {
		errs = append(errs, ValidationError{
			Field:   "vector_store.database_path",
			Message: "must not be empty",
		})
	}

	if cfg.Decide.SimilarityThreshold < 0 || cfg.Decide.SimilarityThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "decide.similarity_threshold",
			Message: fmt.Sprintf("must be between 0 and 1, got %f", cfg.Decide.SimilarityThreshold),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
