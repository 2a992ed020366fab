package embeddings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/leefowlercu/pkmgraph/internal/config"
	"github.com/leefowlercu/pkmgraph/internal/providers"
)

// New constructs the embeddings provider named by cfg.Provider, applying
// cfg.Model and cfg.Dimensions where the provider supports overriding them.
func New(cfg config.EmbeddingsConfig) (providers.EmbeddingsProvider, error) {
	switch cfg.Provider {
	case "", "local":
		opts := []LocalEmbeddingsOption{}
		if cfg.Model != "" {
			opts = append(opts, WithLocalModel(cfg.Model))
		}
		if cfg.Dimensions > 0 {
			opts = append(opts, WithLocalDimensions(cfg.Dimensions))
		}
		return NewLocalEmbeddingsProvider(opts...), nil

	case "openai":
		opts := []OpenAIEmbeddingsOption{}
		if cfg.Model != "" {
			opts = append(opts, WithEmbeddingsModel(cfg.Model))
		}
		if cfg.Dimensions > 0 {
			opts = append(opts, WithEmbeddingsDimensions(cfg.Dimensions))
		}
		p := NewOpenAIEmbeddingsProvider(opts...)
		if key := cfg.ResolveAPIKey(); key != "" {
			p.apiKey = key
		}
		return p, nil

	case "google":
		opts := []GoogleEmbeddingsOption{}
		if cfg.Model != "" {
			opts = append(opts, WithGoogleEmbeddingsModel(cfg.Model))
		}
		p := NewGoogleEmbeddingsProvider(opts...)
		if key := cfg.ResolveAPIKey(); key != "" {
			p.apiKey = key
		}
		return p, nil

	case "voyage":
		opts := []VoyageEmbeddingsOption{}
		if cfg.Model != "" {
			opts = append(opts, WithVoyageModel(cfg.Model))
		}
		p := NewVoyageEmbeddingsProvider(opts...)
		if key := cfg.ResolveAPIKey(); key != "" {
			p.apiKey = key
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.Provider)
	}
}

// CollectionName derives the vector-store collection name for a given
// provider and model so that switching either one lands writes and reads
// in a distinct collection instead of mixing incompatible vector spaces.
func CollectionName(providerName, modelName string) string {
	sum := sha256.Sum256([]byte(providerName + "/" + modelName))
	return "notes_" + hex.EncodeToString(sum[:])[:12]
}
