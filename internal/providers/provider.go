package providers

import (
	"context"
	"time"
)

// ProviderType represents the type of provider.
type ProviderType string

const (
	ProviderTypeEmbeddings ProviderType = "embeddings"
)

// Provider is the base interface for all providers.
type Provider interface {
	// Name returns the provider's unique identifier.
	Name() string

	// Type returns the provider type.
	Type() ProviderType

	// Available returns true if the provider is configured and ready.
	Available() bool

	// RateLimit returns the rate limit configuration for this provider.
	RateLimit() RateLimitConfig
}

// RateLimitConfig describes a provider's request throttling limits.
type RateLimitConfig struct {
	RequestsPerMinute int
	TokensPerMinute   int
	BurstSize         int
}

// EmbeddingsProvider generates vector embeddings from content.
type EmbeddingsProvider interface {
	Provider

	// Embed generates embeddings for the given content.
	Embed(ctx context.Context, req EmbeddingsRequest) (*EmbeddingsResult, error)

	// EmbedBatch generates embeddings for multiple texts in a single API call.
	// This is more efficient than calling Embed multiple times for multi-chunk files.
	EmbedBatch(ctx context.Context, texts []string) ([]EmbeddingsBatchResult, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the dimensionality of the embedding vectors.
	Dimensions() int

	// MaxTokens returns the maximum number of tokens per request.
	MaxTokens() int
}

// EmbeddingsRequest represents a request for embeddings generation.
type EmbeddingsRequest struct {
	// Content is the text to embed.
	Content string

	// ChunkID identifies this chunk for caching.
	ChunkID string

	// ContentHash is the hash of the content for cache lookup.
	ContentHash string
}

// EmbeddingsResult contains the results of embeddings generation.
type EmbeddingsResult struct {
	// Embedding is the vector representation.
	Embedding []float32 `json:"embedding"`

	// ProviderName is the name of the provider.
	ProviderName string `json:"provider_name"`

	// ModelName is the specific model used.
	ModelName string `json:"model_name"`

	// Dimensions is the dimensionality of the embedding.
	Dimensions int `json:"dimensions"`

	// TokensUsed is the number of tokens consumed.
	TokensUsed int `json:"tokens_used"`

	// GeneratedAt is when the embedding was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// Version is the embedding version for cache invalidation.
	Version int `json:"version"`
}

// EmbeddingsBatchResult contains the result for a single item in a batch.
type EmbeddingsBatchResult struct {
	// Index is the position in the original input array.
	Index int `json:"index"`

	// Embedding is the vector representation.
	Embedding []float32 `json:"embedding"`

	// TokensUsed is the number of tokens consumed for this item.
	TokensUsed int `json:"tokens_used"`
}
