package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/leefowlercu/pkmgraph/internal/providers"
)

const (
	localDefaultModel     = "hashing-bow-v1"
	localDefaultDimension = 256
	localMaxTokens        = 100000
)

// LocalEmbeddingsProvider computes embeddings on-device with a hashed
// bag-of-words model. It never calls out to a remote API, so it has no
// rate limit and is always available. Embed is CPU-bound; work is
// dispatched to a fixed worker pool so a caller driving many notes
// through an async pipeline never blocks it on a single goroutine.
type LocalEmbeddingsProvider struct {
	model      string
	dimensions int
	pool       *workerPool
}

// LocalEmbeddingsOption configures the LocalEmbeddingsProvider.
type LocalEmbeddingsOption func(*LocalEmbeddingsProvider)

// WithLocalModel sets the model identifier reported by ModelName.
func WithLocalModel(model string) LocalEmbeddingsOption {
	return func(p *LocalEmbeddingsProvider) {
		p.model = model
	}
}

// WithLocalDimensions sets the output vector width.
func WithLocalDimensions(dims int) LocalEmbeddingsOption {
	return func(p *LocalEmbeddingsProvider) {
		p.dimensions = dims
	}
}

// WithLocalWorkers sets the number of worker goroutines used to compute
// embeddings off the caller's goroutine. Defaults to runtime.NumCPU().
func WithLocalWorkers(n int) LocalEmbeddingsOption {
	return func(p *LocalEmbeddingsProvider) {
		p.pool = newWorkerPool(n)
	}
}

// NewLocalEmbeddingsProvider creates a new local hashing embeddings provider.
func NewLocalEmbeddingsProvider(opts ...LocalEmbeddingsOption) *LocalEmbeddingsProvider {
	p := &LocalEmbeddingsProvider{
		model:      localDefaultModel,
		dimensions: localDefaultDimension,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.pool == nil {
		p.pool = newWorkerPool(0)
	}

	return p
}

// Name returns the provider's unique identifier.
func (p *LocalEmbeddingsProvider) Name() string {
	return "local-embeddings"
}

// Type returns the provider type.
func (p *LocalEmbeddingsProvider) Type() providers.ProviderType {
	return providers.ProviderTypeEmbeddings
}

// Available always returns true; there is no external dependency to fail.
func (p *LocalEmbeddingsProvider) Available() bool {
	return true
}

// RateLimit returns a disabled rate limit; local computation is not throttled.
func (p *LocalEmbeddingsProvider) RateLimit() providers.RateLimitConfig {
	return providers.RateLimitConfig{
		RequestsPerMinute: 0,
		TokensPerMinute:   0,
		BurstSize:         0,
	}
}

// ModelName returns the name of the embedding model.
func (p *LocalEmbeddingsProvider) ModelName() string {
	return p.model
}

// Dimensions returns the dimensionality of the embedding vectors.
func (p *LocalEmbeddingsProvider) Dimensions() int {
	return p.dimensions
}

// MaxTokens returns the maximum number of tokens per request.
func (p *LocalEmbeddingsProvider) MaxTokens() int {
	return localMaxTokens
}

// Embed generates an embedding for the given content on a worker goroutine.
func (p *LocalEmbeddingsProvider) Embed(ctx context.Context, req providers.EmbeddingsRequest) (*providers.EmbeddingsResult, error) {
	vec, err := p.pool.run(ctx, func() []float32 {
		return hashEmbed(req.Content, p.dimensions)
	})
	if err != nil {
		return nil, err
	}

	return &providers.EmbeddingsResult{
		Embedding:    vec,
		ProviderName: p.Name(),
		ModelName:    p.model,
		Dimensions:   len(vec),
		TokensUsed:   countTokens(req.Content),
		GeneratedAt:  time.Now(),
		Version:      embeddingsVersion,
	}, nil
}

// EmbedBatch generates embeddings for multiple texts, one worker-pool job per text.
func (p *LocalEmbeddingsProvider) EmbedBatch(ctx context.Context, texts []string) ([]providers.EmbeddingsBatchResult, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([]providers.EmbeddingsBatchResult, len(texts))
	var wg sync.WaitGroup
	var firstErr error
	var mu sync.Mutex

	for i, text := range texts {
		wg.Add(1)
		i, text := i, text
		go func() {
			defer wg.Done()
			vec, err := p.pool.run(ctx, func() []float32 {
				return hashEmbed(text, p.dimensions)
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			results[i] = providers.EmbeddingsBatchResult{
				Index:      i,
				Embedding:  vec,
				TokensUsed: countTokens(text),
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// hashEmbed builds a fixed-width vector by hashing each token into a bucket
// and accumulating a signed count, then L2-normalizing the result. This is
// CPU-bound but deterministic and dependency-free, unlike a loaded
// sentence-embedding model; it runs entirely off the worker pool so the
// caller's goroutine is never tied up computing it.
func hashEmbed(text string, dims int) []float32 {
	vec := make([]float64, dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		idx := h.Sum32() % uint32(dims)

		sign := fnv.New32a()
		sign.Write([]byte(tok + "#sign"))
		if sign.Sum32()%2 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dims)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func countTokens(text string) int {
	return len(strings.Fields(text))
}
