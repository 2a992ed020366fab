package embeddings

import (
	"context"
	"math"
	"testing"

	"github.com/leefowlercu/pkmgraph/internal/providers"
)

func TestLocalEmbeddingsProvider_InterfaceCompliance(t *testing.T) {
	p := NewLocalEmbeddingsProvider()
	var _ providers.EmbeddingsProvider = p
}

func TestLocalEmbeddingsProvider_Embed_IsDeterministicAndNormalized(t *testing.T) {
	p := NewLocalEmbeddingsProvider(WithLocalDimensions(32))

	r1, err := p.Embed(context.Background(), providers.EmbeddingsRequest{Content: "graph notes about markdown"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	r2, err := p.Embed(context.Background(), providers.EmbeddingsRequest{Content: "graph notes about markdown"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(r1.Embedding) != 32 {
		t.Fatalf("expected 32 dims, got %d", len(r1.Embedding))
	}
	for i := range r1.Embedding {
		if r1.Embedding[i] != r2.Embedding[i] {
			t.Fatalf("expected deterministic embedding, mismatch at %d", i)
		}
	}

	var norm float64
	for _, v := range r1.Embedding {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("expected unit-normalized vector, got norm %f", norm)
	}
}

func TestLocalEmbeddingsProvider_EmbedBatch_MatchesIndividualEmbed(t *testing.T) {
	p := NewLocalEmbeddingsProvider(WithLocalDimensions(16))

	texts := []string{"first note", "second note", "third note"}
	batch, err := p.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("expected %d results, got %d", len(texts), len(batch))
	}

	for i, text := range texts {
		single, err := p.Embed(context.Background(), providers.EmbeddingsRequest{Content: text})
		if err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
		if batch[i].Index != i {
			t.Errorf("expected index %d, got %d", i, batch[i].Index)
		}
		for j := range single.Embedding {
			if single.Embedding[j] != batch[i].Embedding[j] {
				t.Fatalf("batch embedding diverges from single embedding at text %q", text)
			}
		}
	}
}

func TestLocalEmbeddingsProvider_EmbedBatch_Empty(t *testing.T) {
	p := NewLocalEmbeddingsProvider()

	results, err := p.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestLocalEmbeddingsProvider_AlwaysAvailable(t *testing.T) {
	p := NewLocalEmbeddingsProvider()
	if !p.Available() {
		t.Error("expected local provider to always be available")
	}
}
