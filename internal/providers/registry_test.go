package providers

import (
	"context"
	"testing"
)

// mockEmbeddingsProvider implements EmbeddingsProvider for testing.
type mockEmbeddingsProvider struct {
	name      string
	available bool
}

func (p *mockEmbeddingsProvider) Name() string               { return p.name }
func (p *mockEmbeddingsProvider) Type() ProviderType         { return ProviderTypeEmbeddings }
func (p *mockEmbeddingsProvider) Available() bool            { return p.available }
func (p *mockEmbeddingsProvider) RateLimit() RateLimitConfig { return RateLimitConfig{} }
func (p *mockEmbeddingsProvider) ModelName() string          { return "mock-model" }
func (p *mockEmbeddingsProvider) Dimensions() int            { return 1536 }
func (p *mockEmbeddingsProvider) MaxTokens() int             { return 8000 }
func (p *mockEmbeddingsProvider) Embed(ctx context.Context, req EmbeddingsRequest) (*EmbeddingsResult, error) {
	return nil, nil
}
func (p *mockEmbeddingsProvider) EmbedBatch(ctx context.Context, texts []string) ([]EmbeddingsBatchResult, error) {
	return nil, nil
}

func TestRegistry_RegisterEmbeddings(t *testing.T) {
	r := NewRegistry()

	p := &mockEmbeddingsProvider{name: "test", available: true}
	err := r.RegisterEmbeddings(p)
	if err != nil {
		t.Fatalf("RegisterEmbeddings failed: %v", err)
	}

	err = r.RegisterEmbeddings(p)
	if err != ErrProviderExists {
		t.Errorf("expected ErrProviderExists, got %v", err)
	}
}

func TestRegistry_GetEmbeddings(t *testing.T) {
	r := NewRegistry()

	p := &mockEmbeddingsProvider{name: "test", available: true}
	_ = r.RegisterEmbeddings(p)

	got, err := r.GetEmbeddings("test")
	if err != nil {
		t.Fatalf("GetEmbeddings failed: %v", err)
	}
	if got.Name() != "test" {
		t.Errorf("expected name 'test', got %s", got.Name())
	}

	_, err = r.GetEmbeddings("nonexistent")
	if err != ErrProviderNotFound {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestRegistry_DefaultEmbeddings(t *testing.T) {
	r := NewRegistry()

	_, err := r.DefaultEmbeddings()
	if err != ErrNoAvailableProvider {
		t.Errorf("expected ErrNoAvailableProvider, got %v", err)
	}

	p := &mockEmbeddingsProvider{name: "test", available: true}
	_ = r.RegisterEmbeddings(p)

	got, err := r.DefaultEmbeddings()
	if err != nil {
		t.Fatalf("DefaultEmbeddings failed: %v", err)
	}
	if got.Name() != "test" {
		t.Errorf("expected name 'test', got %s", got.Name())
	}
}

func TestRegistry_SetDefaultEmbeddings(t *testing.T) {
	r := NewRegistry()

	p1 := &mockEmbeddingsProvider{name: "provider1", available: true}
	p2 := &mockEmbeddingsProvider{name: "provider2", available: true}
	_ = r.RegisterEmbeddings(p1)
	_ = r.RegisterEmbeddings(p2)

	err := r.SetDefaultEmbeddings("provider2")
	if err != nil {
		t.Fatalf("SetDefaultEmbeddings failed: %v", err)
	}

	got, _ := r.DefaultEmbeddings()
	if got.Name() != "provider2" {
		t.Errorf("expected default 'provider2', got %s", got.Name())
	}

	err = r.SetDefaultEmbeddings("nonexistent")
	if err != ErrProviderNotFound {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestRegistry_ListEmbeddings(t *testing.T) {
	r := NewRegistry()

	p1 := &mockEmbeddingsProvider{name: "provider1", available: true}
	p2 := &mockEmbeddingsProvider{name: "provider2", available: false}
	_ = r.RegisterEmbeddings(p1)
	_ = r.RegisterEmbeddings(p2)

	all := r.ListEmbeddings()
	if len(all) != 2 {
		t.Errorf("expected 2 providers, got %d", len(all))
	}

	available := r.AvailableEmbeddings()
	if len(available) != 1 {
		t.Errorf("expected 1 available provider, got %d", len(available))
	}
}
