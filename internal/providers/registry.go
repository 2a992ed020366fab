package providers

import (
	"errors"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderExists is returned when trying to register a duplicate provider.
	ErrProviderExists = errors.New("provider already exists")

	// ErrNoAvailableProvider is returned when no provider is available.
	ErrNoAvailableProvider = errors.New("no available provider")
)

// Registry manages embeddings provider registration and lookup. A single
// notes vault only ever uses one embeddings provider at a time (selected
// by config), but the registry still supports switching it at runtime
// (e.g. the CLI's provider test/list subcommands) without restarting.
type Registry struct {
	mu                  sync.RWMutex
	embeddingsProviders map[string]EmbeddingsProvider
	defaultEmbeddings   string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		embeddingsProviders: make(map[string]EmbeddingsProvider),
	}
}

// RegisterEmbeddings registers an embeddings provider.
func (r *Registry) RegisterEmbeddings(p EmbeddingsProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.embeddingsProviders[name]; exists {
		return ErrProviderExists
	}

	r.embeddingsProviders[name] = p

	if r.defaultEmbeddings == "" && p.Available() {
		r.defaultEmbeddings = name
	}

	return nil
}

// GetEmbeddings returns an embeddings provider by name.
func (r *Registry) GetEmbeddings(name string) (EmbeddingsProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.embeddingsProviders[name]
	if !exists {
		return nil, ErrProviderNotFound
	}

	return p, nil
}

// DefaultEmbeddings returns the default embeddings provider.
func (r *Registry) DefaultEmbeddings() (EmbeddingsProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultEmbeddings == "" {
		for _, p := range r.embeddingsProviders {
			if p.Available() {
				return p, nil
			}
		}
		return nil, ErrNoAvailableProvider
	}

	return r.embeddingsProviders[r.defaultEmbeddings], nil
}

// SetDefaultEmbeddings sets the default embeddings provider by name.
func (r *Registry) SetDefaultEmbeddings(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.embeddingsProviders[name]; !exists {
		return ErrProviderNotFound
	}

	r.defaultEmbeddings = name
	return nil
}

// ListEmbeddings returns all registered embeddings providers.
func (r *Registry) ListEmbeddings() []EmbeddingsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]EmbeddingsProvider, 0, len(r.embeddingsProviders))
	for _, p := range r.embeddingsProviders {
		providers = append(providers, p)
	}
	return providers
}

// AvailableEmbeddings returns all available embeddings providers.
func (r *Registry) AvailableEmbeddings() []EmbeddingsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var providers []EmbeddingsProvider
	for _, p := range r.embeddingsProviders {
		if p.Available() {
			providers = append(providers, p)
		}
	}
	return providers
}
