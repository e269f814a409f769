package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidbz/pricelens/internal/domain"
)

// Registry implements the domain.ProviderRegistry interface. Iteration
// order is registration order, so provider listings are stable across runs.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]domain.Provider
	order     []string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:        sync.RWMutex{},
		providers: make(map[string]domain.Provider),
		order:     nil,
	}
}

// Register adds a provider to the registry. Registering the same name twice
// is a programming error and fails.
func (r *Registry) Register(_ context.Context, provider domain.Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, name)
	}

	r.providers[name] = provider
	r.order = append(r.order, name)

	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(_ context.Context, providerName string) (domain.Provider, error) {
	if providerName == "" {
		return nil, errors.New("provider name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[providerName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, providerName)
	}

	return provider, nil
}

// All returns every registered provider in registration order.
func (r *Registry) All(_ context.Context) []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]domain.Provider, 0, len(r.order))
	for _, name := range r.order {
		providers = append(providers, r.providers[name])
	}

	return providers
}
