package domain

import "context"

// Provider fetches and normalizes pricing data from one external source.
type Provider interface {
	// Fetch retrieves the provider's raw catalog(s) and returns one
	// normalized record per model, keyed by derived model identity.
	// Transport failures propagate; single malformed line-items are
	// skipped, not escalated.
	Fetch(ctx context.Context) ([]PricingRecord, error)

	// Name returns the provider identifier used in record IDs.
	Name() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry. Duplicate registration
	// is a programming error and fails.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// All returns every registered provider in registration order.
	All(ctx context.Context) []Provider
}

// EventPublisher publishes refresh lifecycle events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// SnapshotCache persists per-provider record sets so the store can be
// warmed before the first live refresh.
type SnapshotCache interface {
	// Save replaces the cached snapshot for one provider.
	Save(ctx context.Context, providerName string, records []PricingRecord) error

	// Load returns the cached snapshot for one provider, or ErrCacheMiss.
	Load(ctx context.Context, providerName string) ([]PricingRecord, error)
}
