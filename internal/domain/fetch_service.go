package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/pricelens/internal/observability"
)

const statusOK = "ok"

// FetchService orchestrates refresh cycles: fan out fetches across the
// registry, isolate per-provider failures, and commit successful batches
// into the store. One provider's transport error never aborts the others.
type FetchService struct {
	registry  ProviderRegistry
	store     *InMemoryStore
	snapshots SnapshotCache
	events    EventPublisher
}

// NewFetchService creates a new fetch orchestrator (DI constructor).
// The snapshot cache and event publisher are optional; nil disables them.
func NewFetchService(
	registry ProviderRegistry,
	store *InMemoryStore,
	snapshots SnapshotCache,
	events EventPublisher,
) *FetchService {
	return &FetchService{
		registry:  registry,
		store:     store,
		snapshots: snapshots,
		events:    events,
	}
}

func (f *FetchService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if f.events == nil {
		return
	}
	f.events.Publish(ctx, eventType, data)
}

type fetchResult struct {
	providerName string
	records      []PricingRecord
	err          error
}

// RefreshAll fetches from every registered provider concurrently. Failed
// providers are logged and skipped; each successful provider's batch is
// committed all-or-nothing. The returned summary counts the records held in
// the store after the cycle.
func (f *FetchService) RefreshAll(ctx context.Context) (*RefreshSummary, error) {
	logger := observability.FromContext(ctx)
	logger.Info("starting full refresh")
	start := time.Now()

	providers := f.registry.All(ctx)
	results := make(chan fetchResult, len(providers))

	var wg sync.WaitGroup
	for _, provider := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			records, err := p.Fetch(ctx)
			results <- fetchResult{providerName: p.Name(), records: records, err: err}
		}(provider)
	}
	wg.Wait()
	close(results)

	// Join before writing: the store swap is the sole mutation point.
	for result := range results {
		if result.err != nil {
			logger.Error("provider fetch failed",
				observability.String("provider", result.providerName),
				observability.Error(result.err),
			)
			f.publish(ctx, "provider.refresh_failed", map[string]interface{}{
				"provider": result.providerName,
				"error":    result.err.Error(),
			})
			continue
		}
		f.commit(ctx, result.providerName, result.records)
	}

	elapsed := time.Since(start).Seconds()
	total := f.store.Count()
	logger.Info("refresh complete",
		observability.Int("models", total),
		observability.Float64("elapsed_seconds", elapsed),
	)

	f.publish(ctx, "refresh.completed", map[string]interface{}{
		"models":          total,
		"elapsed_seconds": elapsed,
	})

	return &RefreshSummary{
		Status:         statusOK,
		ModelsCount:    total,
		ElapsedSeconds: elapsed,
		Timestamp:      time.Now(),
	}, nil
}

// RefreshProvider fetches and replaces a single provider's subset. Unknown
// names fail with ErrUnknownProvider; transport failures propagate.
func (f *FetchService) RefreshProvider(ctx context.Context, providerName string) (*RefreshSummary, error) {
	provider, err := f.registry.Get(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}

	logger := observability.FromContext(ctx)
	logger.Info("refreshing provider", observability.String("provider", providerName))
	start := time.Now()

	records, err := provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s failed: %w", providerName, err)
	}

	f.commit(ctx, providerName, records)

	elapsed := time.Since(start).Seconds()
	logger.Info("provider refresh complete",
		observability.String("provider", providerName),
		observability.Int("models", len(records)),
		observability.Float64("elapsed_seconds", elapsed),
	)

	return &RefreshSummary{
		Status:         statusOK,
		Provider:       providerName,
		ModelsCount:    len(records),
		ElapsedSeconds: elapsed,
		Timestamp:      time.Now(),
	}, nil
}

// WarmStart loads the last persisted snapshot for each registered provider
// so queries can be served before the first live refresh completes. A cache
// miss is not an error.
func (f *FetchService) WarmStart(ctx context.Context) {
	if f.snapshots == nil {
		return
	}

	logger := observability.FromContext(ctx)
	for _, provider := range f.registry.All(ctx) {
		records, err := f.snapshots.Load(ctx, provider.Name())
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				logger.Warn("snapshot load failed",
					observability.String("provider", provider.Name()),
					observability.Error(err),
				)
			}
			continue
		}
		f.store.ReplaceProvider(provider.Name(), records)
		logger.Info("store warmed from snapshot",
			observability.String("provider", provider.Name()),
			observability.Int("models", len(records)),
		)
	}
}

// commit publishes one provider's batch and persists the snapshot.
func (f *FetchService) commit(ctx context.Context, providerName string, records []PricingRecord) {
	f.store.ReplaceProvider(providerName, records)

	if f.snapshots == nil {
		return
	}
	if err := f.snapshots.Save(ctx, providerName, records); err != nil {
		observability.FromContext(ctx).Warn("snapshot save failed",
			observability.String("provider", providerName),
			observability.Error(err),
		)
	}
}
