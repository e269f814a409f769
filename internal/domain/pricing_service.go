package domain

import (
	"context"
	"sort"
	"strings"
)

// PricingService is the read path over the unified store: filter, sort,
// lookup, and derived statistics.
type PricingService struct {
	registry ProviderRegistry
	store    *InMemoryStore
}

// NewPricingService creates a new query service (DI constructor).
func NewPricingService(registry ProviderRegistry, store *InMemoryStore) *PricingService {
	return &PricingService{
		registry: registry,
		store:    store,
	}
}

// GetAll returns the records matching the query's filters, sorted by the
// requested field with a stable ID tie-break so ordering is deterministic.
func (p *PricingService) GetAll(_ context.Context, query ListQuery) []PricingRecord {
	records := p.store.All()

	filtered := records[:0]
	for _, rec := range records {
		if query.Provider != "" && rec.Provider != query.Provider {
			continue
		}
		if query.Capability != "" && !rec.HasCapability(query.Capability) {
			continue
		}
		if query.Search != "" &&
			!strings.Contains(strings.ToLower(rec.ModelName), strings.ToLower(query.Search)) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sortRecords(filtered, query.SortBy, query.SortOrder)
	return filtered
}

// GetByID returns the single matching record or ErrNotFound.
func (p *PricingService) GetByID(_ context.Context, id string) (PricingRecord, error) {
	return p.store.Get(id)
}

// GetProviders returns one summary per registered provider, in registration
// order, with a live count of its current records.
func (p *PricingService) GetProviders(ctx context.Context) []ProviderSummary {
	counts := p.store.CountByProvider()

	providers := p.registry.All(ctx)
	summaries := make([]ProviderSummary, 0, len(providers))
	for _, provider := range providers {
		summaries = append(summaries, ProviderSummary{
			ID:         provider.Name(),
			Name:       provider.DisplayName(),
			ModelCount: counts[provider.Name()],
		})
	}
	return summaries
}

// GetStats returns aggregate counts and the last successful refresh time.
func (p *PricingService) GetStats(ctx context.Context) Stats {
	stats := Stats{
		TotalModels: p.store.Count(),
		Providers:   len(p.registry.All(ctx)),
	}
	if last := p.store.LastRefresh(); !last.IsZero() {
		stats.LastRefresh = &last
	}
	return stats
}

// priceField extracts the sortable price field named by key, or nil when the
// record does not carry it.
func priceField(rec *PricingRecord, key string) *float64 {
	switch key {
	case SortCostInput:
		return rec.Pricing.Input
	case SortCostOutput:
		return rec.Pricing.Output
	case SortCachedInput:
		return rec.Pricing.CachedInput
	case SortCachedWrite:
		return rec.Pricing.CachedWrite
	case SortReasoning:
		return rec.Pricing.Reasoning
	case SortImageInput:
		return rec.Pricing.ImageInput
	case SortEmbedding:
		return rec.Pricing.Embedding
	default:
		return nil
	}
}

func isPriceSort(key string) bool {
	switch key {
	case SortCostInput, SortCostOutput, SortCachedInput, SortCachedWrite,
		SortReasoning, SortImageInput, SortEmbedding:
		return true
	default:
		return false
	}
}

// sortRecords orders records by the named field. Records missing the sort
// field go last regardless of direction; ties break on ID ascending.
func sortRecords(records []PricingRecord, sortBy, order string) {
	if sortBy == "" {
		sortBy = SortByModelName
	}
	desc := order == SortOrderDesc

	sort.Slice(records, func(i, j int) bool {
		a, b := &records[i], &records[j]

		if isPriceSort(sortBy) {
			av, bv := priceField(a, sortBy), priceField(b, sortBy)
			switch {
			case av == nil && bv == nil:
				return a.ID < b.ID
			case av == nil:
				return false
			case bv == nil:
				return true
			case *av != *bv:
				if desc {
					return *av > *bv
				}
				return *av < *bv
			default:
				return a.ID < b.ID
			}
		}

		// SortByModelName, and the fallback for unrecognized keys.
		an, bn := strings.ToLower(a.ModelName), strings.ToLower(b.ModelName)
		if an != bn {
			if desc {
				return an > bn
			}
			return an < bn
		}
		return a.ID < b.ID
	})
}
