package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/provider/registry"
)

func seededService(t *testing.T) (*domain.PricingService, *domain.InMemoryStore) {
	t.Helper()
	ctx := context.Background()

	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(ctx, &stubProvider{name: "bedrock", displayName: "AWS Bedrock"}))
	require.NoError(t, reg.Register(ctx, &stubProvider{name: "openai", displayName: "OpenAI"}))

	cheap := record("bedrock", "Cheap Model")
	cheap.Pricing.Input = price(0.001)
	expensive := record("bedrock", "Pricey Model")
	expensive.Pricing.Input = price(0.01)
	visual := record("bedrock", "Vision Model")
	visual.Pricing.Input = price(0.005)
	visual.Capabilities = []domain.Capability{domain.CapabilityText, domain.CapabilityVision}
	unpriced := record("openai", "Mystery Model")

	store := domain.NewInMemoryStore()
	store.ReplaceProvider("bedrock", []domain.PricingRecord{cheap, expensive, visual})
	store.ReplaceProvider("openai", []domain.PricingRecord{unpriced})

	return domain.NewPricingService(reg, store), store
}

func TestPricingService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("should return everything without filters", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{})
		require.Len(t, records, 4)
	})

	t.Run("should filter by provider", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{Provider: "bedrock"})
		require.Len(t, records, 3)
		for _, rec := range records {
			require.Equal(t, "bedrock", rec.Provider)
		}
	})

	t.Run("should filter by capability", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{Capability: domain.CapabilityVision})
		require.Len(t, records, 1)
		require.Equal(t, "Vision Model", records[0].ModelName)
	})

	t.Run("should filter by case-insensitive name substring", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{Search: "PRICEY"})
		require.Len(t, records, 1)
		require.Equal(t, "Pricey Model", records[0].ModelName)
	})

	t.Run("should combine filters independently", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{Provider: "openai", Search: "model"})
		require.Len(t, records, 1)
		require.Equal(t, "Mystery Model", records[0].ModelName)
	})

	t.Run("should sort by model name by default", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{})
		require.Equal(t, "Cheap Model", records[0].ModelName)
		require.Equal(t, "Mystery Model", records[1].ModelName)
		require.Equal(t, "Pricey Model", records[2].ModelName)
		require.Equal(t, "Vision Model", records[3].ModelName)
	})

	t.Run("should honor an explicit model name sort", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{
			SortBy:    domain.SortByModelName,
			SortOrder: domain.SortOrderDesc,
		})
		require.Equal(t, "Vision Model", records[0].ModelName)
		require.Equal(t, "Cheap Model", records[3].ModelName)
	})

	t.Run("should sort by price descending with unpriced last", func(t *testing.T) {
		svc, _ := seededService(t)

		records := svc.GetAll(ctx, domain.ListQuery{
			SortBy:    domain.SortCostInput,
			SortOrder: domain.SortOrderDesc,
		})
		require.Len(t, records, 4)
		require.Equal(t, 0.01, *records[0].Pricing.Input)
		require.Equal(t, 0.005, *records[1].Pricing.Input)
		require.Equal(t, 0.001, *records[2].Pricing.Input)
		require.Nil(t, records[3].Pricing.Input)
	})

	t.Run("should break price ties on id ascending", func(t *testing.T) {
		ctx := context.Background()
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, &stubProvider{name: "x"}))

		a := record("x", "B Model")
		a.Pricing.Input = price(0.002)
		b := record("x", "A Model")
		b.Pricing.Input = price(0.002)

		store := domain.NewInMemoryStore()
		store.ReplaceProvider("x", []domain.PricingRecord{a, b})
		svc := domain.NewPricingService(reg, store)

		records := svc.GetAll(ctx, domain.ListQuery{
			SortBy:    domain.SortCostInput,
			SortOrder: domain.SortOrderDesc,
		})
		require.Equal(t, "x:a-model", records[0].ID)
		require.Equal(t, "x:b-model", records[1].ID)
	})
}

func TestPricingService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the matching record", func(t *testing.T) {
		svc, _ := seededService(t)

		rec, err := svc.GetByID(ctx, "bedrock:cheap-model")
		require.NoError(t, err)
		require.Equal(t, "Cheap Model", rec.ModelName)
	})

	t.Run("should return ErrNotFound for a miss", func(t *testing.T) {
		svc, _ := seededService(t)

		_, err := svc.GetByID(ctx, "bedrock:ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPricingService_GetProviders(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	summaries := svc.GetProviders(ctx)
	require.Len(t, summaries, 2)

	// Registration order, with live counts.
	require.Equal(t, "bedrock", summaries[0].ID)
	require.Equal(t, "AWS Bedrock", summaries[0].Name)
	require.Equal(t, 3, summaries[0].ModelCount)
	require.Equal(t, "openai", summaries[1].ID)
	require.Equal(t, 1, summaries[1].ModelCount)
}

func TestPricingService_GetStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	stats := svc.GetStats(ctx)
	require.Equal(t, 4, stats.TotalModels)
	require.Equal(t, 2, stats.Providers)
	require.NotNil(t, stats.LastRefresh)
}
