package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelens/internal/domain"
	pricehttp "github.com/davidbz/pricelens/internal/http"
	"github.com/davidbz/pricelens/internal/provider/registry"
)

type stubProvider struct {
	name        string
	displayName string
	records     []domain.PricingRecord
	err         error
}

func (p *stubProvider) Name() string        { return p.name }
func (p *stubProvider) DisplayName() string { return p.displayName }

func (p *stubProvider) Fetch(_ context.Context) ([]domain.PricingRecord, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

func price(v float64) *float64 {
	return &v
}

func record(provider, modelName string) domain.PricingRecord {
	modelID := domain.Slugify(modelName)
	return domain.PricingRecord{
		ID:           domain.RecordID(provider, modelID),
		Provider:     provider,
		ModelID:      modelID,
		ModelName:    modelName,
		Pricing:      domain.Pricing{Input: price(0.000003), Output: price(0.000015)},
		Capabilities: []domain.Capability{domain.CapabilityText},
		Source:       domain.SourceAPI,
		LastUpdated:  time.Now(),
	}
}

type fixture struct {
	handler *pricehttp.Handler
	store   *domain.InMemoryStore
}

func newFixture(t *testing.T, providers ...domain.Provider) *fixture {
	t.Helper()

	reg := registry.NewRegistry()
	for _, p := range providers {
		require.NoError(t, reg.Register(context.Background(), p))
	}

	store := domain.NewInMemoryStore()
	for _, p := range providers {
		records, err := p.Fetch(context.Background())
		if err != nil {
			continue
		}
		store.ReplaceProvider(p.Name(), records)
	}

	pricing := domain.NewPricingService(reg, store)
	fetcher := domain.NewFetchService(reg, store, nil, nil)
	costs := domain.NewCostCalculator(store)
	return &fixture{
		handler: pricehttp.NewHandler(pricing, fetcher, costs),
		store:   store,
	}
}

func (f *fixture) get(t *testing.T, handlerFunc http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handlerFunc(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeRecords(t *testing.T, rec *httptest.ResponseRecorder) []domain.PricingRecord {
	t.Helper()
	var records []domain.PricingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	return records
}

func TestHandleModels(t *testing.T) {
	f := newFixture(t,
		&stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
			record("alpha", "Claude Model"),
			record("alpha", "Nova Model"),
		}},
		&stubProvider{name: "beta", displayName: "Beta", records: []domain.PricingRecord{
			record("beta", "GPT Model"),
		}},
	)

	t.Run("should list every record sorted by name", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleModels, "/api/models")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		records := decodeRecords(t, rec)
		require.Len(t, records, 3)
		require.Equal(t, "Claude Model", records[0].ModelName)
		require.Equal(t, "GPT Model", records[1].ModelName)
		require.Equal(t, "Nova Model", records[2].ModelName)
	})

	t.Run("should filter by provider", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleModels, "/api/models?provider=beta")
		require.Equal(t, http.StatusOK, rec.Code)

		records := decodeRecords(t, rec)
		require.Len(t, records, 1)
		require.Equal(t, "beta", records[0].Provider)
	})

	t.Run("should filter by search term case-insensitively", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleModels, "/api/models?search=CLAUDE")
		records := decodeRecords(t, rec)
		require.Len(t, records, 1)
		require.Equal(t, "Claude Model", records[0].ModelName)
	})

	t.Run("should sort by price descending", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleModels, "/api/models?sort_by=cost_input&sort_order=desc")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeRecords(t, rec), 3)
	})

	t.Run("should reject non-GET methods", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleModels(rec, httptest.NewRequest(http.MethodPost, "/api/models", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleModelByID(t *testing.T) {
	f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
		record("alpha", "Claude Model"),
	}})

	t.Run("should return the record for a known identifier", func(t *testing.T) {
		target := "/api/models/" + url.PathEscape("alpha:claude-model")
		rec := f.get(t, f.handler.HandleModelByID, target)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.PricingRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, "alpha:claude-model", got.ID)
	})

	t.Run("should return 404 for an unknown identifier", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleModelByID, "/api/models/alpha:missing")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleProviders(t *testing.T) {
	f := newFixture(t,
		&stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
			record("alpha", "Claude Model"),
		}},
		&stubProvider{name: "beta", displayName: "Beta"},
	)

	rec := f.get(t, f.handler.HandleProviders, "/api/providers")
	require.Equal(t, http.StatusOK, rec.Code)

	var providers []domain.ProviderSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &providers))
	require.Len(t, providers, 2)
	require.Equal(t, "alpha", providers[0].ID)
	require.Equal(t, "Alpha", providers[0].Name)
	require.Equal(t, 1, providers[0].ModelCount)
	require.Equal(t, 0, providers[1].ModelCount)
}

func TestHandleStats(t *testing.T) {
	f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
		record("alpha", "Claude Model"),
		record("alpha", "Nova Model"),
	}})

	rec := f.get(t, f.handler.HandleStats, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 2, stats.TotalModels)
	require.Equal(t, 1, stats.Providers)
}

func TestHandleRefresh(t *testing.T) {
	t.Run("should refresh every provider", func(t *testing.T) {
		f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
			record("alpha", "Claude Model"),
		}})

		rec := httptest.NewRecorder()
		f.handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var summary domain.RefreshSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		require.Equal(t, "ok", summary.Status)
		require.Equal(t, 1, summary.ModelsCount)
	})

	t.Run("should refresh a single provider", func(t *testing.T) {
		f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
			record("alpha", "Claude Model"),
		}})

		rec := httptest.NewRecorder()
		f.handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh?provider=alpha", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var summary domain.RefreshSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		require.Equal(t, "alpha", summary.Provider)
	})

	t.Run("should return 400 for an unknown provider", func(t *testing.T) {
		f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha"})

		rec := httptest.NewRecorder()
		f.handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh?provider=nope", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should return 502 when the provider fetch fails", func(t *testing.T) {
		f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", err: errors.New("upstream down")})

		rec := httptest.NewRecorder()
		f.handler.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh?provider=alpha", nil))
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("should reject non-POST methods", func(t *testing.T) {
		f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha"})

		rec := httptest.NewRecorder()
		f.handler.HandleRefresh(rec, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleEstimate(t *testing.T) {
	f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
		record("alpha", "Claude Model"),
	}})

	t.Run("should estimate the cost of a usage", func(t *testing.T) {
		target := fmt.Sprintf("/api/estimate?id=%s&input_tokens=1000&output_tokens=500",
			url.QueryEscape("alpha:claude-model"))
		rec := f.get(t, f.handler.HandleEstimate, target)
		require.Equal(t, http.StatusOK, rec.Code)

		var estimate domain.CostEstimate
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &estimate))
		require.InDelta(t, 0.003, estimate.InputCost, 1e-12)
		require.InDelta(t, 0.0075, estimate.OutputCost, 1e-12)
		require.InDelta(t, 0.0105, estimate.TotalCost, 1e-12)
	})

	t.Run("should require an id", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleEstimate, "/api/estimate?input_tokens=10")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject negative token counts", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleEstimate, "/api/estimate?id=alpha:claude-model&input_tokens=-5")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should return 404 for an unknown model", func(t *testing.T) {
		rec := f.get(t, f.handler.HandleEstimate, "/api/estimate?id=alpha:missing&input_tokens=10")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t, &stubProvider{name: "alpha", displayName: "Alpha", records: []domain.PricingRecord{
		record("alpha", "Claude Model"),
	}})

	rec := f.get(t, f.handler.HandleHealth, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, float64(1), body["models_count"])
}
