package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/observability"
	"go.uber.org/zap"
)

// Handler handles HTTP requests.
type Handler struct {
	pricing *domain.PricingService
	fetcher *domain.FetchService
	costs   *domain.CostCalculator
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	pricing *domain.PricingService,
	fetcher *domain.FetchService,
	costs *domain.CostCalculator,
) *Handler {
	return &Handler{
		pricing: pricing,
		fetcher: fetcher,
		costs:   costs,
	}
}

// HandleModels lists records with optional filters and sorting.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	query := domain.ListQuery{
		Provider:   params.Get("provider"),
		Capability: domain.Capability(params.Get("capability")),
		Search:     params.Get("search"),
		SortBy:     params.Get("sort_by"),
		SortOrder:  params.Get("sort_order"),
	}

	records := h.pricing.GetAll(r.Context(), query)
	writeJSON(w, http.StatusOK, records)
}

// HandleModelByID returns the single record whose ID follows /api/models/.
func (h *Handler) HandleModelByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/models/")
	if id == "" {
		http.Error(w, "model id is required", http.StatusBadRequest)
		return
	}

	record, err := h.pricing.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "model not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// HandleProviders lists provider summaries with live record counts.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.pricing.GetProviders(r.Context()))
}

// HandleStats returns aggregate store statistics.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.pricing.GetStats(r.Context()))
}

// HandleRefresh triggers a refresh, either for a single provider (?provider=)
// or for all of them.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := observability.FromContext(ctx)

	providerName := r.URL.Query().Get("provider")
	if providerName != "" {
		ctx = observability.WithProvider(ctx, providerName)
	}

	var (
		summary *domain.RefreshSummary
		err     error
	)
	if providerName != "" {
		summary, err = h.fetcher.RefreshProvider(ctx, providerName)
	} else {
		summary, err = h.fetcher.RefreshAll(ctx)
	}

	if err != nil {
		logger.Error("refresh failed", zap.Error(err))
		if errors.Is(err, domain.ErrUnknownProvider) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	logger.Info("refresh succeeded",
		zap.Int("models", summary.ModelsCount),
		zap.Float64("elapsed_seconds", summary.ElapsedSeconds),
	)
	writeJSON(w, http.StatusOK, summary)
}

// HandleEstimate projects the USD cost of a token usage for one model.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	id := params.Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	inputTokens, err := parseTokenCount(params.Get("input_tokens"))
	if err != nil {
		http.Error(w, "invalid input_tokens", http.StatusBadRequest)
		return
	}
	outputTokens, err := parseTokenCount(params.Get("output_tokens"))
	if err != nil {
		http.Error(w, "invalid output_tokens", http.StatusBadRequest)
		return
	}

	estimate, err := h.costs.Estimate(r.Context(), id, inputTokens, outputTokens)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "model not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, estimate)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.pricing.GetStats(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"models_count": stats.TotalModels,
		"last_refresh": stats.LastRefresh,
	})
}

func parseTokenCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid token count")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}
