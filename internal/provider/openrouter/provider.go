// Package openrouter normalizes the public OpenRouter model catalog. Unlike
// Bedrock there is a single document and prices arrive pre-labelled, so the
// work here is decimal-string parsing and modality mapping rather than
// line-item classification.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/observability"
)

const providerDisplayName = "OpenRouter"

// Catalog document shape. Prices are decimal strings in USD per token.
type modelsResponse struct {
	Data []catalogModel `json:"data"`
}

type catalogModel struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ContextLength *int         `json:"context_length"`
	Architecture  architecture `json:"architecture"`
	Pricing       modelPricing `json:"pricing"`
	TopProvider   topProvider  `json:"top_provider"`
}

type architecture struct {
	InputModalities  []string `json:"input_modalities"`
	OutputModalities []string `json:"output_modalities"`
}

type modelPricing struct {
	Prompt            string `json:"prompt"`
	Completion        string `json:"completion"`
	InputCacheRead    string `json:"input_cache_read"`
	InputCacheWrite   string `json:"input_cache_write"`
	InternalReasoning string `json:"internal_reasoning"`
	Image             string `json:"image"`
}

type topProvider struct {
	MaxCompletionTokens *int `json:"max_completion_tokens"`
}

// Provider implements the domain.Provider interface for OpenRouter.
type Provider struct {
	config Config
	client *http.Client
}

// NewProvider creates a new OpenRouter provider.
func NewProvider(config Config) *Provider {
	return &Provider{
		config: config,
		client: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return domain.ProviderOpenRouter
}

// DisplayName returns the human-readable provider name.
func (p *Provider) DisplayName() string {
	return providerDisplayName
}

// Fetch downloads the model catalog and returns one normalized record per
// model. Entries without a display name or with unparsable core prices are
// skipped; duplicates by derived identity keep the first occurrence.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PricingRecord, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("fetching OpenRouter catalog")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.ModelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(body))
	}

	var catalog modelsResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&catalog); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode openrouter catalog: %w", decodeErr)
	}

	now := time.Now()
	seen := make(map[string]bool, len(catalog.Data))
	records := make([]domain.PricingRecord, 0, len(catalog.Data))

	for _, model := range catalog.Data {
		rec, ok := normalize(model, now)
		if !ok {
			continue
		}
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}

	logger.Debug("OpenRouter catalog normalized", observability.Int("models", len(records)))
	return records, nil
}

// normalize converts one catalog entry into a canonical record. The second
// return value is false for entries that should be skipped.
func normalize(model catalogModel, now time.Time) (domain.PricingRecord, bool) {
	if model.Name == "" {
		return domain.PricingRecord{}, false
	}

	modelID := domain.Slugify(model.Name)
	rec := domain.PricingRecord{
		ID:              domain.RecordID(domain.ProviderOpenRouter, modelID),
		Provider:        domain.ProviderOpenRouter,
		ModelID:         modelID,
		ModelName:       model.Name,
		Pricing:         parsePricing(model.Pricing),
		Capabilities:    detectCapabilities(model),
		ContextLength:   model.ContextLength,
		MaxOutputTokens: model.TopProvider.MaxCompletionTokens,
		Source:          domain.SourceAPI,
		LastUpdated:     now,
	}
	return rec, true
}

// parsePricing maps the catalog's labelled decimal strings onto the
// canonical pricing fields. Core prompt/completion prices keep zero values
// (free models exist); auxiliary fields are only set when priced, since the
// catalog reports "0" for dimensions a model simply does not bill.
func parsePricing(raw modelPricing) domain.Pricing {
	var pricing domain.Pricing
	setPrice(&pricing.Input, raw.Prompt, true)
	setPrice(&pricing.Output, raw.Completion, true)
	setPrice(&pricing.CachedInput, raw.InputCacheRead, false)
	setPrice(&pricing.CachedWrite, raw.InputCacheWrite, false)
	setPrice(&pricing.Reasoning, raw.InternalReasoning, false)
	setPrice(&pricing.ImageInput, raw.Image, false)
	return pricing
}

func setPrice(field **float64, raw string, keepZero bool) {
	if raw == "" {
		return
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return
	}
	if price == 0 && !keepZero {
		return
	}
	v := price
	*field = &v
}

// detectCapabilities maps declared modalities to capability tags. Embedding
// models collapse to {embedding}; the default is {text}.
func detectCapabilities(model catalogModel) []domain.Capability {
	if strings.Contains(strings.ToLower(model.Name), "embed") ||
		strings.Contains(strings.ToLower(model.ID), "embed") {
		return []domain.Capability{domain.CapabilityEmbedding}
	}

	capabilities := []domain.Capability{domain.CapabilityText}
	for _, modality := range model.Architecture.InputModalities {
		switch modality {
		case "image":
			capabilities = appendCapability(capabilities, domain.CapabilityVision)
		case "audio":
			capabilities = appendCapability(capabilities, domain.CapabilityAudio)
		}
	}
	for _, modality := range model.Architecture.OutputModalities {
		if modality == "image" {
			capabilities = appendCapability(capabilities, domain.CapabilityImageGeneration)
		}
	}
	return capabilities
}

func appendCapability(capabilities []domain.Capability, c domain.Capability) []domain.Capability {
	for _, have := range capabilities {
		if have == c {
			return capabilities
		}
	}
	return append(capabilities, c)
}
