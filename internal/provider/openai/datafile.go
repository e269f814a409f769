package openai

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/davidbz/pricelens/internal/domain"
)

// ManualDataFile is the on-disk format for hand-curated pricing. Prices and
// capabilities use the same shape as the canonical record.
type ManualDataFile struct {
	Provider     string        `json:"provider"`
	SourceURL    string        `json:"source_url"`
	LastVerified string        `json:"last_verified"`
	Models       []ManualModel `json:"models"`
}

// ManualModel is one hand-entered model row.
type ManualModel struct {
	ModelID         string          `json:"model_id,omitempty"`
	ModelName       string          `json:"model_name"`
	Pricing         domain.Pricing  `json:"pricing"`
	BatchPricing    *domain.Pricing `json:"batch_pricing,omitempty"`
	Capabilities    []string        `json:"capabilities,omitempty"`
	ContextLength   *int            `json:"context_length,omitempty"`
	MaxOutputTokens *int            `json:"max_output_tokens,omitempty"`
}

// knownCapabilities guards hand-entered tags against typos.
var knownCapabilities = map[domain.Capability]bool{
	domain.CapabilityText:            true,
	domain.CapabilityVision:          true,
	domain.CapabilityAudio:           true,
	domain.CapabilityEmbedding:       true,
	domain.CapabilityImageGeneration: true,
}

// LoadDataFile reads and parses a manual data file.
func LoadDataFile(path string) (*ManualDataFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var file ManualDataFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}

	return &file, nil
}

// records converts the file's rows into canonical records. Rows without a
// model name are skipped; negative hand-entered prices are dropped field by
// field rather than failing the whole file.
func (f *ManualDataFile) records(providerName string, now time.Time) []domain.PricingRecord {
	out := make([]domain.PricingRecord, 0, len(f.Models))
	for _, model := range f.Models {
		if model.ModelName == "" {
			continue
		}

		modelID := model.ModelID
		if modelID == "" {
			modelID = domain.Slugify(model.ModelName)
		}

		pricing := model.Pricing
		sanitizePricing(&pricing)
		batch := model.BatchPricing
		if batch != nil {
			sanitized := *batch
			sanitizePricing(&sanitized)
			batch = &sanitized
		}

		out = append(out, domain.PricingRecord{
			ID:              domain.RecordID(providerName, modelID),
			Provider:        providerName,
			ModelID:         modelID,
			ModelName:       model.ModelName,
			Pricing:         pricing,
			BatchPricing:    batch,
			Capabilities:    parseCapabilities(model.Capabilities, model.ModelName),
			ContextLength:   model.ContextLength,
			MaxOutputTokens: model.MaxOutputTokens,
			Source:          domain.SourceManual,
			LastUpdated:     now,
		})
	}
	return out
}

func sanitizePricing(p *domain.Pricing) {
	for _, field := range []**float64{
		&p.Input, &p.Output, &p.CachedInput, &p.CachedWrite,
		&p.Reasoning, &p.ImageInput, &p.Embedding,
	} {
		if *field != nil && **field < 0 {
			*field = nil
		}
	}
}

// parseCapabilities validates hand-entered tags and applies the defaulting
// rules: never empty, {text} unless overridden, embedding-only names
// collapse to {embedding}.
func parseCapabilities(raw []string, modelName string) []domain.Capability {
	capabilities := make([]domain.Capability, 0, len(raw))
	for _, tag := range raw {
		c := domain.Capability(tag)
		if knownCapabilities[c] {
			capabilities = append(capabilities, c)
		}
	}

	if len(capabilities) == 0 {
		if containsFold(modelName, "embed") {
			return []domain.Capability{domain.CapabilityEmbedding}
		}
		return []domain.Capability{domain.CapabilityText}
	}
	return capabilities
}
