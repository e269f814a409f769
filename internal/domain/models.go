package domain

import "time"

// Known provider identifiers. The set is closed but extensible: adding a
// provider means adding a constant here and an implementation package.
const (
	ProviderBedrock    = "bedrock"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// Capability is a modality tag attached to a model.
type Capability string

const (
	CapabilityText            Capability = "text"
	CapabilityVision          Capability = "vision"
	CapabilityAudio           Capability = "audio"
	CapabilityEmbedding       Capability = "embedding"
	CapabilityImageGeneration Capability = "image_generation"
)

// RecordSource distinguishes live API fetches from curated data files.
type RecordSource string

const (
	SourceAPI    RecordSource = "api"
	SourceManual RecordSource = "manual"
)

// Pricing holds per-token USD prices. Every field is independently optional;
// nil means unknown, never zero.
type Pricing struct {
	Input       *float64 `json:"input,omitempty"`
	Output      *float64 `json:"output,omitempty"`
	CachedInput *float64 `json:"cached_input,omitempty"`
	CachedWrite *float64 `json:"cached_write,omitempty"`
	Reasoning   *float64 `json:"reasoning,omitempty"`
	ImageInput  *float64 `json:"image_input,omitempty"`
	Embedding   *float64 `json:"embedding,omitempty"`
}

// PricingRecord is the canonical, provider-agnostic price entry for one model.
type PricingRecord struct {
	ID              string       `json:"id"` // provider:model_id
	Provider        string       `json:"provider"`
	ModelID         string       `json:"model_id"`
	ModelName       string       `json:"model_name"`
	Pricing         Pricing      `json:"pricing"`
	BatchPricing    *Pricing     `json:"batch_pricing,omitempty"`
	Capabilities    []Capability `json:"capabilities"`
	ContextLength   *int         `json:"context_length,omitempty"`
	MaxOutputTokens *int         `json:"max_output_tokens,omitempty"`
	Source          RecordSource `json:"source"`
	LastUpdated     time.Time    `json:"last_updated"`
}

// HasCapability reports whether the record carries the given tag.
func (r *PricingRecord) HasCapability(c Capability) bool {
	for _, have := range r.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// ProviderSummary is one row of the providers listing.
type ProviderSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ModelCount int    `json:"model_count"`
}

// RefreshSummary reports the outcome of a refresh cycle.
type RefreshSummary struct {
	Status         string    `json:"status"`
	Provider       string    `json:"provider,omitempty"`
	ModelsCount    int       `json:"models_count"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stats reports aggregate store counts.
type Stats struct {
	TotalModels int        `json:"total_models"`
	Providers   int        `json:"providers"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
}

// ListQuery carries the optional filters and sort for GetAll. Zero values
// mean "no filter" / default sort.
type ListQuery struct {
	Provider   string
	Capability Capability
	Search     string
	SortBy     string
	SortOrder  string
}

// Sortable pricing fields accepted by ListQuery.SortBy, alongside the
// default "model_name".
const (
	SortByModelName = "model_name"
	SortCostInput   = "cost_input"
	SortCostOutput  = "cost_output"
	SortCachedInput = "cost_cached_input"
	SortCachedWrite = "cost_cached_write"
	SortReasoning   = "cost_reasoning"
	SortImageInput  = "cost_image_input"
	SortEmbedding   = "cost_embedding"
	SortOrderAsc    = "asc"
	SortOrderDesc   = "desc"
)
