// Package bedrock normalizes the two public AWS Bedrock pricing catalogs
// (the general service catalog and the foundation-models catalog) into
// canonical pricing records. The two catalogs key their SKUs independently;
// records are reconciled by the model identity derived from each SKU's
// display label.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/observability"
)

const providerDisplayName = "AWS Bedrock"

// editionSuffix strips the fixed vendor-edition suffix from foundation-model
// service names, e.g. "Claude 3.5 Sonnet (Amazon Bedrock Edition)".
var editionSuffix = regexp.MustCompile(`\s*\(Amazon Bedrock Edition\)\s*$`)

// Capability keyword lists matched against the lowercased model name when a
// foundation-model record is first created.
var (
	visionKeywords = []string{"vision", "vl", "image", "stable"}
	audioKeywords  = []string{"audio", "sonic", "voxtral"}
)

// Provider implements the domain.Provider interface for AWS Bedrock.
type Provider struct {
	config Config
	client *http.Client
}

// NewProvider creates a new Bedrock provider.
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
	return domain.ProviderBedrock
}

// DisplayName returns the human-readable provider name.
func (p *Provider) DisplayName() string {
	return providerDisplayName
}

// Fetch retrieves both catalogs concurrently and merges them into one record
// set keyed by derived model identity. Either catalog failing to download is
// a transport failure for the whole provider; malformed single line-items
// are skipped.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PricingRecord, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("fetching Bedrock catalogs")

	var (
		wg                sync.WaitGroup
		general, fm       *priceList
		generalErr, fmErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		general, generalErr = p.fetchCatalog(ctx, p.config.CatalogURL)
	}()
	go func() {
		defer wg.Done()
		fm, fmErr = p.fetchCatalog(ctx, p.config.FoundationModelsURL)
	}()
	wg.Wait()

	if generalErr != nil {
		return nil, fmt.Errorf("bedrock catalog fetch failed: %w", generalErr)
	}
	if fmErr != nil {
		return nil, fmt.Errorf("bedrock foundation-models catalog fetch failed: %w", fmErr)
	}

	now := time.Now()
	models := make(map[string]*domain.PricingRecord)

	p.parseGeneralCatalog(general, models, now)
	p.parseFoundationModels(fm, models, now)

	records := make([]domain.PricingRecord, 0, len(models))
	for _, id := range sortedKeys(models) {
		records = append(records, *models[id])
	}

	logger.Debug("Bedrock catalogs normalized", observability.Int("models", len(records)))
	return records, nil
}

// fetchCatalog downloads and decodes one price list document.
func (p *Provider) fetchCatalog(ctx context.Context, url string) (*priceList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	var list priceList
	if decodeErr := json.NewDecoder(resp.Body).Decode(&list); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", decodeErr)
	}

	return &list, nil
}

// parseGeneralCatalog walks the general Bedrock catalog. The raw model label
// comes from the "model" attribute; Guardrail and custom-model add-on SKUs
// are not per-token model pricing and are skipped.
func (p *Provider) parseGeneralCatalog(list *priceList, models map[string]*domain.PricingRecord, now time.Time) {
	for _, sku := range sortedKeys(list.Products) {
		prod := list.Products[sku]
		modelName := prod.Attributes["model"]
		if modelName == "" {
			continue
		}

		usageType := prod.Attributes["usagetype"]
		if strings.Contains(usageType, "Guardrail") || strings.Contains(usageType, "CustomModel") {
			continue
		}

		priceUSD, description, ok := list.onDemandPrice(sku)
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(priceUSD, 64)
		if err != nil || price < 0 {
			continue
		}

		class := classify(generalRules, lineItem{usageType: usageType, description: description})
		if class == classNone {
			continue
		}

		rec := ensureRecord(models, modelName, []domain.Capability{domain.CapabilityText}, now)
		applyPrice(rec, class, price)
	}
}

// parseFoundationModels walks the foundation-models catalog. Labels carry a
// vendor-edition suffix that is stripped before slugging, and capability
// defaults are inferred from the model name at record creation only.
// Provisioned-throughput SKUs are reserved capacity, not per-use token
// pricing, and are excluded entirely.
func (p *Provider) parseFoundationModels(list *priceList, models map[string]*domain.PricingRecord, now time.Time) {
	for _, sku := range sortedKeys(list.Products) {
		prod := list.Products[sku]
		serviceName := prod.Attributes["servicename"]
		if serviceName == "" {
			continue
		}
		modelName := strings.TrimSpace(editionSuffix.ReplaceAllString(serviceName, ""))
		if modelName == "" {
			continue
		}

		usageType := prod.Attributes["usagetype"]
		if strings.Contains(usageType, "ProvisionedThroughput") {
			continue
		}

		priceUSD, description, ok := list.onDemandPrice(sku)
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(priceUSD, 64)
		if err != nil || price < 0 {
			continue
		}

		class := classify(fmRules, lineItem{usageType: usageType, description: description})
		if class == classNone {
			continue
		}

		rec := ensureRecord(models, modelName, detectCapabilities(modelName), now)
		applyPrice(rec, class, price)
	}
}

// ensureRecord returns the in-progress record for the model, creating it
// with the given capability defaults when no catalog entry has produced it
// yet. Capabilities are fixed at creation time.
func ensureRecord(
	models map[string]*domain.PricingRecord,
	modelName string,
	capabilities []domain.Capability,
	now time.Time,
) *domain.PricingRecord {
	modelID := domain.Slugify(modelName)
	id := domain.RecordID(domain.ProviderBedrock, modelID)

	if rec, exists := models[id]; exists {
		return rec
	}

	rec := &domain.PricingRecord{
		ID:           id,
		Provider:     domain.ProviderBedrock,
		ModelID:      modelID,
		ModelName:    modelName,
		Pricing:      domain.Pricing{},
		Capabilities: capabilities,
		Source:       domain.SourceAPI,
		LastUpdated:  now,
	}
	models[id] = rec
	return rec
}

// applyPrice writes a classified price into its record field. First writer
// wins: a field already populated by an earlier line-item (the standard
// tier) is never overwritten by a later one.
func applyPrice(rec *domain.PricingRecord, class priceClass, price float64) {
	switch class {
	case classInput:
		setIfUnset(&rec.Pricing.Input, price)
	case classOutput:
		setIfUnset(&rec.Pricing.Output, price)
	case classCacheRead:
		setIfUnset(&rec.Pricing.CachedInput, price)
	case classCacheWrite:
		setIfUnset(&rec.Pricing.CachedWrite, price)
	case classBatchInput:
		if rec.BatchPricing == nil {
			rec.BatchPricing = &domain.Pricing{}
		}
		setIfUnset(&rec.BatchPricing.Input, price)
	case classBatchOutput:
		if rec.BatchPricing == nil {
			rec.BatchPricing = &domain.Pricing{}
		}
		setIfUnset(&rec.BatchPricing.Output, price)
	case classNone:
	}
}

func setIfUnset(field **float64, price float64) {
	if *field == nil {
		v := price
		*field = &v
	}
}

// detectCapabilities infers modality tags from the model name. Embedding
// models collapse to {embedding}; everything else defaults to {text} plus
// any keyword matches.
func detectCapabilities(modelName string) []domain.Capability {
	nameLower := strings.ToLower(modelName)

	if strings.Contains(nameLower, "embed") {
		return []domain.Capability{domain.CapabilityEmbedding}
	}

	capabilities := []domain.Capability{domain.CapabilityText}
	if containsAny(nameLower, visionKeywords) {
		capabilities = append(capabilities, domain.CapabilityVision)
	}
	if containsAny(nameLower, audioKeywords) {
		capabilities = append(capabilities, domain.CapabilityAudio)
	}
	return capabilities
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// sortedKeys makes catalog iteration deterministic: JSON object order is
// lost in Go maps, and the idempotence requirement needs identical output
// for identical input across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
