// Package openai serves curated OpenAI pricing from a manual data file.
// OpenAI publishes no machine-readable price list, so the file is the
// source of truth; when an API key is configured the live model list is
// pulled through the official SDK to log curated entries that have drifted
// out of the upstream catalog.
package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/pricelens/internal/domain"
	"github.com/davidbz/pricelens/internal/observability"
)

const providerDisplayName = "OpenAI"

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	config Config
	client *sdk.Client
}

// NewProvider creates a new OpenAI provider. The SDK client is only
// constructed when an API key is configured.
func NewProvider(config Config) (*Provider, error) {
	if config.DataFile == "" {
		return nil, errors.New("OpenAI data file path is required")
	}

	p := &Provider{config: config}

	if config.APIKey != "" {
		opts := []option.RequestOption{
			option.WithAPIKey(config.APIKey),
		}
		if config.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(config.BaseURL))
		}
		if config.Timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
		}
		client := sdk.NewClient(opts...)
		p.client = &client
	}

	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return domain.ProviderOpenAI
}

// DisplayName returns the human-readable provider name.
func (p *Provider) DisplayName() string {
	return providerDisplayName
}

// Fetch loads the curated data file and returns its records. An unreadable
// or malformed file fails the whole provider; the drift check never does.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PricingRecord, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("loading OpenAI data file", observability.String("path", p.config.DataFile))

	file, err := LoadDataFile(p.config.DataFile)
	if err != nil {
		return nil, err
	}

	records := file.records(domain.ProviderOpenAI, time.Now())

	if p.client != nil {
		p.logDrift(ctx, records)
	}

	logger.Debug("OpenAI data file loaded", observability.Int("models", len(records)))
	return records, nil
}

// logDrift compares curated entries against the live model list and logs
// the ones no longer served upstream. Advisory only: SDK failures are
// logged and swallowed.
func (p *Provider) logDrift(ctx context.Context, records []domain.PricingRecord) {
	logger := observability.FromContext(ctx)

	live := make(map[string]bool)
	iter := p.client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		live[domain.Slugify(iter.Current().ID)] = true
	}
	if err := iter.Err(); err != nil {
		logger.Warn("OpenAI model list unavailable, skipping drift check",
			observability.Error(err))
		return
	}

	for _, rec := range records {
		if !live[rec.ModelID] {
			logger.Warn("curated model absent from live model list",
				observability.String("model", rec.ModelID))
		}
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
