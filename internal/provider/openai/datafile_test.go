package openai

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelens/internal/domain"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openai.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataFile(t *testing.T) {
	t.Run("should parse a valid file", func(t *testing.T) {
		path := writeDataFile(t, `{
			"provider": "openai",
			"source_url": "https://openai.com/api/pricing",
			"models": [
				{
					"model_name": "GPT-4o",
					"pricing": {"input": 0.0000025, "output": 0.00001},
					"capabilities": ["text", "vision"],
					"context_length": 128000
				}
			]
		}`)

		file, err := LoadDataFile(path)
		require.NoError(t, err)
		require.Equal(t, "openai", file.Provider)
		require.Len(t, file.Models, 1)
		require.Equal(t, "GPT-4o", file.Models[0].ModelName)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := LoadDataFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
	})

	t.Run("should fail on malformed JSON", func(t *testing.T) {
		path := writeDataFile(t, `{"models": [`)
		_, err := LoadDataFile(path)
		require.Error(t, err)
	})
}

func TestRecords(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("should derive the model identifier from the name", func(t *testing.T) {
		file := &ManualDataFile{Models: []ManualModel{
			{ModelName: "GPT-4o mini"},
		}}

		records := file.records(domain.ProviderOpenAI, now)
		require.Len(t, records, 1)
		require.Equal(t, "gpt-4o-mini", records[0].ModelID)
		require.Equal(t, "openai:gpt-4o-mini", records[0].ID)
		require.Equal(t, domain.SourceManual, records[0].Source)
		require.Equal(t, now, records[0].LastUpdated)
	})

	t.Run("should keep an explicit model identifier", func(t *testing.T) {
		file := &ManualDataFile{Models: []ManualModel{
			{ModelID: "o3", ModelName: "OpenAI o3"},
		}}

		records := file.records(domain.ProviderOpenAI, now)
		require.Len(t, records, 1)
		require.Equal(t, "o3", records[0].ModelID)
	})

	t.Run("should skip rows without a model name", func(t *testing.T) {
		file := &ManualDataFile{Models: []ManualModel{
			{ModelID: "nameless"},
			{ModelName: "GPT-4o"},
		}}

		records := file.records(domain.ProviderOpenAI, now)
		require.Len(t, records, 1)
		require.Equal(t, "gpt-4o", records[0].ModelID)
	})

	t.Run("should drop negative prices field by field", func(t *testing.T) {
		input := -1.0
		output := 0.00001
		batchInput := -2.0
		file := &ManualDataFile{Models: []ManualModel{
			{
				ModelName:    "GPT-4o",
				Pricing:      domain.Pricing{Input: &input, Output: &output},
				BatchPricing: &domain.Pricing{Input: &batchInput},
			},
		}}

		records := file.records(domain.ProviderOpenAI, now)
		require.Len(t, records, 1)
		require.Nil(t, records[0].Pricing.Input)
		require.Equal(t, output, *records[0].Pricing.Output)
		require.Nil(t, records[0].BatchPricing.Input)
	})
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		name      string
		raw       []string
		modelName string
		want      []domain.Capability
	}{
		{
			name:      "valid tags pass through",
			raw:       []string{"text", "vision"},
			modelName: "GPT-4o",
			want:      []domain.Capability{domain.CapabilityText, domain.CapabilityVision},
		},
		{
			name:      "unknown tags are discarded",
			raw:       []string{"text", "telepathy"},
			modelName: "GPT-4o",
			want:      []domain.Capability{domain.CapabilityText},
		},
		{
			name:      "empty defaults to text",
			raw:       nil,
			modelName: "GPT-4o",
			want:      []domain.Capability{domain.CapabilityText},
		},
		{
			name:      "embedding names default to embedding",
			raw:       nil,
			modelName: "Text Embedding 3 Small",
			want:      []domain.Capability{domain.CapabilityEmbedding},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseCapabilities(tt.raw, tt.modelName))
		})
	}
}

func TestProviderFetch(t *testing.T) {
	t.Run("should return curated records without an API key", func(t *testing.T) {
		path := writeDataFile(t, `{
			"provider": "openai",
			"models": [
				{"model_name": "GPT-4o", "pricing": {"input": 0.0000025, "output": 0.00001}}
			]
		}`)

		provider, err := NewProvider(Config{DataFile: path})
		require.NoError(t, err)
		require.Equal(t, domain.ProviderOpenAI, provider.Name())
		require.Equal(t, "OpenAI", provider.DisplayName())

		records, err := provider.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, "openai:gpt-4o", records[0].ID)
	})

	t.Run("should fail when the data file is unreadable", func(t *testing.T) {
		provider, err := NewProvider(Config{DataFile: filepath.Join(t.TempDir(), "missing.json")})
		require.NoError(t, err)

		_, err = provider.Fetch(context.Background())
		require.Error(t, err)
	})

	t.Run("should require a data file path", func(t *testing.T) {
		_, err := NewProvider(Config{})
		require.Error(t, err)
	})
}
