package domain

import (
	"context"
	"errors"
)

// CostEstimate is the result of a token-usage cost projection.
type CostEstimate struct {
	ID           string  `json:"id"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// CostCalculator projects USD cost for a token usage against a stored
// record's per-token prices.
type CostCalculator struct {
	store *InMemoryStore
}

// NewCostCalculator creates a new cost calculator (DI constructor).
func NewCostCalculator(store *InMemoryStore) *CostCalculator {
	return &CostCalculator{store: store}
}

// Estimate computes the cost of the given usage for the record with the
// given ID. Unknown price fields contribute zero rather than failing the
// estimate.
func (c *CostCalculator) Estimate(
	_ context.Context,
	id string,
	inputTokens, outputTokens int,
) (*CostEstimate, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty")
	}

	rec, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}

	estimate := &CostEstimate{
		ID:           rec.ID,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}
	if rec.Pricing.Input != nil {
		estimate.InputCost = float64(inputTokens) * *rec.Pricing.Input
	}
	if rec.Pricing.Output != nil {
		estimate.OutputCost = float64(outputTokens) * *rec.Pricing.Output
	}
	estimate.TotalCost = estimate.InputCost + estimate.OutputCost

	return estimate, nil
}
