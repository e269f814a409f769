package bedrock

// AWS Price List API document shape: products keyed by SKU, on-demand terms
// keyed by the same SKU. Only the fields the normalizer reads are declared.

type priceList struct {
	Products map[string]product `json:"products"`
	Terms    catalogTerms       `json:"terms"`
}

type product struct {
	SKU        string            `json:"sku"`
	Attributes map[string]string `json:"attributes"`
}

type catalogTerms struct {
	OnDemand map[string]map[string]term `json:"OnDemand"`
}

type term struct {
	PriceDimensions map[string]priceDimension `json:"priceDimensions"`
}

type priceDimension struct {
	Description  string            `json:"description"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// onDemandPrice returns the USD price and description of the first price
// dimension of the first on-demand term for the given SKU. On-demand terms
// are single-tier, so first-dimension is the whole story. The bool is false
// when the SKU has no on-demand term.
func (p *priceList) onDemandPrice(sku string) (priceUSD string, description string, ok bool) {
	termSet, exists := p.Terms.OnDemand[sku]
	if !exists {
		return "", "", false
	}
	for _, t := range termSet {
		for _, dim := range t.PriceDimensions {
			return dim.PricePerUnit["USD"], dim.Description, true
		}
	}
	return "", "", false
}
