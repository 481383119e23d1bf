package cost

import (
	"fmt"
	"strings"
)

type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

type ProviderPricing map[string]map[string]PricingTable

// https://ai.google.dev/gemini-api/docs/pricing
func defaultPricing() ProviderPricing {
	return ProviderPricing{
		"gemini": {
			"gemini-1.5-flash":       {InputPricePerMillion: 0.075, OutputPricePerMillion: 0.30},
			"gemini-1.5-pro":         {InputPricePerMillion: 1.25, OutputPricePerMillion: 5.00},
			"gemini-2.5-flash":       {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
			"gemini-2.5-flash-lite":  {InputPricePerMillion: 0.05, OutputPricePerMillion: 0.20},
			"gemini-2.5-pro":         {InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00},
			"gemini-3-flash-preview": {InputPricePerMillion: 0.50, OutputPricePerMillion: 3.00},
			"gemini-3-pro-preview":   {InputPricePerMillion: 2.00, OutputPricePerMillion: 12.00},
			"text-embedding-004":     {InputPricePerMillion: 0.00, OutputPricePerMillion: 0.00},
		},
	}
}

type Calculator struct {
	pricing ProviderPricing
}

func NewCalculator() *Calculator {
	return &Calculator{pricing: defaultPricing()}
}

// EstimateCost returns the USD cost of a call. Unknown models cost 0. A model
// that is not listed verbatim is priced as the longest listed name it contains,
// so "gemini-2.5-flash-lite-001" resolves to "gemini-2.5-flash-lite".
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	prices, ok := c.lookup(provider, model)
	if !ok {
		return 0
	}

	inputCost := (float64(inputTokens) / 1_000_000) * prices.InputPricePerMillion
	outputCost := (float64(outputTokens) / 1_000_000) * prices.OutputPricePerMillion

	return inputCost + outputCost
}

// GetPricing returns the pricing of an exactly named model.
func (c *Calculator) GetPricing(provider, model string) (PricingTable, error) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, fmt.Errorf("provider %s not found", provider)
	}

	modelPricing, exists := providerPricing[model]
	if !exists {
		return PricingTable{}, fmt.Errorf("model %s not found for provider %s", model, provider)
	}

	return modelPricing, nil
}

// AddPricing registers or overrides the pricing of a model.
func (c *Calculator) AddPricing(provider, model string, table PricingTable) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	if _, exists := c.pricing[provider]; !exists {
		c.pricing[provider] = make(map[string]PricingTable)
	}
	c.pricing[provider][model] = table
}

func (c *Calculator) lookup(provider, model string) (PricingTable, bool) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, false
	}

	if prices, exists := providerPricing[model]; exists {
		return prices, true
	}

	var (
		best     PricingTable
		bestName string
	)
	for name, prices := range providerPricing {
		if strings.Contains(model, name) && len(name) > len(bestName) {
			best, bestName = prices, name
		}
	}
	return best, bestName != ""
}
