package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_EstimateCost(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{
			name:         "exact match",
			provider:     "gemini",
			model:        "gemini-1.5-flash",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         0.075 + 0.30,
		},
		{
			name:         "case insensitive",
			provider:     "GEMINI",
			model:        "GEMINI-1.5-FLASH",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         0.075 + 0.30,
		},
		{
			name:         "versioned name resolves to the longest listed model",
			provider:     "gemini",
			model:        "gemini-2.5-flash-lite-001",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         0.05 + 0.20,
		},
		{
			name:         "small call",
			provider:     "gemini",
			model:        "gemini-2.5-flash",
			inputTokens:  2_000,
			outputTokens: 500,
			want:         0.0002 + 0.0002,
		},
		{
			name:         "unknown model costs nothing",
			provider:     "gemini",
			model:        "unknown-model",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         0,
		},
		{
			name:         "unknown provider costs nothing",
			provider:     "openai",
			model:        "gpt-4o",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         0,
		},
	}

	calc := NewCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.EstimateCost(tt.provider, tt.model, tt.inputTokens, tt.outputTokens)

			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculator_GetPricing(t *testing.T) {
	calc := NewCalculator()

	prices, err := calc.GetPricing("gemini", "gemini-1.5-pro")
	require.NoError(t, err)
	assert.Equal(t, 1.25, prices.InputPricePerMillion)

	_, err = calc.GetPricing("gemini", "gemini-1.5-pro-002")
	assert.Error(t, err)

	_, err = calc.GetPricing("nope", "gemini-1.5-pro")
	assert.Error(t, err)
}

func TestCalculator_AddPricingIsPerInstance(t *testing.T) {
	// Arrange
	custom := NewCalculator()
	other := NewCalculator()

	// Act
	custom.AddPricing("Local", "Tiny", PricingTable{InputPricePerMillion: 1, OutputPricePerMillion: 2})

	// Assert
	assert.InDelta(t, 3.0, custom.EstimateCost("local", "tiny", 1_000_000, 1_000_000), 1e-9)
	assert.Zero(t, other.EstimateCost("local", "tiny", 1_000_000, 1_000_000))
}
