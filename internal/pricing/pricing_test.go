package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostArithmetic(t *testing.T) {
	r := Default

	// 100 input tokens at $3.00/MTok, 50 output tokens at $15.00/MTok.
	assert.InDelta(t, 0.0003, r.InputCost(100), 1e-12)
	assert.InDelta(t, 0.00075, r.OutputCost(50), 1e-12)
	assert.InDelta(t, 0.00105, r.TotalCost(100, 50), 1e-12)

	// Total is always the sum of the parts.
	assert.InDelta(t, r.InputCost(100)+r.OutputCost(50), r.TotalCost(100, 50), 1e-15)
}

func TestSavedCostNegativeDelta(t *testing.T) {
	// Optimization that grew the prompt by 20 tokens: cost saved is negative,
	// not clamped.
	got := Default.SavedCost(-20)
	assert.InDelta(t, -20*3.00/1_000_000, got, 1e-12)
	assert.Less(t, got, 0.0)
}

func TestZeroTokens(t *testing.T) {
	assert.Zero(t, Default.InputCost(0))
	assert.Zero(t, Default.OutputCost(0))
	assert.Zero(t, Default.TotalCost(0, 0))
}
