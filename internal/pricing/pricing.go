// Package pricing holds the fixed per-token USD rates and cost arithmetic.
// Rates are compile-time constants for the lifetime of the process; they are
// neither user-configurable nor persisted.
package pricing

// Rates holds the USD cost per one million tokens.
type Rates struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Default matches Claude 3.5 Sonnet list pricing: $3.00 / MTok input,
// $15.00 / MTok output.
var Default = Rates{
	InputPerMTok:  3.00,
	OutputPerMTok: 15.00,
}

// InputCost returns the USD cost of n billed input tokens.
func (r Rates) InputCost(n int) float64 {
	return float64(n) * r.InputPerMTok / 1_000_000
}

// OutputCost returns the USD cost of n billed output tokens.
func (r Rates) OutputCost(n int) float64 {
	return float64(n) * r.OutputPerMTok / 1_000_000
}

// TotalCost returns InputCost(in) + OutputCost(out).
func (r Rates) TotalCost(in, out int) float64 {
	return r.InputCost(in) + r.OutputCost(out)
}

// SavedCost prices a token delta at the input rate. The delta may be
// negative when an optimization made the prompt longer; the negative cost
// flows through unchanged as a signal of a failed optimization attempt.
func (r Rates) SavedCost(tokensSaved int) float64 {
	return float64(tokensSaved) * r.InputPerMTok / 1_000_000
}
