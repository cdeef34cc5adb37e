// Package tokenizer provides the local token approximation used when the
// remote API cannot be reached.
package tokenizer

// EstimateTokens approximates the token count of a text string.
// Uses the rule of thumb: ~4 characters per token, rounded up.
// This is the single fallback formula for both the count and optimize
// paths; a word-count variant was considered and rejected because the two
// give materially different numbers for non-English text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
