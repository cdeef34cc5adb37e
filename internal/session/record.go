// Package session owns the client application's state: the append-only
// optimization history, its persistence, and the derived aggregates.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dannysarco/llm-token-optimizer/internal/pricing"
)

// Record represents one completed optimize operation. Immutable once
// created; never individually deleted, only bulk-cleared.
type Record struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	OriginalPrompt  string    `json:"original_prompt"`
	OptimizedPrompt string    `json:"optimized_prompt"`
	OriginalTokens  int       `json:"original_tokens"`
	OptimizedTokens int       `json:"optimized_tokens"`
	InputTokens     int       `json:"input_tokens"`
	OutputTokens    int       `json:"output_tokens"`
	InputCostUSD    float64   `json:"input_cost_usd"`
	OutputCostUSD   float64   `json:"output_cost_usd"`
	TotalCostUSD    float64   `json:"total_cost_usd"`
	TokensSaved     int       `json:"tokens_saved"`
	CostSavedUSD    float64   `json:"cost_saved_usd"`
}

// NewRecord derives all cost figures from the billed usage and fixed rates.
// TokensSaved may be negative when the optimization grew the prompt; the
// cost fields carry the sign through unchanged.
func NewRecord(rates pricing.Rates, original, optimized string, originalTokens, optimizedTokens, inputTokens, outputTokens int) Record {
	tokensSaved := originalTokens - optimizedTokens
	inputCost := rates.InputCost(inputTokens)
	outputCost := rates.OutputCost(outputTokens)
	return Record{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now(),
		OriginalPrompt:  original,
		OptimizedPrompt: optimized,
		OriginalTokens:  originalTokens,
		OptimizedTokens: optimizedTokens,
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		InputCostUSD:    inputCost,
		OutputCostUSD:   outputCost,
		TotalCostUSD:    inputCost + outputCost,
		TokensSaved:     tokensSaved,
		CostSavedUSD:    rates.SavedCost(tokensSaved),
	}
}

// Summary aggregates a history on demand. Not persisted.
type Summary struct {
	Count        int     `json:"count"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	TokensSaved  int     `json:"tokens_saved"`
	CostSavedUSD float64 `json:"cost_saved_usd"`
}
