package relay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dannysarco/llm-token-optimizer/internal/governor"
	"github.com/dannysarco/llm-token-optimizer/internal/store"
	"github.com/dannysarco/llm-token-optimizer/internal/tokenizer"
	"github.com/dannysarco/llm-token-optimizer/internal/ws"
)

// Handler holds the shared dependencies for the relay handler methods.
type Handler struct {
	deps *Deps
}

// NewHandler creates a Handler.
func NewHandler(deps *Deps) *Handler {
	return &Handler{deps: deps}
}

// ── Request/response shapes ──────────────────────────────────────────────────

type promptRequest struct {
	// Decoded as interface{} so a non-string prompt is distinguishable from a
	// missing one and both can be rejected with 400.
	Prompt interface{} `json:"prompt"`
}

type countResponse struct {
	Tokens int `json:"tokens"`
}

type usageBilled struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type optimizeResponse struct {
	Optimized       string      `json:"optimized"`
	Usage           usageBilled `json:"usage"`
	OriginalTokens  int         `json:"originalTokens"`
	OptimizedTokens int         `json:"optimizedTokens"`
	Savings         int         `json:"savings"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, code int, msg, details string) {
	writeJSON(w, code, errorResponse{Error: msg, Details: details})
}

// decodePrompt validates the request body and returns the prompt text.
// The bool is false when a 400 has already been written.
func decodePrompt(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body", "")
		return "", false
	}
	s, ok := req.Prompt.(string)
	if !ok || strings.TrimSpace(s) == "" {
		fail(w, http.StatusBadRequest, "Prompt must be a non-empty string", "")
		return "", false
	}
	return s, true
}

// ── Handlers ─────────────────────────────────────────────────────────────────

// CountTokens handles POST /api/count_tokens.
// Past input validation this endpoint never fails: a remote error degrades
// to the local ceil(len/4) approximation.
func (h *Handler) CountTokens(w http.ResponseWriter, r *http.Request) {
	prompt, ok := decodePrompt(w, r)
	if !ok {
		return
	}

	tokens := h.countWithFallback(r.Context(), prompt)
	writeJSON(w, http.StatusOK, countResponse{Tokens: tokens})
}

// countWithFallback counts prompt tokens remotely, falling back to the local
// estimate when the remote call fails. Remote successes are ledgered (a
// count call bills its input plus the single completion token).
func (h *Handler) countWithFallback(ctx context.Context, text string) int {
	tokens, err := h.deps.Provider.CountTokens(ctx, text)
	if err != nil {
		log.Printf("relay: count fallback: %v", err)
		return tokenizer.EstimateTokens(text)
	}

	h.recordUsage(ctx, store.OpCount, tokens, 1, 0)
	h.deps.Hub.Broadcast(ws.Event{
		Type:        ws.TypeCount,
		Operation:   store.OpCount,
		InputTokens: tokens,
		CostUSD:     h.deps.Rates.TotalCost(tokens, 1),
	})
	return tokens
}

// OptimizePrompt handles POST /api/optimize_prompt.
// Upstream failure surfaces as 500 with best-effort detail; no retry. Every
// success incurs two priced remote calls: the rewrite and the follow-up
// count of the rewritten text.
func (h *Handler) OptimizePrompt(w http.ResponseWriter, r *http.Request) {
	prompt, ok := decodePrompt(w, r)
	if !ok {
		return
	}

	rw, err := h.deps.Provider.RewritePrompt(r.Context(), prompt)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Optimization failed", err.Error())
		return
	}

	optimizedTokens := h.countWithFallback(r.Context(), rw.Text)
	originalTokens := rw.Usage.InputTokens
	savings := originalTokens - optimizedTokens

	h.recordUsage(r.Context(), store.OpOptimize, rw.Usage.InputTokens, rw.Usage.OutputTokens, savings)
	h.deps.Hub.Broadcast(ws.Event{
		Type:         ws.TypeOptimization,
		Operation:    store.OpOptimize,
		InputTokens:  rw.Usage.InputTokens,
		OutputTokens: rw.Usage.OutputTokens,
		TokensSaved:  savings,
		CostUSD:      h.deps.Rates.TotalCost(rw.Usage.InputTokens, rw.Usage.OutputTokens),
	})

	writeJSON(w, http.StatusOK, optimizeResponse{
		Optimized:       rw.Text,
		Usage:           usageBilled{InputTokens: rw.Usage.InputTokens, OutputTokens: rw.Usage.OutputTokens},
		OriginalTokens:  originalTokens,
		OptimizedTokens: optimizedTokens,
		Savings:         savings,
	})
}

func (h *Handler) recordUsage(ctx context.Context, op string, in, out, saved int) {
	cost := h.deps.Rates.TotalCost(in, out)
	if err := h.deps.Store.RecordUsage(ctx, op, in, out, saved, cost); err != nil {
		log.Printf("relay: record usage: %v", err)
		return
	}
	if h.deps.Governor != nil {
		zone := h.deps.Governor.CheckBudget(ctx)
		if zone >= governor.ZoneOrange {
			h.deps.Hub.Broadcast(ws.Event{
				Type:    ws.TypeBudgetWarn,
				Message: "daily spend zone " + zone.String(),
			})
		}
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  h.deps.Provider.Model(),
	})
}

// Usage handles GET /api/usage.
// Query param: period=daily|weekly|monthly (default daily).
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "daily"
	}

	now := time.Now()
	var since string
	switch period {
	case "weekly":
		since = now.AddDate(0, 0, -7).Format("2006-01-02")
	case "monthly":
		since = now.AddDate(0, -1, 0).Format("2006-01-02")
	default:
		period = "daily"
		since = now.Format("2006-01-02")
	}

	totals, err := h.deps.Store.TotalsSince(r.Context(), since)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Usage query failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period": period,
		"since":  since,
		"days":   totals,
	})
}

// NotFound is the JSON 404 for unmatched paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	fail(w, http.StatusNotFound, "Endpoint not found", "")
}
