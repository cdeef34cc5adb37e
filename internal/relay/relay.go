// Package relay implements the HTTP surface of the token-optimizer relay:
// token counting, prompt optimization, health, and usage aggregates.
package relay

import (
	"context"
	"net/http"

	"github.com/dannysarco/llm-token-optimizer/internal/anthropic"
	"github.com/dannysarco/llm-token-optimizer/internal/auth"
	"github.com/dannysarco/llm-token-optimizer/internal/governor"
	"github.com/dannysarco/llm-token-optimizer/internal/pricing"
	"github.com/dannysarco/llm-token-optimizer/internal/store"
	"github.com/dannysarco/llm-token-optimizer/internal/ws"
)

// ModelProvider is the remote language-model surface the relay needs.
// *anthropic.Provider implements it; tests substitute a stub.
type ModelProvider interface {
	Model() string
	CountTokens(ctx context.Context, text string) (int, error)
	RewritePrompt(ctx context.Context, text string) (*anthropic.Rewrite, error)
}

// Deps holds all dependencies injected into the relay handlers.
type Deps struct {
	Provider ModelProvider
	Store    *store.DB
	Governor *governor.Governor
	Hub      *ws.Hub
	Rates    pricing.Rates
	Guard    *auth.Guard
}

// SetupRoutes registers the relay routes on mux.
// Uses Go 1.22 method+pattern routing syntax. Health stays unguarded so load
// balancers can probe without the access key.
func SetupRoutes(mux *http.ServeMux, deps *Deps) {
	h := NewHandler(deps)

	requireKey := func(fn http.HandlerFunc) http.Handler {
		return deps.Guard.Require(fn)
	}

	mux.Handle("POST /api/count_tokens", requireKey(h.CountTokens))
	mux.Handle("POST /api/optimize_prompt", requireKey(h.OptimizePrompt))
	mux.Handle("GET /api/usage", requireKey(h.Usage))
	mux.HandleFunc("GET /health", h.Health)
}
