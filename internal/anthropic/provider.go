package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// optimizeSystemPrompt is the fixed instruction sent with every optimize
// request. Output length is additionally bounded by MaxOutputTokens.
const optimizeSystemPrompt = "You are a prompt optimization expert. Rewrite the " +
	"user's prompt to preserve its full meaning while using as few tokens as " +
	"possible. Respond with only the rewritten prompt, no explanation."

// Usage reports the token counts billed by the remote API for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Rewrite holds the result of an optimize call.
type Rewrite struct {
	Text  string
	Usage Usage
}

// Provider issues count and rewrite requests against a ClientProvider.
type Provider struct {
	client          ClientProvider
	model           anthropic.Model
	maxOutputTokens int64
}

// NewProvider creates a Provider. If model is empty it defaults to
// Claude 3.5 Sonnet.
func NewProvider(client ClientProvider, model string, maxOutputTokens int) *Provider {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = 1024
	}
	return &Provider{
		client:          client,
		model:           anthropic.Model(model),
		maxOutputTokens: int64(maxOutputTokens),
	}
}

// Model returns the configured model identifier.
func (p *Provider) Model() string { return string(p.model) }

// CountTokens asks the API to tokenize text by requesting a minimal
// one-token completion and reading usage.input_tokens from the response.
// This is a priced call.
func (p *Provider) CountTokens(ctx context.Context, text string) (int, error) {
	msg, err := p.client.CreateMessage(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(p.model),
		MaxTokens: anthropic.F(int64(1)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		}),
	})
	if err != nil {
		return 0, fmt.Errorf("anthropic.CountTokens: %w", err)
	}
	return int(msg.Usage.InputTokens), nil
}

// RewritePrompt asks the model to rewrite text more concisely and returns
// the rewritten text plus the billed usage.
func (p *Provider) RewritePrompt(ctx context.Context, text string) (*Rewrite, error) {
	msg, err := p.client.CreateMessage(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(p.model),
		MaxTokens: anthropic.F(p.maxOutputTokens),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(optimizeSystemPrompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic.RewritePrompt: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsUnion().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}
	text = strings.TrimSpace(out.String())
	if text == "" {
		return nil, fmt.Errorf("anthropic.RewritePrompt: empty completion")
	}

	return &Rewrite{
		Text: text,
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}
