// Package anthropic wraps the official Anthropic SDK behind a small
// interface so the relay handlers can be tested without network access.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClientProvider abstracts the single SDK operation the relay uses.
type ClientProvider interface {
	// CreateMessage creates a new message using Anthropic's API.
	CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// Client implements ClientProvider using the official SDK.
type Client struct {
	messages *anthropic.MessageService
}

// NewClient creates a Client with the provided API key. The SDK sets the
// x-api-key and anthropic-version headers on every request.
func NewClient(apiKey string) *Client {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{messages: c.Messages}
}

// CreateMessage implements ClientProvider.
func (c *Client) CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.messages.New(ctx, params)
}
