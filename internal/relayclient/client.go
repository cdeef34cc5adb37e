// Package relayclient is the HTTP client the terminal application uses to
// talk to the relay daemon.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dannysarco/llm-token-optimizer/internal/auth"
)

// Client calls the relay's JSON API.
type Client struct {
	baseURL   string
	accessKey string
	http      *http.Client
}

// New creates a Client. accessKey may be empty when the relay runs
// unguarded. No timeout is set beyond the relay's own behavior; a hung call
// is superseded client-side rather than aborted.
func New(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		http:      &http.Client{},
	}
}

// Usage mirrors the billed token counts in an optimize response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// OptimizeResult is the relay's optimize_prompt response.
type OptimizeResult struct {
	Optimized       string `json:"optimized"`
	Usage           Usage  `json:"usage"`
	OriginalTokens  int    `json:"originalTokens"`
	OptimizedTokens int    `json:"optimizedTokens"`
	Savings         int    `json:"savings"`
}

// Health is the relay's health response.
type Health struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// CountTokens returns the relay's token count for text.
func (c *Client) CountTokens(ctx context.Context, text string) (int, error) {
	var resp struct {
		Tokens int `json:"tokens"`
	}
	if err := c.post(ctx, "/api/count_tokens", map[string]string{"prompt": text}, &resp); err != nil {
		return 0, fmt.Errorf("relayclient.CountTokens: %w", err)
	}
	return resp.Tokens, nil
}

// Optimize asks the relay to rewrite text more concisely.
func (c *Client) Optimize(ctx context.Context, text string) (*OptimizeResult, error) {
	var resp OptimizeResult
	if err := c.post(ctx, "/api/optimize_prompt", map[string]string{"prompt": text}, &resp); err != nil {
		return nil, fmt.Errorf("relayclient.Optimize: %w", err)
	}
	return &resp, nil
}

// CheckHealth probes the relay.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("relayclient.CheckHealth: %w", err)
	}
	var resp Health
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("relayclient.CheckHealth: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.accessKey != "" {
		req.Header.Set(auth.HeaderName, c.accessKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			if e.Details != "" {
				return fmt.Errorf("%s: %s", e.Error, e.Details)
			}
			return fmt.Errorf("%s", e.Error)
		}
		return fmt.Errorf("relay returned HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
