package relayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannysarco/llm-token-optimizer/internal/auth"
)

func TestCountTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/count_tokens", r.URL.Path)
		require.Equal(t, "my-key", r.Header.Get(auth.HeaderName))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["prompt"])

		_, _ = w.Write([]byte(`{"tokens": 12}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "my-key")
	n, err := c.CountTokens(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestOptimize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/optimize_prompt", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"optimized": "short",
			"usage": {"input_tokens": 100, "output_tokens": 50},
			"originalTokens": 100,
			"optimizedTokens": 75,
			"savings": 25
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "")
	res, err := c.Optimize(context.Background(), "a long prompt")
	require.NoError(t, err)
	assert.Equal(t, "short", res.Optimized)
	assert.Equal(t, 100, res.Usage.InputTokens)
	assert.Equal(t, 50, res.Usage.OutputTokens)
	assert.Equal(t, 75, res.OptimizedTokens)
	assert.Equal(t, 25, res.Savings)
}

func TestErrorBodySurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Optimization failed", "details": "overloaded"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Optimize(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Optimization failed")
	assert.Contains(t, err.Error(), "overloaded")
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.CountTokens(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","model":"claude-3-5-sonnet-20241022"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	h, err := c.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "claude-3-5-sonnet-20241022", h.Model)
}
