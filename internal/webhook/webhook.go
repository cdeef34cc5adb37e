// Package webhook fires usage events at a single configured URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Dispatcher posts event payloads to a fixed webhook URL.
type Dispatcher struct {
	url    string
	client *http.Client
}

// New creates a Dispatcher. Returns nil if url is empty (webhook disabled).
func New(url string) *Dispatcher {
	if url == "" {
		return nil
	}
	return &Dispatcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Payload is the JSON body sent to the webhook URL.
type Payload struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Fire sends an event asynchronously. Retries 3x with backoff
// (500ms, 1s, 2s).
func (d *Dispatcher) Fire(event string, data interface{}) {
	if d == nil {
		return
	}
	body, err := json.Marshal(Payload{Event: event, Timestamp: time.Now(), Data: data})
	if err != nil {
		log.Printf("webhook.Fire: marshal: %v", err)
		return
	}
	go d.fire(body)
}

func (d *Dispatcher) fire(body []byte) {
	delays := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	for i, delay := range delays {
		if i > 0 {
			time.Sleep(delay)
		}
		status, err := d.post(body)
		if err == nil && status < 400 {
			return
		}
		log.Printf("webhook.fire: attempt %d to %s: status=%d err=%v", i+1, d.url, status, err)
	}
}

func (d *Dispatcher) post(body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("webhook.post: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook.post: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
