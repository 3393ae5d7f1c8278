package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// WebhookSink POSTs the formatted payload to the configured URL with
// the node's custom headers.
type WebhookSink struct {
	client *http.Client
}

// NewWebhookSink creates a webhook sink. A nil client gets a default
// with a 30s timeout.
func NewWebhookSink(client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookSink{client: client}
}

// Deliver posts the payload and returns the response status and body
// excerpt.
func (s *WebhookSink) Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook output requires a URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range cfg.WebhookHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return map[string]any{"status": resp.StatusCode, "body": string(body)}, nil
}
