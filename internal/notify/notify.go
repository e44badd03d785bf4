package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Dispatcher delivers a notification to a recipient. Delivery is best-effort:
// callers report failures as warnings and never roll back committed state.
type Dispatcher interface {
	Notify(ctx context.Context, recipient, event string, payload map[string]any) error
}

// Webhook posts notifications as JSON to a configured endpoint, typically a
// mail bridge or automation hook run next to the admin frontend.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type webhookMessage struct {
	Recipient string         `json:"recipient"`
	Event     string         `json:"event"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func (w *Webhook) Notify(ctx context.Context, recipient, event string, payload map[string]any) error {
	body, err := json.Marshal(webhookMessage{Recipient: recipient, Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatching notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}

	return nil
}

// Log writes notifications to the process log. Used when no webhook endpoint
// is configured, e.g. in local development.
type Log struct{}

func (Log) Notify(_ context.Context, recipient, event string, payload map[string]any) error {
	slog.Info("notification", "recipient", recipient, "event", event, "payload", payload)
	return nil
}
