// Package notify delivers security alerts to an administrative channel.
// Delivery is best-effort and at-most-once: the decision engine never
// retries and never lets a delivery failure change a verdict.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const alertSubject = "Smart Lock Security Alert"

// Notifier sends a free-text alert to the administrative channel.
type Notifier interface {
	SendAdminAlert(ctx context.Context, text string) error
}

// Webhook posts alerts as JSON to a configured destination.  The
// destination is injected at construction rather than baked into the
// sender.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (w *Webhook) SendAdminAlert(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookPayload{Subject: alertSubject, Text: text})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post alert: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Nop drops alerts.  Used when no destination is configured.
type Nop struct{}

func (Nop) SendAdminAlert(context.Context, string) error { return nil }

// Capture records alerts in memory.  Test helper.
type Capture struct {
	mu     sync.Mutex
	alerts []string
	err    error
}

func NewCapture() *Capture { return &Capture{} }

// Fail makes subsequent sends return err.
func (c *Capture) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *Capture) SendAdminAlert(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.alerts = append(c.alerts, text)
	return nil
}

// Alerts returns a copy of everything sent so far.
func (c *Capture) Alerts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.alerts))
	copy(out, c.alerts)
	return out
}
