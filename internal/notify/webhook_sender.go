package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/diff"
)

// WebhookSender posts rendered events to a configured HTTP endpoint.
type WebhookSender struct {
	client *http.Client
	url    string
	logger *zap.Logger
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// NewWebhookSender creates a webhook sender.
func NewWebhookSender(cfg WebhookConfig, logger *zap.Logger) *WebhookSender {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &WebhookSender{
		client: &http.Client{Timeout: timeout},
		url:    cfg.URL,
		logger: logger,
	}
}

func (s *WebhookSender) Name() string { return "webhook" }

// webhookBody is the JSON document posted to the endpoint.
type webhookBody struct {
	Event   diff.Event `json:"event"`
	Message Message    `json:"message"`
}

// Send posts the event and its rendered message as JSON.
func (s *WebhookSender) Send(ctx context.Context, event diff.Event, msg Message) error {
	body, err := json.Marshal(webhookBody{Event: event, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Wardrobe/1.0.0")
	req.Header.Set("X-Wardrobe-Event-ID", event.ID.String())
	req.Header.Set("X-Wardrobe-Event-Type", string(event.Type))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %d, body: %s", resp.StatusCode, string(preview))
	}

	s.logger.Info("webhook delivered",
		zap.String("event_id", event.ID.String()),
		zap.String("url", s.url),
		zap.Int("status_code", resp.StatusCode),
	)

	return nil
}
