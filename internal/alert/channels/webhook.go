package channels

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/model"
)

// Webhook POSTs the alert as JSON.
type Webhook struct {
	log    *slog.Logger
	url    string
	token  string
	client *http.Client
}

func NewWebhook(log *slog.Logger, cfg *config.WebhookConfig, timeout time.Duration) *Webhook {
	return &Webhook{
		log:   log,
		url:   cfg.URL,
		token: cfg.Token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *Webhook) Name() string { return config.ChannelWebhook }

func (w *Webhook) Send(ctx context.Context, alert *model.Alert) error {
	data, err := alert.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		w.log.Debug("webhook accepted alert",
			slog.String("alert_id", alert.ID),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}
