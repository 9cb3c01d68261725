// Package notifier delivers digests to a Slack-compatible incoming webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"mofa_notifier/internal/domain"
)

// WebhookEnv is the environment variable holding the webhook URL.
const WebhookEnv = "SLACK_WEBHOOK_URL"

// Config holds webhook delivery settings.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	Username   string
	IconEmoji  string
}

// Slack posts digests to an incoming webhook.
type Slack struct {
	httpClient *http.Client
	webhookURL string
	username   string
	iconEmoji  string
	logger     *slog.Logger
}

// NewSlack creates a webhook notifier. An empty WebhookURL is accepted here
// and reported by Notify.
func NewSlack(cfg Config, logger *slog.Logger) *Slack {
	return &Slack{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		webhookURL: cfg.WebhookURL,
		username:   cfg.Username,
		iconEmoji:  cfg.IconEmoji,
		logger:     logger,
	}
}

type payload struct {
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// Notify sends text as a single message.
func (s *Slack) Notify(ctx context.Context, text string) error {
	if s.webhookURL == "" {
		return fmt.Errorf("%w: %s is not set", domain.ErrConfiguration, WebhookEnv)
	}
	if text == "" {
		return errors.New("empty message")
	}

	body, err := json.Marshal(payload{
		Text:      text,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", domain.ErrConfiguration, withoutURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post webhook: %w", domain.ErrNetwork, withoutURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: webhook status %d: %s", domain.ErrDelivery, resp.StatusCode, bytes.TrimSpace(msg))
	}

	s.logger.Debug("webhook delivered", "status", resp.StatusCode, "bytes", len(body))

	return nil
}

// withoutURL drops the URL that *url.Error carries. The webhook URL is a
// secret and must not reach logs.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
