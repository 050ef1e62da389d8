// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/fleetids/internal/metrics"
	"github.com/tomtom215/fleetids/internal/models"
)

const (
	webhookName      = "webhook"
	webhookEventType = "intrusion_alert"
	webhookSource    = "fleetids"
)

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL string

	// Headers are added to every request, e.g. an Authorization token.
	Headers map[string]string

	// Timeout bounds a single request. Default 10s.
	Timeout time.Duration

	// MinInterval paces consecutive sends. Default 100ms.
	MinInterval time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// WebhookPayload is the JSON body POSTed for each alert.
type WebhookPayload struct {
	EventType string        `json:"event_type"`
	Source    string        `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
	Alert     *models.Alert `json:"alert"`
}

// WebhookNotifier sends alerts to an HTTP endpoint.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
	now     func() time.Time
}

// NewWebhookNotifier validates cfg and returns a notifier.
func NewWebhookNotifier(cfg WebhookConfig) (*WebhookNotifier, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("webhook url must be an absolute http(s) url, got %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 100 * time.Millisecond
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &WebhookNotifier{
		url:     cfg.URL,
		headers: headers,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		breaker: newBreaker(BreakerConfig{
			Name:             webhookName,
			FailureThreshold: cfg.BreakerFailures,
			Timeout:          cfg.BreakerTimeout,
		}),
		now: time.Now,
	}, nil
}

// Name returns the notifier name.
func (n *WebhookNotifier) Name() string {
	return webhookName
}

// State returns the breaker state: "closed", "half-open" or "open".
func (n *WebhookNotifier) State() string {
	return n.breaker.State().String()
}

// Notify delivers alert, waiting for the rate limiter first.
func (n *WebhookNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}

	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.send(ctx, alert)
	})
	switch {
	case err == nil:
		metrics.RecordNotification(webhookName, "sent")
		return nil
	case isBreakerRejection(err):
		metrics.RecordNotification(webhookName, "breaker_open")
		return fmt.Errorf("%w: %w", ErrBreakerOpen, err)
	default:
		metrics.RecordNotification(webhookName, "failed")
		return err
	}
}

func (n *WebhookNotifier) send(ctx context.Context, alert *models.Alert) error {
	body, err := json.Marshal(WebhookPayload{
		EventType: webhookEventType,
		Source:    webhookSource,
		Timestamp: n.now().UTC(),
		Alert:     alert,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
