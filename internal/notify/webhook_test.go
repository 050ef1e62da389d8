// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fleetids/internal/models"
)

func testAlert() *models.Alert {
	return &models.Alert{
		ID:             "a1",
		Path:           "log/intrusion_a1.log",
		DetectedAt:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Classification: models.ClassificationIntrusion,
		Confidence:     70,
		Entry: models.LogEntry{
			VIN:        "A123456",
			AppID:      "GAUSSIAN_1",
			Level:      models.LevelDefault,
			LogMessage: "1000.0",
			TimeUnix:   1514764800,
		},
	}
}

func testWebhookConfig(url string) WebhookConfig {
	return WebhookConfig{
		URL:             url,
		Timeout:         2 * time.Second,
		MinInterval:     time.Millisecond,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}
}

func TestNewWebhookNotifier_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not a url", "ftp://example.com/hook", "http://"} {
		if _, err := NewWebhookNotifier(WebhookConfig{URL: raw}); err == nil {
			t.Errorf("NewWebhookNotifier(%q) should fail", raw)
		}
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	t.Parallel()

	var got WebhookPayload
	var auth, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := testWebhookConfig(server.URL)
	cfg.Headers = map[string]string{"Authorization": "Bearer token"}
	n, err := NewWebhookNotifier(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Notify(context.Background(), testAlert()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if auth != "Bearer token" || contentType != "application/json" {
		t.Errorf("headers = %q, %q", auth, contentType)
	}
	if got.EventType != "intrusion_alert" || got.Source != "fleetids" {
		t.Errorf("payload envelope = %+v", got)
	}
	if got.Alert == nil || got.Alert.ID != "a1" || got.Alert.Entry.AppID != "GAUSSIAN_1" {
		t.Errorf("payload alert = %+v", got.Alert)
	}
	if n.Name() != "webhook" {
		t.Errorf("Name() = %q", n.Name())
	}
}

func TestWebhookNotifier_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(testWebhookConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		err := n.Notify(context.Background(), testAlert())
		if err == nil || errors.Is(err, ErrBreakerOpen) {
			t.Fatalf("attempt %d error = %v, want status failure", i, err)
		}
	}
	if n.State() != "open" {
		t.Fatalf("State() = %q, want open", n.State())
	}

	if err := n.Notify(context.Background(), testAlert()); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("Notify() error = %v, want ErrBreakerOpen", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestWebhookNotifier_CancelledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(testWebhookConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, testAlert()); !errors.Is(err, context.Canceled) {
		t.Errorf("Notify() error = %v, want context.Canceled", err)
	}
	if n.State() != "closed" {
		t.Errorf("State() = %q, cancellation must not trip the breaker", n.State())
	}
}
