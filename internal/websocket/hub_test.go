// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/fleetids/internal/models"
)

// startHub runs a hub behind an upgrade endpoint and returns its ws:// URL.
func startHub(t *testing.T, origins ...string) (*Hub, string) {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	upgrader := Upgrader(origins)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn)
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	return msg
}

func TestHub_BroadcastsAlerts(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, url, "http://dashboard.local")
	second := dial(t, url, "http://dashboard.local")
	waitForClients(t, hub, 2)

	alert := &models.Alert{ID: "a1", Classification: models.ClassificationIntrusion, Confidence: 100}
	if err := hub.Notify(context.Background(), alert); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		if msg["type"] != MessageTypeAlert {
			t.Errorf("type = %v, want alert", msg["type"])
		}
		data, _ := msg["data"].(map[string]any)
		if data["id"] != "a1" || data["classification"] != "intrusion" {
			t.Errorf("data = %v", data)
		}
	}
}

func TestHub_ResetAndPing(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, "http://dashboard.local")
	waitForClients(t, hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg["type"] != MessageTypePong {
		t.Errorf("reply type = %v, want pong", msg["type"])
	}

	if err := hub.BroadcastReset(MessageTypeAlertsReset, "Log folder is empty"); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	data, _ := msg["data"].(map[string]any)
	if msg["type"] != MessageTypeAlertsReset || data["message"] != "Log folder is empty" {
		t.Errorf("reset message = %v", msg)
	}
}

func TestHub_Disconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, "http://dashboard.local")
	waitForClients(t, hub, 1)

	_ = conn.Close()
	waitForClients(t, hub, 0)
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"missing origin", []string{"*"}, "", false},
		{"wildcard", []string{"*"}, "http://any.example", true},
		{"listed", []string{"http://ops.example"}, "http://ops.example", true},
		{"unlisted", []string{"http://ops.example"}, "http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/stream", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := Upgrader(tt.allowed).CheckOrigin(r); got != tt.want {
				t.Errorf("CheckOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHub_BroadcastFull(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	for i := 0; i < broadcastBuffer; i++ {
		if err := hub.BroadcastJSON(MessageTypeAlert, i); err != nil {
			t.Fatalf("BroadcastJSON(%d) error: %v", i, err)
		}
	}
	if err := hub.BroadcastJSON(MessageTypeAlert, "overflow"); !errors.Is(err, ErrBroadcastFull) {
		t.Errorf("BroadcastJSON() error = %v, want ErrBroadcastFull", err)
	}
}

func TestHub_ServeClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Serve(ctx) }()

	upgrader := Upgrader([]string{"*"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if conn, err := upgrader.Upgrade(w, r, nil); err == nil {
			hub.Attach(conn)
		}
	}))
	defer server.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(server.URL, "http"), "http://dashboard.local")
	waitForClients(t, hub, 1)

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after stop", hub.ClientCount())
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}
}
