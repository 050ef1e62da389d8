// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/metrics"
	"github.com/tomtom215/fleetids/internal/models"
)

// Message types.
const (
	MessageTypeAlert       = "alert"
	MessageTypeAlertsReset = "alerts_reset"
	MessageTypeModelsReset = "models_reset"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

const broadcastBuffer = 256

// ErrBroadcastFull is returned when the broadcast buffer is full.
var ErrBroadcastFull = errors.New("broadcast channel full")

// Message is one stream frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ResetData accompanies reset messages.
type ResetData struct {
	Message string `json:"message"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	broadcast chan Message
}

// NewHub returns an idle hub. Call Serve to start broadcasting.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan Message, broadcastBuffer),
	}
}

// Serve delivers broadcasts until ctx is done, then closes every client.
// It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			closed := h.closeAllClients()
			logging.Info().
				Str("component", "websocket-hub").
				Int("clients_closed", closed).
				Msg("websocket hub stopped")
			return ctx.Err()
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// String names the service for the supervisor.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Name implements live.Notifier.
func (h *Hub) Name() string {
	return "stream"
}

// Notify implements live.Notifier by broadcasting the alert.
func (h *Hub) Notify(_ context.Context, alert *models.Alert) error {
	return h.BroadcastJSON(MessageTypeAlert, alert)
}

// BroadcastReset announces an alert or model reset.
func (h *Hub) BroadcastReset(messageType, message string) error {
	return h.BroadcastJSON(messageType, ResetData{Message: message})
}

// BroadcastJSON queues a message for every client without blocking.
func (h *Hub) BroadcastJSON(messageType string, data any) error {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
		return nil
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
		return ErrBroadcastFull
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetStreamClients(n)
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetStreamClients(n)
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client disconnected")
}

// sortedClients returns clients in connection order. Caller holds mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	var dropped int
	for _, c := range h.sortedClients() {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			dropped++
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	if dropped > 0 {
		metrics.SetStreamClients(n)
		logging.Warn().Int("dropped", dropped).Msg("disconnected slow websocket clients")
	}
}

func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sortedClients()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.SetStreamClients(0)
	return len(clients)
}
