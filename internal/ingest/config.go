// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package ingest

import "time"

// Backend names.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// Config configures the ingest router.
type Config struct {
	// Topic carries JSON LogEntry messages.
	Topic string

	// PoisonTopic receives messages that failed after all retries.
	// Empty disables the poison queue.
	PoisonTopic string

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// ThrottlePerSecond caps handled messages per second. Zero disables.
	ThrottlePerSecond int64

	// DedupTTL drops messages whose UUID was seen within the window.
	// Zero disables deduplication.
	DedupTTL      time.Duration
	DedupCapacity int

	// CloseTimeout bounds handler shutdown.
	CloseTimeout time.Duration
}

// DefaultConfig returns router defaults for the fleet_logs topic.
func DefaultConfig() Config {
	return Config{
		Topic:                "fleet_logs",
		PoisonTopic:          "fleet_logs_poison",
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		DedupCapacity:        10000,
		CloseTimeout:         30 * time.Second,
	}
}

// NATSConfig configures the JetStream source.
type NATSConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration
}

// DefaultNATSConfig returns JetStream defaults for a local server.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:              "nats://127.0.0.1:4222",
		DurableName:      "fleetids",
		QueueGroup:       "classifiers",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// EmbeddedConfig configures an in-process JetStream server for
// single-node deployments.
type EmbeddedConfig struct {
	Host       string
	Port       int
	StoreDir   string
	MaxMemory  int64
	MaxStore   int64
	MaxPayload int32
	Ready      time.Duration
}

// DefaultEmbeddedConfig returns limits sized for one vehicle fleet.
func DefaultEmbeddedConfig() EmbeddedConfig {
	return EmbeddedConfig{
		Host:       "127.0.0.1",
		Port:       4222,
		StoreDir:   "data/jetstream",
		MaxMemory:  256 << 20,
		MaxStore:   2 << 30,
		MaxPayload: 1 << 20,
		Ready:      30 * time.Second,
	}
}
