// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

//go:build !nats

package ingest

// EmbeddedServer is unavailable without the nats build tag.
type EmbeddedServer struct{}

// StartEmbeddedServer is unavailable without the nats build tag.
func StartEmbeddedServer(_ EmbeddedConfig) (*EmbeddedServer, error) {
	return nil, ErrNATSNotCompiled
}

// ClientURL returns "".
func (s *EmbeddedServer) ClientURL() string { return "" }

// Running reports false.
func (s *EmbeddedServer) Running() bool { return false }

// Shutdown is a no-op.
func (s *EmbeddedServer) Shutdown() {}
