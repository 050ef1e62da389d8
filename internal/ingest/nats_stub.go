// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

//go:build !nats

package ingest

import "github.com/ThreeDotsLabs/watermill"

// NewNATSSource is unavailable without the nats build tag.
func NewNATSSource(_ NATSConfig, _ watermill.LoggerAdapter) (*Source, error) {
	return nil, ErrNATSNotCompiled
}

const natsCompiled = false
