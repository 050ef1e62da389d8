// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package models

import "time"

// Alert is a recorded intrusion or unclassifiable entry. Path names the
// alert file written for it.
type Alert struct {
	ID             string         `json:"id"`
	Path           string         `json:"path"`
	DetectedAt     time.Time      `json:"detected_at"`
	Classification Classification `json:"classification"`
	Confidence     int            `json:"confidence"`
	Entry          LogEntry       `json:"entry"`
}
