// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package models

import (
	"github.com/goccy/go-json"
)

// Level is the telemetry level reported by a vehicle component.
type Level string

const (
	// LevelDefault is the level of regular telemetry.
	LevelDefault Level = "DEFAULT"

	// LevelError marks an entry the component itself flagged as erroneous.
	LevelError Level = "ERROR"
)

// Label is a ground-truth label attached to training data.
type Label string

// LogEntry is one observed telemetry record.
//
// GPSPosition is only populated for pose sources ("lat,lon").
// Intrusion is only populated for labelled (training/scoring) data.
type LogEntry struct {
	VIN         string  `json:"vin" validate:"len=7"`
	AppID       string  `json:"app_id" validate:"required"`
	Level       Level   `json:"level" validate:"oneof=DEFAULT ERROR"`
	LogMessage  string  `json:"log_message" validate:"required"`
	GPSPosition *string `json:"gps_position"`
	TimeUnix    float64 `json:"time_unix"`
	LogID       string  `json:"log_id"`
	Intrusion   *Label  `json:"intrusion,omitempty"`
}

// HasLabel reports whether the entry carries a ground-truth label.
func (e LogEntry) HasLabel() bool {
	return e.Intrusion != nil && *e.Intrusion != ""
}

// LogString renders the entry as a single JSON line, the format used by
// the fleet log and by alert files.
//
//nolint:gocritic // LogEntry is passed by value on purpose
func (e LogEntry) LogString() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}

// StringPtr returns a pointer to s. Handy for optional GPS positions.
func StringPtr(s string) *string {
	return &s
}

// LabelPtr returns a pointer to l.
func LabelPtr(l Label) *Label {
	return &l
}
