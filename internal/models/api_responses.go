// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" (see Data) or "error" (see Error).
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"classification": "intrusion", "confidence": 100},
//	  "metadata": {"timestamp": "2026-05-04T12:00:00Z", "duration_ms": 2}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "MODELS_EXIST", "message": "models already exist"},
//	  "metadata": {"timestamp": "2026-05-04T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response timing information.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// APIError is a machine-readable error.
//
// Common error codes:
//   - VALIDATION_ERROR: the request body failed validation
//   - ENCODING_ERROR: an entry could not be turned into a feature vector
//   - PRECONDITION_FAILED: models missing, present or of the wrong type
//   - TRAINING_IN_PROGRESS: another training run holds the engine
//   - INTEGRITY_ERROR: taxonomy or persisted model failed verification
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TrainRequest is the body of POST /api/v1/train.
type TrainRequest struct {
	Entries    []LogEntry `json:"entries" validate:"min=1,dive"`
	MultiClass bool       `json:"multi_class"`
	Extend     bool       `json:"extend"`
}

// ScoreRequest is the body of POST /api/v1/score.
type ScoreRequest struct {
	Entries    []LogEntry `json:"entries" validate:"min=1,dive"`
	MultiClass bool       `json:"multi_class"`
}

// TrainResponse summarizes a completed training run.
type TrainResponse struct {
	ModelType ModelType `json:"model_type"`
	Sources   []string  `json:"sources"`
	Samples   int       `json:"samples"`
}

// ScoreResponse reports per-source accuracy and its unweighted mean.
type ScoreResponse struct {
	Accuracy  float64            `json:"accuracy"`
	PerSource map[string]float64 `json:"per_source"`
}

// StatusResponse describes the currently installed model set.
type StatusResponse struct {
	ModelType   ModelType   `json:"model_type"`
	StoreStatus StoreStatus `json:"store_status"`
	Loaded      int         `json:"loaded"`
	Sources     int         `json:"sources"`
}

// MessageResponse carries a human-readable outcome, used by reset endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// LogsRequest is the body of POST /api/v1/logs.
type LogsRequest struct {
	Entries []LogEntry `json:"entries" validate:"min=1,dive"`
}

// LogsResponse reports the live processing outcome. Alerts lists the alert
// files written; Queued counts entries handed to the ingest topic instead.
type LogsResponse struct {
	Processed int      `json:"processed"`
	Alerts    []string `json:"alerts"`
	Queued    int      `json:"queued,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Learner       bool    `json:"learner"`
}
