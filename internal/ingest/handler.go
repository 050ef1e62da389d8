// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/features"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/metrics"
	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/validation"
)

// Ingest results used for metrics.
const (
	resultAlert    = "alert"
	resultNormal   = "normal"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// ErrRejected marks messages that are dropped without retry.
var ErrRejected = errors.New("message rejected")

// Processor consumes decoded entries. *live.Dispatcher satisfies it.
type Processor interface {
	Process(ctx context.Context, entry models.LogEntry) (string, error)
}

// Handler decodes telemetry messages and hands them to a Processor.
type Handler struct {
	proc   Processor
	events *logging.EventLogger
}

// NewHandler returns a handler feeding proc.
func NewHandler(proc Processor) *Handler {
	return &Handler{proc: proc, events: logging.NewEventLogger()}
}

// Handle implements message.NoPublishHandlerFunc. Rejected messages return
// nil so the router acknowledges them.
func (h *Handler) Handle(msg *message.Message) error {
	start := time.Now()
	ctx := msg.Context()
	if id := middleware.MessageCorrelationID(msg); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	} else {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	path, err := h.process(ctx, msg)
	switch {
	case errors.Is(err, ErrRejected):
		h.events.LogMessageRejected(ctx, msg.UUID, err)
		metrics.RecordIngest(resultRejected, time.Since(start))
		return nil
	case err != nil:
		h.events.LogMessageFailed(ctx, msg.UUID, err)
		metrics.RecordIngest(resultFailed, time.Since(start))
		return err
	}

	result := resultNormal
	if path != "" {
		result = resultAlert
	}
	metrics.RecordIngest(result, time.Since(start))
	h.events.LogMessageProcessed(ctx, msg.UUID, path, time.Since(start))
	return nil
}

func (h *Handler) process(ctx context.Context, msg *message.Message) (string, error) {
	entry, err := DecodeEntry(msg.Payload)
	if err != nil {
		return "", err
	}
	h.events.LogMessageReceived(ctx, msg.UUID, entry.AppID)

	path, err := h.proc.Process(ctx, entry)
	if err == nil {
		return path, nil
	}
	if permanent(err) {
		return "", fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return "", err
}

// permanent reports whether retrying err can never succeed for the same
// message. A missing learner is permanent for the message: the rule stage
// has already judged it uncertain.
func permanent(err error) bool {
	return errors.Is(err, features.ErrEncoding) ||
		errors.Is(err, classifier.ErrPrecondition) ||
		errors.Is(err, classifier.ErrNotImplemented)
}

// DecodeEntry parses and validates a JSON LogEntry payload.
func DecodeEntry(payload []byte) (models.LogEntry, error) {
	var entry models.LogEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: decode: %v", ErrRejected, err)
	}
	if verr := validation.ValidateStruct(&entry); verr != nil {
		return models.LogEntry{}, fmt.Errorf("%w: %v", ErrRejected, verr)
	}
	return entry, nil
}
