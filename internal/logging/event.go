// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventLogger logs the lifecycle of consumed telemetry messages. Every event
// carries the correlation id of its context.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger returns an EventLogger on the global logger.
func NewEventLogger() *EventLogger {
	return NewEventLoggerWithLogger(Logger())
}

// NewEventLoggerWithLogger returns an EventLogger on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger.With().Str("component", "ingest").Logger()}
}

func (e *EventLogger) with(ctx context.Context) *zerolog.Logger {
	l := e.logger
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With().Str("correlation_id", id).Logger()
	}
	return &l
}

// LogMessageReceived logs a decoded message.
func (e *EventLogger) LogMessageReceived(ctx context.Context, msgID, appID string) {
	e.with(ctx).Debug().
		Str("message_id", msgID).
		Str("app_id", appID).
		Msg("message received")
}

// LogMessageProcessed logs a message that went through the dispatcher.
// alertPath is empty when no alert was written.
func (e *EventLogger) LogMessageProcessed(ctx context.Context, msgID, alertPath string, d time.Duration) {
	ev := e.with(ctx).Debug().
		Str("message_id", msgID).
		Dur("duration", d)
	if alertPath != "" {
		ev = ev.Str("alert", alertPath)
	}
	ev.Msg("message processed")
}

// LogMessageRejected logs a message dropped because it cannot be decoded or
// validated. Rejected messages are acknowledged and never retried.
func (e *EventLogger) LogMessageRejected(ctx context.Context, msgID string, err error) {
	e.with(ctx).Warn().
		Err(err).
		Str("message_id", msgID).
		Msg("message rejected")
}

// LogMessageFailed logs a processing failure that will be retried.
func (e *EventLogger) LogMessageFailed(ctx context.Context, msgID string, err error) {
	e.with(ctx).Error().
		Err(err).
		Str("message_id", msgID).
		Msg("message processing failed")
}

// LogSubscriptionStarted logs the start of consumption on topic.
func (e *EventLogger) LogSubscriptionStarted(topic, backend string) {
	e.logger.Info().
		Str("topic", topic).
		Str("backend", backend).
		Msg("subscription started")
}

// LogRouterStopped logs router shutdown.
func (e *EventLogger) LogRouterStopped() {
	e.logger.Info().Msg("message router stopped")
}
