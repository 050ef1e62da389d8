// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package ingest

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/models"
)

// Publisher sends LogEntry messages to the ingest topic.
type Publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher returns a publisher writing to topic.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic}
}

// NewMessage encodes entry as a message. The correlation id of ctx, if any,
// travels in the metadata.
func NewMessage(ctx context.Context, entry models.LogEntry) (*message.Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	return msg, nil
}

// Publish sends entries as one batch.
func (p *Publisher) Publish(ctx context.Context, entries ...models.LogEntry) error {
	msgs := make([]*message.Message, 0, len(entries))
	for i := range entries {
		msg, err := NewMessage(ctx, entries[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.pub.Publish(p.topic, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}
