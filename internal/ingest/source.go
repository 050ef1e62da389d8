// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package ingest

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/fleetids/internal/logging"
)

// ErrNATSNotCompiled is returned by NewNATSSource in builds without the nats tag.
var ErrNATSNotCompiled = errors.New("NATS support not compiled in (build with -tags nats)")

// Source pairs the publisher and subscriber of one message bus.
type Source struct {
	Name       string
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Close closes the subscriber and, if distinct, the publisher.
func (s *Source) Close() error {
	errSub := s.Subscriber.Close()
	if any(s.Publisher) == any(s.Subscriber) {
		return errSub
	}
	return errors.Join(errSub, s.Publisher.Close())
}

// NewLogger adapts the application logger for Watermill.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// NewGoChannelSource returns an in-process source. Published messages are
// only delivered while a subscriber is running.
func NewGoChannelSource(logger watermill.LoggerAdapter) *Source {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, logger)
	return &Source{Name: BackendGoChannel, Publisher: pubsub, Subscriber: pubsub}
}

// routerSubscriber hides Close from the router so a restarted Service can
// subscribe again. Subscriptions still end with the router's context.
type routerSubscriber struct {
	message.Subscriber
}

func (routerSubscriber) Close() error { return nil }
