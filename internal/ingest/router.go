// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package ingest

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/fleetids/internal/cache"
)

const handlerName = "fleet-log-classifier"

// newRouter builds a router with one consumer handler on cfg.Topic.
// Middleware order, outer to inner: Recoverer, Deduplicator, Throttle,
// PoisonQueue, Retry. Retry runs innermost so only exhausted messages reach
// the poison topic, and the deduplicator sees each delivery once.
func newRouter(
	cfg Config,
	sub message.Subscriber,
	poisonPub message.Publisher,
	h *Handler,
	logger watermill.LoggerAdapter,
) (*message.Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	if cfg.DedupTTL > 0 {
		dedup := middleware.Deduplicator{
			KeyFactory: func(msg *message.Message) (string, error) {
				return msg.UUID, nil
			},
			Repository: cache.NewMessageDeduplicator(cfg.DedupCapacity, cfg.DedupTTL),
		}
		router.AddMiddleware(dedup.Middleware)
	}

	if cfg.ThrottlePerSecond > 0 {
		router.AddMiddleware(middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second).Middleware)
	}

	if poisonPub != nil && cfg.PoisonTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPub, cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		router.AddMiddleware(poisonQueue)
	}

	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2.0,
			Logger:          logger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	router.AddConsumerHandler(handlerName, cfg.Topic, sub, h.Handle)
	return router, nil
}
