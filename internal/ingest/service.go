// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
)

// Service runs the ingest router as a supervised service. Each Serve call
// builds a new router over the shared Source, so suture can restart it.
type Service struct {
	cfg     Config
	source  *Source
	handler *Handler
	logger  watermill.LoggerAdapter

	once    sync.Once
	running chan struct{}
}

// NewService returns a service feeding messages from source into proc.
func NewService(cfg Config, source *Source, proc Processor, logger watermill.LoggerAdapter) (*Service, error) {
	if source == nil || source.Subscriber == nil {
		return nil, errors.New("ingest: source is required")
	}
	if proc == nil {
		return nil, errors.New("ingest: processor is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("ingest: topic is required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Service{
		cfg:     cfg,
		source:  source,
		handler: NewHandler(proc),
		logger:  logger,
		running: make(chan struct{}),
	}, nil
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	router, err := newRouter(s.cfg, routerSubscriber{s.source.Subscriber}, s.source.Publisher, s.handler, s.logger)
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			s.handler.events.LogSubscriptionStarted(s.cfg.Topic, s.source.Name)
			s.once.Do(func() { close(s.running) })
		case <-ctx.Done():
		}
	}()

	err = router.Run(ctx)
	s.handler.events.LogRouterStopped()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("ingest router: %w", err)
	}
	return errors.New("ingest router stopped unexpectedly")
}

// Running is closed once the first router is consuming messages.
func (s *Service) Running() <-chan struct{} {
	return s.running
}

// String implements fmt.Stringer for suture logs.
func (s *Service) String() string {
	return "ingest"
}
