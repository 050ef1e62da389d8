// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/logging"
)

// EngineSource builds the shared engine. *classifier.Provider satisfies it.
type EngineSource interface {
	Engine(ctx context.Context) (*classifier.Engine, error)
}

// EngineWarmupService builds the engine once at startup and logs the
// installed model set. It never restarts: a built engine is kept by the
// source and a failed build is retried by the next request that needs it.
type EngineWarmupService struct {
	source EngineSource
}

// NewEngineWarmupService returns a warmup service for source.
func NewEngineWarmupService(source EngineSource) *EngineWarmupService {
	return &EngineWarmupService{source: source}
}

// Serve implements suture.Service.
func (s *EngineWarmupService) Serve(ctx context.Context) error {
	start := time.Now()
	e, err := s.source.Engine(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("classifier engine unavailable")
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
	}

	status, err := e.Status(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("could not read model store status")
		return suture.ErrDoNotRestart
	}
	logging.Info().
		Str("model_type", string(status.ModelType)).
		Str("store", string(status.StoreStatus)).
		Int("loaded", status.Loaded).
		Int("sources", status.Sources).
		Bool("learner", e.HasLearner()).
		Dur("duration", time.Since(start)).
		Msg("classifier engine ready")
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer.
func (s *EngineWarmupService) String() string {
	return "engine-warmup"
}
