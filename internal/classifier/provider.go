// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"context"
	"sync"

	"github.com/tomtom215/fleetids/internal/models"
)

// Provider constructs the process-wide Engine. Concurrent first callers block
// until one construction finishes; the first successful engine is kept for
// the life of the provider. A failed construction is not cached, so the next
// call builds again.
type Provider struct {
	mu     sync.Mutex
	build  func(ctx context.Context) (*Engine, error)
	engine *Engine
}

// NewProvider returns a provider that builds its engine with build.
func NewProvider(build func(ctx context.Context) (*Engine, error)) *Provider {
	return &Provider{build: build}
}

// NewOptionsProvider returns a provider that calls NewEngine with opts.
//
//nolint:gocritic // Options is copied once into the closure
func NewOptionsProvider(opts Options) *Provider {
	return NewProvider(func(ctx context.Context) (*Engine, error) {
		return NewEngine(ctx, opts)
	})
}

// Engine returns the engine, constructing it on first use or after a failed
// construction.
func (p *Provider) Engine(ctx context.Context) (*Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil {
		return p.engine, nil
	}
	e, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.engine = e
	return e, nil
}

// Classify builds the engine if needed and classifies entry with it.
//
//nolint:gocritic // LogEntry is passed by value through the live path
func (p *Provider) Classify(ctx context.Context, entry models.LogEntry) (models.IdsResult, error) {
	e, err := p.Engine(ctx)
	if err != nil {
		return models.IdsResult{}, err
	}
	return e.Classify(ctx, entry)
}
