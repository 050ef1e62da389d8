// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package middleware provides chi-compatible HTTP middleware for the FleetIDS API.

Key Components:

  - RequestID: X-Request-ID propagation and logging context
  - Metrics: Prometheus request counters keyed by chi route pattern
  - LatencyTracker: sliding window of request latencies with percentiles
  - BodyLimit: request body size cap

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(tracker.Middleware)
	r.Use(middleware.BodyLimit(32 << 20))

Metrics are labelled with the matched route pattern ("/api/v1/classify"),
never the raw URL, so unknown paths cannot grow label cardinality.
*/
package middleware
