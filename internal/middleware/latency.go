// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/fleetids/internal/logging"
)

// RequestSample is one observed request.
type RequestSample struct {
	Route      string
	Method     string
	DurationMS float64
	StatusCode int
	Timestamp  time.Time
}

// EndpointStats aggregates the window for one method and route.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int     `json:"request_count"`
	MeanMS       float64 `json:"mean_ms"`
	P50MS        float64 `json:"p50_ms"`
	P95MS        float64 `json:"p95_ms"`
	P99MS        float64 `json:"p99_ms"`
	MaxMS        float64 `json:"max_ms"`
	Errors       int     `json:"errors"`
}

// LatencyTracker keeps the most recent requests in a bounded window.
// Training requests can take seconds; SlowThreshold defaults to 5s.
type LatencyTracker struct {
	mu            sync.RWMutex
	samples       []RequestSample
	next          int
	full          bool
	SlowThreshold time.Duration
}

// NewLatencyTracker returns a tracker keeping size samples.
func NewLatencyTracker(size int) *LatencyTracker {
	if size <= 0 {
		size = 1000
	}
	return &LatencyTracker{
		samples:       make([]RequestSample, size),
		SlowThreshold: 5 * time.Second,
	}
}

// Record adds a sample, overwriting the oldest when the window is full.
func (t *LatencyTracker) Record(s RequestSample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = s
	t.next = (t.next + 1) % len(t.samples)
	if t.next == 0 {
		t.full = true
	}
}

func (t *LatencyTracker) window() []RequestSample {
	if t.full {
		return t.samples
	}
	return t.samples[:t.next]
}

// Stats returns per-endpoint statistics, busiest endpoint first.
func (t *LatencyTracker) Stats() []EndpointStats {
	t.mu.RLock()
	byEndpoint := make(map[string][]float64)
	errs := make(map[string]int)
	for _, s := range t.window() {
		key := s.Method + " " + s.Route
		byEndpoint[key] = append(byEndpoint[key], s.DurationMS)
		if s.StatusCode >= http.StatusInternalServerError {
			errs[key]++
		}
	}
	t.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for key, durations := range byEndpoint {
		sort.Float64s(durations)
		stats = append(stats, EndpointStats{
			Endpoint:     key,
			RequestCount: len(durations),
			MeanMS:       stat.Mean(durations, nil),
			P50MS:        stat.Quantile(0.50, stat.Empirical, durations, nil),
			P95MS:        stat.Quantile(0.95, stat.Empirical, durations, nil),
			P99MS:        stat.Quantile(0.99, stat.Empirical, durations, nil),
			MaxMS:        durations[len(durations)-1],
			Errors:       errs[key],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Middleware records every request and warns about slow ones.
func (t *LatencyTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := routePattern(r)
		t.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			DurationMS: float64(elapsed) / float64(time.Millisecond),
			StatusCode: status(ww),
			Timestamp:  start,
		})

		if t.SlowThreshold > 0 && elapsed > t.SlowThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Msg("slow request")
		}
	})
}
