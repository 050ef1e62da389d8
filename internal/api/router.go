// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/fleetids/internal/middleware"
	"github.com/tomtom215/fleetids/internal/models"
)

// Config holds HTTP server settings.
type Config struct {
	Host            string
	Port            int
	Timeout         time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	CORSOrigins []string

	RateLimitReqs     int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultConfig returns the defaults used by the config package.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            5000,
		Timeout:         30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    32 << 20,
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   100,
		RateLimitWindow: time.Minute,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewRouter mounts every route on a chi mux.
func NewRouter(h *Handler, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         86400,
	}))
	r.Use(middleware.Metrics)
	r.Use(h.latency.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, &models.APIError{Code: "NOT_FOUND", Message: "route not found"}, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, &models.APIError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"}, nil)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if !cfg.RateLimitDisabled && cfg.RateLimitReqs > 0 {
			r.Use(httprate.Limit(cfg.RateLimitReqs, cfg.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					respondError(w, r, http.StatusTooManyRequests, &models.APIError{
						Code:    "TOO_MANY_REQUESTS",
						Message: "rate limit exceeded",
					}, nil)
				}),
			))
		}
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

		r.Get("/status", h.Status)
		r.Get("/status/requests", h.RequestStats)
		r.Post("/classify", h.Classify)
		r.Post("/logs", h.Logs)
		r.Post("/train", h.Train)
		r.Post("/score", h.Score)
		r.Post("/models/reset", h.ResetModels)
		r.Post("/alerts/reset", h.ResetAlerts)
		r.Get("/alerts/stream", h.AlertStream)
	})

	return r
}

// NewServer returns an http.Server serving handler on cfg.Addr.
func NewServer(handler http.Handler, cfg Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
		IdleTimeout:       2 * cfg.Timeout,
	}
}

// String describes the listen address for logs.
func (c Config) String() string {
	return fmt.Sprintf("http://%s", c.Addr())
}
