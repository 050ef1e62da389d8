// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/ingest"
	"github.com/tomtom215/fleetids/internal/live"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/middleware"
	"github.com/tomtom215/fleetids/internal/models"
	ws "github.com/tomtom215/fleetids/internal/websocket"
)

// Version is reported by the health endpoint.
var Version = "dev"

// EngineSource yields the shared engine. *classifier.Provider satisfies it.
type EngineSource interface {
	Engine(ctx context.Context) (*classifier.Engine, error)
}

// Handler serves the API routes.
type Handler struct {
	engines    EngineSource
	dispatcher *live.Dispatcher
	publisher  *ingest.Publisher
	latency    *middleware.LatencyTracker
	stream     *ws.Hub
	origins    []string
	startTime  time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPublisher routes POST /api/v1/logs through the ingest topic.
func WithPublisher(p *ingest.Publisher) HandlerOption {
	return func(h *Handler) { h.publisher = p }
}

// WithLatencyTracker replaces the default request latency window.
func WithLatencyTracker(t *middleware.LatencyTracker) HandlerOption {
	return func(h *Handler) { h.latency = t }
}

// WithAlertStream serves the alert websocket from hub, accepting the given
// origins ("*" for any).
func WithAlertStream(hub *ws.Hub, origins []string) HandlerOption {
	return func(h *Handler) {
		h.stream = hub
		h.origins = origins
	}
}

// NewHandler returns a handler over engines and dispatcher.
func NewHandler(engines EngineSource, dispatcher *live.Dispatcher, opts ...HandlerOption) (*Handler, error) {
	if engines == nil {
		return nil, errors.New("api: engine source is required")
	}
	if dispatcher == nil {
		return nil, errors.New("api: dispatcher is required")
	}
	h := &Handler{
		engines:    engines,
		dispatcher: dispatcher,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.latency == nil {
		h.latency = middleware.NewLatencyTracker(1000)
	}
	return h, nil
}

// engine returns the engine or writes a 503.
func (h *Handler) engine(w http.ResponseWriter, r *http.Request) (*classifier.Engine, bool) {
	e, err := h.engines.Engine(r.Context())
	if err == nil {
		return e, true
	}
	status, code := classifyError(err)
	if code == ErrCodeInternal {
		status, code = http.StatusServiceUnavailable, ErrCodeUnavailable
	}
	respondError(w, r, status, &models.APIError{
		Code:    code,
		Message: "classifier unavailable: " + err.Error(),
	}, err)
	return nil, false
}

// Health reports liveness. An engine that failed to build makes the
// service degraded, not down: alerts can still be archived.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := models.HealthResponse{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if e, err := h.engines.Engine(r.Context()); err == nil {
		resp.Learner = e.HasLearner()
	} else {
		resp.Status = "degraded"
	}
	respondSuccess(w, http.StatusOK, resp, start)
}

// Status describes the installed model set.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	status, err := e.Status(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, status, start)
}

// RequestStats returns the latency window.
func (h *Handler) RequestStats(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, h.latency.Stats(), time.Now())
}

// Classify classifies one entry without writing alerts.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var entry models.LogEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	result, err := e.Classify(r.Context(), entry)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, result, start)
}

// Logs feeds entries to the live dispatcher, or to the ingest topic when a
// publisher is configured.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.LogsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), req.Entries...); err != nil {
			respondFailure(w, r, err)
			return
		}
		respondSuccess(w, http.StatusAccepted, models.LogsResponse{
			Alerts: []string{},
			Queued: len(req.Entries),
		}, start)
		return
	}

	resp := models.LogsResponse{Alerts: []string{}}
	for i := range req.Entries {
		path, err := h.dispatcher.Process(r.Context(), req.Entries[i])
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		resp.Processed++
		if path != "" {
			resp.Alerts = append(resp.Alerts, path)
		}
	}
	respondSuccess(w, http.StatusOK, resp, start)
}

// Train trains a new model set or extends the installed one.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.TrainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	report, err := e.Train(r.Context(), req.Entries, req.MultiClass, req.Extend)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.TrainResponse{
		ModelType: report.ModelType,
		Sources:   report.Sources,
		Samples:   report.Samples,
	}, start)
}

// Score evaluates the installed models on labelled entries.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	report, err := e.Score(r.Context(), req.Entries, req.MultiClass)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.ScoreResponse{
		Accuracy:  report.Mean,
		PerSource: report.PerSource,
	}, start)
}

// ResetModels deletes every stored model.
func (h *Handler) ResetModels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	msg, err := e.ResetModels(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	h.announce(ws.MessageTypeModelsReset, msg)
	respondSuccess(w, http.StatusOK, models.MessageResponse{Message: msg}, start)
}

// ResetAlerts archives the alert files.
func (h *Handler) ResetAlerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	msg, err := h.dispatcher.ResetLog()
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	h.announce(ws.MessageTypeAlertsReset, msg)
	respondSuccess(w, http.StatusOK, models.MessageResponse{Message: msg}, start)
}

// AlertStream upgrades the request to a websocket fed by the alert hub.
func (h *Handler) AlertStream(w http.ResponseWriter, r *http.Request) {
	if h.stream == nil {
		respondError(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeUnavailable,
			Message: "alert stream is not enabled",
		}, nil)
		return
	}

	upgrader := ws.Upgrader(h.origins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.stream.Attach(conn)
}

func (h *Handler) announce(messageType, message string) {
	if h.stream == nil {
		return
	}
	_ = h.stream.BroadcastReset(messageType, message)
}
