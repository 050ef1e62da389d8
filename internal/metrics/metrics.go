// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Classification throughput per stage and verdict
// - Training and scoring runs
// - Alert files, archives and notifications
// - Ingest message handling
// - API endpoint latency and throughput

var (
	// Classifier Metrics
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_classifications_total",
			Help: "Total number of classified log entries",
		},
		[]string{"stage", "classification"}, // stage: "rule", "learner"
	)

	ClassificationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_classification_errors_total",
			Help: "Total number of failed classifications",
		},
		[]string{"kind"}, // "no_learner", "encoding", "other"
	)

	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetids_classification_duration_seconds",
			Help:    "Duration of single entry classification in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
	)

	ModelsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetids_models_loaded",
			Help: "Number of per-source models in the active model set",
		},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_training_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"mode", "result"}, // mode: "two_class", "multiclass"; result: "success", "error"
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetids_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	TrainingSamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetids_training_samples_total",
			Help: "Total number of labelled entries used for training",
		},
	)

	ScoreAccuracy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetids_score_accuracy",
			Help: "Accuracy of the last scoring run per source id (\"_mean\" for the unweighted mean)",
		},
		[]string{"source"},
	)

	// Alert Metrics
	AlertsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_alerts_written_total",
			Help: "Total number of alert files written",
		},
		[]string{"classification"},
	)

	AlertsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetids_alerts_archived_total",
			Help: "Total number of alert files moved into archive folders",
		},
	)

	AlertNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_alert_notifications_total",
			Help: "Total number of alert notifications by notifier and result",
		},
		[]string{"notifier", "result"}, // result: "sent", "failed", "breaker_open"
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetids_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetids_alert_stream_clients",
			Help: "Number of connected alert stream websocket clients",
		},
	)

	// Ingest Metrics
	IngestMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_ingest_messages_total",
			Help: "Total number of telemetry messages consumed",
		},
		[]string{"result"}, // "processed", "parse_failed", "invalid", "error"
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetids_ingest_processing_duration_seconds",
			Help:    "Duration of telemetry message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetids_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetids_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetids_api_active_requests",
			Help: "Number of active API requests",
		},
	)
)

// RecordClassification records a successful classification.
func RecordClassification(stage, classification string, duration time.Duration) {
	ClassificationsTotal.WithLabelValues(stage, classification).Inc()
	ClassificationDuration.Observe(duration.Seconds())
}

// RecordClassificationError records a failed classification.
func RecordClassificationError(kind string) {
	ClassificationErrors.WithLabelValues(kind).Inc()
}

// RecordTraining records a training run.
func RecordTraining(mode string, samples int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	} else {
		TrainingSamples.Add(float64(samples))
	}
	TrainingRuns.WithLabelValues(mode, result).Inc()
	TrainingDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordScore publishes per-source accuracy and the mean of a scoring run.
func RecordScore(perSource map[string]float64, mean float64) {
	for source, acc := range perSource {
		ScoreAccuracy.WithLabelValues(source).Set(acc)
	}
	ScoreAccuracy.WithLabelValues("_mean").Set(mean)
}

// SetModelsLoaded updates the size of the active model set.
func SetModelsLoaded(n int) {
	ModelsLoaded.Set(float64(n))
}

// RecordAlert records an alert file.
func RecordAlert(classification string) {
	AlertsWritten.WithLabelValues(classification).Inc()
}

// RecordAlertArchive records alert files moved by a log reset.
func RecordAlertArchive(moved int) {
	AlertsArchived.Add(float64(moved))
}

// RecordNotification records one alert delivery attempt.
func RecordNotification(notifier, result string) {
	AlertNotifications.WithLabelValues(notifier, result).Inc()
}

// SetBreakerState records a circuit breaker transition.
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// SetStreamClients records the alert stream client count.
func SetStreamClients(n int) {
	StreamClients.Set(float64(n))
}

// RecordIngest records a consumed telemetry message.
func RecordIngest(result string, duration time.Duration) {
	IngestMessages.WithLabelValues(result).Inc()
	IngestDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
