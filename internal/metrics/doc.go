// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package metrics provides Prometheus instrumentation for FleetIDS.

Metrics are registered on the default registry with promauto and exposed at
the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Classifier:
  - fleetids_classifications_total: Classified entries (counter)
    Labels: stage (rule, learner), classification (normal, intrusion)
  - fleetids_classification_errors_total: Failed classifications (counter)
    Labels: kind (no_learner, encoding, other)
  - fleetids_classification_duration_seconds: Per-entry latency (histogram)
  - fleetids_models_loaded: Models in the active model set (gauge)

Training and scoring:
  - fleetids_training_runs_total: Training runs (counter)
    Labels: mode (two_class, multiclass), result (success, error)
  - fleetids_training_duration_seconds: Training latency (histogram)
  - fleetids_training_samples_total: Labelled entries trained on (counter)
  - fleetids_score_accuracy: Last accuracy per source (gauge)
    Labels: source ("_mean" holds the unweighted mean)

Alerts:
  - fleetids_alerts_written_total: Alert files (counter)
    Labels: classification
  - fleetids_alerts_archived_total: Alert files archived by a log reset (counter)

Ingest:
  - fleetids_ingest_messages_total: Consumed messages (counter)
    Labels: result (processed, parse_failed, invalid, error)
  - fleetids_ingest_processing_duration_seconds: Handler latency (histogram)

API:
  - fleetids_api_requests_total, fleetids_api_request_duration_seconds,
    fleetids_api_active_requests

# Usage

	start := time.Now()
	result, err := engine.Classify(ctx, entry)
	metrics.RecordClassification("learner", string(result.Classification), time.Since(start))
*/
package metrics
