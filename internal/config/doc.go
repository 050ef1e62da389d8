// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package config provides layered configuration for FleetIDS.

Configuration is loaded with koanf in three layers, each overriding the
previous one:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file, taken from CONFIG_PATH or the first existing
    entry of DefaultConfigPaths
 3. Environment variables, mapped explicitly by envMappings

# Sections

  - models: model store backend (file or badger) and path
  - alerts: alert directory, console banner, stream and webhook
  - classifier: arbitration thresholds (100/60/70 by default)
  - training: perceptron epochs and learning rate
  - taxonomy: optional taxonomy override file
  - server: HTTP API address, timeouts, CORS and rate limiting
  - ingest: telemetry consumer (in-process or NATS JetStream)
  - logging: zerolog level, format and caller info

# Environment Variables

Models and alerts:
  - MODELS_BACKEND, MODELS_PATH, MODELS_SYNC_WRITES
  - ALERTS_DIR, ALERTS_VERBOSE, ALERTS_STREAM_ENABLED
  - ALERTS_WEBHOOK_URL, ALERTS_WEBHOOK_TOKEN, ALERTS_WEBHOOK_TIMEOUT
  - ALERTS_WEBHOOK_MIN_INTERVAL, ALERTS_BREAKER_FAILURES, ALERTS_BREAKER_TIMEOUT

Classifier:
  - RULE_CERTAINTY, LEARNER_OVERRIDE, LEARNER_CONFIDENCE
  - TRAINING_EPOCHS, TRAINING_LEARNING_RATE
  - TAXONOMY_PATH

HTTP server:
  - HTTP_ENABLED, HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - HTTP_MAX_BODY_BYTES, CORS_ORIGINS (comma-separated)
  - RATE_LIMIT_REQS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Ingest:
  - INGEST_ENABLED, INGEST_BACKEND, INGEST_TOPIC, INGEST_POISON_TOPIC
  - NATS_URL, NATS_DURABLE_NAME, NATS_QUEUE_GROUP
  - INGEST_RETRY_COUNT, INGEST_CLOSE_TIMEOUT
  - INGEST_THROTTLE, INGEST_DEDUP_TTL, INGEST_DEDUP_CAPACITY
  - NATS_EMBEDDED, NATS_EMBEDDED_PORT, NATS_STORE_DIR (nats build tag)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(cfg.Log())
*/
package config
