// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package api exposes the classifier and the live dispatcher over HTTP.

Routes:

	GET  /health                  liveness
	GET  /metrics                 Prometheus exposition
	GET  /api/v1/status           installed model set
	GET  /api/v1/status/requests  request latency window
	POST /api/v1/classify         classify one entry, no side effects
	POST /api/v1/logs             live path: classify and write alerts
	POST /api/v1/train            train or extend the model set
	POST /api/v1/score            per-source accuracy on labelled entries
	POST /api/v1/models/reset     delete all models
	POST /api/v1/alerts/reset     archive alert files
	GET  /api/v1/alerts/stream    websocket feed of alerts and resets

Every JSON response uses the models.APIResponse envelope. Classifier errors
map to status codes by sentinel:

	validation failure        400 VALIDATION_ERROR
	training already running  409 TRAINING_IN_PROGRESS
	precondition failure      409 PRECONDITION_FAILED
	encoding failure          422 ENCODING_ERROR
	unsupported label set     501 NOT_IMPLEMENTED
	integrity failure         500 INTEGRITY_ERROR

When a Publisher is configured, POST /api/v1/logs enqueues the entries on the
ingest topic and answers 202 instead of processing them inline.
*/
package api
