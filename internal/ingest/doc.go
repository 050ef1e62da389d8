// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package ingest feeds vehicle telemetry from a message bus into the live
dispatcher.

Each message carries one JSON-encoded LogEntry. The Handler decodes and
validates it, then calls the dispatcher, which classifies the entry and
writes an alert file when needed.

# Message Flow

	Publisher ──> topic ──> Router (Recoverer, Retry, PoisonQueue) ──> Handler ──> Dispatcher

Messages that cannot be decoded, fail validation or cannot be encoded are
acknowledged and counted as rejected. Retrying them would never succeed.
Other failures, such as an unwritable alert directory, are retried with
exponential backoff and finally routed to the poison topic.

# Backends

  - gochannel: in-process Watermill pub/sub, always available
  - nats: NATS JetStream through watermill-nats, built with -tags nats

# Supervision

Service implements suture.Service. Every Serve call builds a fresh router
over the shared Source, so the supervisor can restart it after a failure.
*/
package ingest
