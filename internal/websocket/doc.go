// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package websocket streams alerts to connected dashboard clients.

The Hub keeps the set of connected clients and fans out messages from a
buffered broadcast channel. It runs as a suture service (Serve) and
implements the live dispatcher's Notifier contract, so every alert file
written is also pushed to the stream.

Message format:

	{"type": "alert", "data": {"id": "...", "classification": "intrusion", ...}}
	{"type": "alerts_reset", "data": {"message": "Moved 3 files to logs_until_..."}}
	{"type": "models_reset", "data": {"message": "Models: deleted 11 models"}}

Clients may send {"type": "ping"} and receive {"type": "pong"}. A slow
client whose send buffer fills is disconnected rather than blocking the
broadcast.
*/
package websocket
