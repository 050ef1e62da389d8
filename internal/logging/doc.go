// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package logging provides the zerolog-based structured logger used across FleetIDS.

A global logger is configured once from main with Init and read through
package-level helpers guarded by a RWMutex:

	logging.Init(cfg.Log())
	logging.Info().Str("backend", "badger").Msg("model store opened")
	logging.Err(err).Msg("training failed")

Components keep a child logger tagged with their name:

	logger := logging.WithComponent("classifier")

Request and correlation ids travel in the context and are attached by Ctx:

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logging.Ctx(ctx).Info().Msg("message received")

SlogHandler adapts zerolog to log/slog for libraries that only speak slog,
such as sutureslog. EventLogger records the lifecycle of ingested messages.

Output is JSON by default; LOG_FORMAT=console switches to a human-readable
writer for development.
*/
package logging
