// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package models defines the data structures shared by the FleetIDS packages.

Key Components:

  - LogEntry: One telemetry record emitted by a simulated vehicle component
  - IdsResult: Output of a classification (normal/intrusion plus confidence)
  - ModelType: Training mode shared by every model of a model directory
  - StoreStatus: Existence summary of a model directory (none/some/all)
  - APIResponse: Standardized HTTP response wrapper

Log entries are constructed by the ingestion side and passed by value into the
classifier. Nothing in this repository mutates an entry after construction.

Usage Example:

	entry := models.LogEntry{
	    VIN:        "A123456",
	    AppID:      "COLOUR_1",
	    Level:      models.LevelDefault,
	    LogMessage: "12,155,1",
	    TimeUnix:   1514764800,
	    LogID:      "7f9c",
	}

	result, err := engine.Classify(ctx, entry)

JSON Marshaling:

Field names follow the wire names produced by the fleet logger node
(vin, app_id, level, log_message, gps_position, time_unix, log_id, intrusion).
*/
package models
