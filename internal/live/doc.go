// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package live turns classification results into file-based alerts.

A Dispatcher classifies each incoming entry and writes one human-readable
alert file per detection into its alert directory:

	Intrusion detected | Monday January 01 2018 - 00:00:00

	Classification: intrusion
	Confidence: 100 %

	Data received:
	{"vin":"A123456","app_id":"GAUSSIAN_1",...}

Results that are normal with a positive confidence are treated as non-events.
A normal result with zero confidence is recorded like an intrusion.

ResetLog archives every pending alert file into a timestamped subfolder
(logs_until_YYYY-MM-DD_HH:MM:SS). Alerts are never deleted.
*/
package live
