// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package features turns log entries into fixed-length numeric vectors.

Every vector has the layout

	[payload, vin, level, time_unix]        generator and colour sources
	[payload, vin, level, time_unix, gps]   pose sources

The payload feature is derived from the log message with a grammar chosen by
the source category (see taxonomy.SourceCategory). All grammars, the VIN and
the GPS encoders are built on one primitive, Concat, which joins zero-padded
decimal strings and parses the result as a float:

	Concat([]int64{13, 156, 2}, 3)  // "013156002" -> 13156002

After encoding, Verify checks the vector length, that every element is finite,
and that the payload feature lies within its category's declared range. Any
failure wraps ErrEncoding and aborts that entry only; batch callers decide
whether to skip or stop.

LabelToClass and ClassToLabel map textual labels to integer classes in
two-class or multi-class mode.
*/
package features
