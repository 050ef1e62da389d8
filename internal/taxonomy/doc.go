// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package taxonomy holds the versioned registry of FleetIDS domain constants:
source ids and their categories, telemetry levels, labels and point-of-interest
mappings.

The registry is a YAML artifact embedded in the binary (taxonomy.yaml). Each
section carries a SHA-256 checksum over a canonical line form, so an edit that
is not re-stamped is caught at load time:

	tax, err := taxonomy.Default()
	if errors.Is(err, taxonomy.ErrIntegrity) {
	    // refuse to start
	}

Operators may point the service at an override file with LoadFile; it goes
through the same version, checksum and structural checks.

Source ids reported by vehicles carry an instance suffix ("GAUSSIAN_1").
StripAppID removes it, and ResolveAppID additionally yields the category,
which selects the payload grammar used by the features package.
*/
package taxonomy
