// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package taxonomy

import "fmt"

// SourceCategory is the closed set of telemetry source kinds. The category
// selects the payload grammar and the feature vector length.
type SourceCategory int

const (
	CategoryGenerator SourceCategory = iota
	CategoryColour
	CategoryPoseCountryCode
	CategoryPosePOI
	CategoryPoseTSP
)

// Categories lists every category in canonical order.
var Categories = []SourceCategory{
	CategoryGenerator,
	CategoryColour,
	CategoryPoseCountryCode,
	CategoryPosePOI,
	CategoryPoseTSP,
}

// String returns the name used in taxonomy.yaml.
func (c SourceCategory) String() string {
	switch c {
	case CategoryGenerator:
		return "generator"
	case CategoryColour:
		return "colour"
	case CategoryPoseCountryCode:
		return "country_code"
	case CategoryPosePOI:
		return "poi"
	case CategoryPoseTSP:
		return "tsp"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory resolves a taxonomy.yaml category name.
func ParseCategory(s string) (SourceCategory, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown source category %q", s)
}

// IsPose reports whether sources of this category carry a GPS position.
func (c SourceCategory) IsPose() bool {
	return c == CategoryPoseCountryCode || c == CategoryPosePOI || c == CategoryPoseTSP
}

// VectorLength is the number of features an encoded entry of this category has:
// payload, vin, level, time_unix and, for pose sources, gps.
func (c SourceCategory) VectorLength() int {
	if c.IsPose() {
		return 5
	}
	return 4
}
