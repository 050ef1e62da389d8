// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package features

import (
	"fmt"
	"math"

	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/taxonomy"
)

// Vector positions shared by every category.
const (
	IndexPayload = iota
	IndexVIN
	IndexLevel
	IndexTime
	IndexGPS
)

// Encoder maps log entries to feature vectors using a verified taxonomy.
// It holds no mutable state and is safe for concurrent use.
type Encoder struct {
	tax *taxonomy.Taxonomy
}

// NewEncoder creates an encoder over tax.
func NewEncoder(tax *taxonomy.Taxonomy) *Encoder {
	return &Encoder{tax: tax}
}

// Taxonomy returns the taxonomy the encoder was built with.
func (e *Encoder) Taxonomy() *taxonomy.Taxonomy {
	return e.tax
}

// Encode builds and verifies the feature vector of entry for the source
// identified by appID. appID may carry an instance suffix.
//
//nolint:gocritic // LogEntry is passed by value on purpose
func (e *Encoder) Encode(entry models.LogEntry, appID string) ([]float64, error) {
	_, category, err := e.tax.ResolveAppID(appID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSource, err)
	}

	payload, err := e.encodePayload(category, entry.LogMessage)
	if err != nil {
		return nil, err
	}
	vin, err := VINToNumeric(entry.VIN)
	if err != nil {
		return nil, err
	}
	level, ok := e.tax.LevelValue(entry.Level)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, entry.Level)
	}

	vec := make([]float64, 0, category.VectorLength())
	vec = append(vec, payload, vin, float64(level), entry.TimeUnix)

	if category.IsPose() {
		if entry.GPSPosition == nil {
			return nil, fmt.Errorf("%w: pose source %s without gps position", ErrInvalidGPS, appID)
		}
		gps, err := GPSToNumeric(*entry.GPSPosition)
		if err != nil {
			return nil, err
		}
		vec = append(vec, gps)
	}

	if err := Verify(vec, category); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Encoder) encodePayload(c taxonomy.SourceCategory, msg string) (float64, error) {
	switch c {
	case taxonomy.CategoryGenerator:
		return EncodeGenerator(msg)
	case taxonomy.CategoryColour:
		return EncodeColour(msg)
	case taxonomy.CategoryPoseCountryCode:
		return EncodeCountryCode(msg)
	case taxonomy.CategoryPosePOI:
		return EncodePOI(e.tax, msg)
	case taxonomy.CategoryPoseTSP:
		return EncodeTSP(msg)
	default:
		return 0, fmt.Errorf("%w: no grammar for %s", ErrInvalidPayload, c)
	}
}

// Verify checks that vec is a finite vector of the category's length whose
// payload feature lies within the declared range.
func Verify(vec []float64, c taxonomy.SourceCategory) error {
	if want := c.VectorLength(); len(vec) != want {
		return fmt.Errorf("%w: %s vector has %d elements, want %d", ErrVectorShape, c, len(vec), want)
	}
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: element %d is %v", ErrVectorShape, i, v)
		}
	}
	if r := PayloadRange(c); !r.Contains(vec[IndexPayload]) {
		return fmt.Errorf("%w: %s payload %v outside [%v, %v]", ErrOutOfRange, c, vec[IndexPayload], r.Min, r.Max)
	}
	return nil
}
