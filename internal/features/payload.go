// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/fleetids/internal/taxonomy"
)

// Range is the closed interval a payload feature must fall into.
type Range struct {
	Min, Max float64
}

// Contains reports whether f lies within r.
func (r Range) Contains(f float64) bool {
	return f >= r.Min && f <= r.Max
}

// payloadRanges are the sanity bounds per category. Generators are unbounded.
var payloadRanges = map[taxonomy.SourceCategory]Range{
	taxonomy.CategoryGenerator:       {Min: math.Inf(-1), Max: math.Inf(1)},
	taxonomy.CategoryColour:          {Min: 1001001, Max: 256256256},
	taxonomy.CategoryPoseCountryCode: {Min: 6565, Max: 9090},
	taxonomy.CategoryPosePOI:         {Min: 11, Max: 99},
	taxonomy.CategoryPoseTSP:         {Min: 1001001001, Max: 500500500500},
}

// PayloadRange returns the declared range of a category's payload feature.
func PayloadRange(c taxonomy.SourceCategory) Range {
	return payloadRanges[c]
}

// EncodeGenerator parses a generator payload; the number is the feature.
func EncodeGenerator(msg string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(msg), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: generator payload %q", ErrInvalidPayload, msg)
	}
	return f, nil
}

// EncodeColour encodes "r,g,b" with components in [0,255] by shifting each
// component by one and concatenating them with width 3.
func EncodeColour(msg string) (float64, error) {
	rgb, err := parseBoundedInts(msg, 3, 255)
	if err != nil {
		return 0, fmt.Errorf("%w: colour payload %q: %v", ErrInvalidPayload, msg, err)
	}
	return Concat(shift(rgb), 3)
}

// DecodeColour inverts EncodeColour.
func DecodeColour(f float64) (r, g, b int, err error) {
	if !payloadRanges[taxonomy.CategoryColour].Contains(f) || f != math.Trunc(f) {
		return 0, 0, 0, fmt.Errorf("%w: %v is not a colour feature", ErrOutOfRange, f)
	}
	n := int64(f)
	parts := [3]int64{n / 1000000, n / 1000 % 1000, n % 1000}
	for _, p := range parts {
		if p < 1 || p > 256 {
			return 0, 0, 0, fmt.Errorf("%w: %v is not a colour feature", ErrOutOfRange, f)
		}
	}
	return int(parts[0] - 1), int(parts[1] - 1), int(parts[2] - 1), nil
}

// EncodeCountryCode encodes a two letter code as the concatenation of both
// character codes.
func EncodeCountryCode(msg string) (float64, error) {
	if len(msg) != 2 || !isASCIILetter(msg[0]) || !isASCIILetter(msg[1]) {
		return 0, fmt.Errorf("%w: country code %q", ErrInvalidPayload, msg)
	}
	return Concat([]int64{int64(msg[0]), int64(msg[1])}, 0)
}

// EncodeTSP encodes a route "x1,y1,x2,y2" with coordinates in [0,499].
func EncodeTSP(msg string) (float64, error) {
	coords, err := parseBoundedInts(msg, 4, 499)
	if err != nil {
		return 0, fmt.Errorf("%w: tsp payload %q: %v", ErrInvalidPayload, msg, err)
	}
	return Concat(shift(coords), 3)
}

// POIMapper resolves point-of-interest names. *taxonomy.Taxonomy implements it.
type POIMapper interface {
	POIType(name string) (int, bool)
	POIResult(name string) (int, bool)
}

// EncodePOI encodes "type,result" as two digits, each mapping shifted by one.
func EncodePOI(m POIMapper, msg string) (float64, error) {
	parts := strings.Split(msg, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: poi payload %q is not type,result", ErrInvalidPayload, msg)
	}
	typ, ok := m.POIType(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, fmt.Errorf("%w: unknown poi type %q", ErrInvalidPayload, parts[0])
	}
	res, ok := m.POIResult(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, fmt.Errorf("%w: unknown poi result %q", ErrInvalidPayload, parts[1])
	}

	digits := shift([]int64{int64(typ), int64(res)})
	for _, d := range digits {
		if d < 1 || d > 9 {
			return 0, fmt.Errorf("%w: poi mapping %d is not a single digit", ErrOutOfRange, d)
		}
	}
	return Concat(digits, 0)
}

func parseBoundedInts(msg string, n int, maxValue int64) ([]int64, error) {
	parts := strings.Split(msg, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(parts))
	}
	out := make([]int64, n)
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("component %d: %q is not an integer", i, p)
		}
		if v < 0 || v > maxValue {
			return nil, fmt.Errorf("component %d: %d outside [0,%d]", i, v, maxValue)
		}
		out[i] = v
	}
	return out, nil
}

// shift moves values up by one so that no component starts with a zero digit.
func shift(values []int64) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = v + 1
	}
	return out
}
