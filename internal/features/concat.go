// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package features

import (
	"fmt"
	"strconv"
	"strings"
)

// Concat joins the decimal forms of values, each left-padded with zeros to
// width (0 disables padding), and parses the joined string as a float.
//
// Values must be non-negative and must not exceed width digits when padding
// is requested, otherwise the encoding would stop being injective.
func Concat(values []int64, width int) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: nothing to concatenate", ErrEncoding)
	}
	if width < 0 {
		return 0, fmt.Errorf("%w: negative width %d", ErrEncoding, width)
	}

	var b strings.Builder
	for _, v := range values {
		if v < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrEncoding, v)
		}
		s := strconv.FormatInt(v, 10)
		if width > 0 {
			if len(s) > width {
				return 0, fmt.Errorf("%w: value %d wider than %d digits", ErrEncoding, v, width)
			}
			b.WriteString(strings.Repeat("0", width-len(s)))
		}
		b.WriteString(s)
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return f, nil
}

// VINToNumeric encodes a 7 character VIN (one letter, six digits) as the
// character code of the letter followed by the six digits.
func VINToNumeric(vin string) (float64, error) {
	if len(vin) != 7 {
		return 0, fmt.Errorf("%w: %q has %d characters, want 7", ErrInvalidVIN, vin, len(vin))
	}
	if !isASCIILetter(vin[0]) {
		return 0, fmt.Errorf("%w: %q must start with a letter", ErrInvalidVIN, vin)
	}
	rest, err := parseDigits(vin[1:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidVIN, vin, err)
	}
	return Concat([]int64{int64(vin[0]), rest}, 6)
}

// GPSToNumeric encodes a "lat,lon" position of non-negative integers.
func GPSToNumeric(gps string) (float64, error) {
	parts := strings.Split(gps, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q is not lat,lon", ErrInvalidGPS, gps)
	}
	values := make([]int64, 2)
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q has invalid coordinate %q", ErrInvalidGPS, gps, p)
		}
		values[i] = v
	}
	f, err := Concat(values, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidGPS, err)
	}
	return f, nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func parseDigits(s string) (int64, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("non-digit %q", s[i])
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
