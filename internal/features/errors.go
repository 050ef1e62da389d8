// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package features

import (
	"errors"
	"fmt"
)

// ErrEncoding is the root of every encoding failure.
var ErrEncoding = errors.New("encoding error")

var (
	ErrInvalidVIN     = fmt.Errorf("%w: invalid vin", ErrEncoding)
	ErrInvalidPayload = fmt.Errorf("%w: invalid payload", ErrEncoding)
	ErrInvalidGPS     = fmt.Errorf("%w: invalid gps position", ErrEncoding)
	ErrInvalidLevel   = fmt.Errorf("%w: invalid level", ErrEncoding)
	ErrUnknownSource  = fmt.Errorf("%w: unknown source", ErrEncoding)
	ErrUnknownLabel   = fmt.Errorf("%w: unknown label", ErrEncoding)
	ErrVectorShape    = fmt.Errorf("%w: unexpected vector shape", ErrEncoding)
	ErrOutOfRange     = fmt.Errorf("%w: payload feature out of range", ErrEncoding)
)

// ErrNotImplemented marks label configurations the mapping does not support,
// such as more than one legal label.
var ErrNotImplemented = errors.New("not implemented")
