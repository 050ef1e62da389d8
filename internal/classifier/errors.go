// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"errors"
	"fmt"

	"github.com/tomtom215/fleetids/internal/features"
	"github.com/tomtom215/fleetids/internal/taxonomy"
)

// ErrIntegrity covers taxonomy drift and persisted models that fail
// verification.
var ErrIntegrity = taxonomy.ErrIntegrity

// ErrModelIntegrity reports a persisted model that fails verification. It
// matches ErrIntegrity under errors.Is.
var ErrModelIntegrity error = modelIntegrityError{}

type modelIntegrityError struct{}

func (modelIntegrityError) Error() string { return "model store integrity check failed" }

func (modelIntegrityError) Is(target error) bool { return target == ErrIntegrity }

// ErrPrecondition is the root of every error raised before any mutating work.
var ErrPrecondition = errors.New("precondition failed")

var (
	ErrNoLearner          = fmt.Errorf("%w: no learned classifier available", ErrPrecondition)
	ErrModelsExist        = fmt.Errorf("%w: models already exist", ErrPrecondition)
	ErrModelTypeMismatch  = fmt.Errorf("%w: model type mismatch", ErrPrecondition)
	ErrIncompleteModels   = fmt.Errorf("%w: model set incomplete", ErrPrecondition)
	ErrMissingSource      = fmt.Errorf("%w: dataset lacks a source", ErrPrecondition)
	ErrClassMismatch      = fmt.Errorf("%w: dataset classes differ from expected", ErrPrecondition)
	ErrTrainingInProgress = fmt.Errorf("%w: training already in progress", ErrPrecondition)
)

// ErrNotImplemented marks configurations the engine refuses to approximate.
var ErrNotImplemented = features.ErrNotImplemented
