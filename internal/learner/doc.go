// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

// Package learner implements the per-source statistical classifier.
//
// The model is a multi-class perceptron over standardized features. Fit
// learns a per-column scaler (mean and standard deviation via gonum/stat)
// and one weight row per class, then runs epochs over the samples until an
// epoch makes no mistakes or the epoch budget is spent. On linearly separable
// data the model therefore reproduces its training labels exactly.
//
// Extend continues training an existing model on new samples: the scaler is
// kept, classes not seen before get a zero weight row, and the perceptron
// resumes from the current weights.
//
// # Thread Safety
//
// Training acquires an exclusive lock while prediction uses a shared lock.
//
// # Persistence
//
// Perceptron implements encoding.BinaryMarshaler and BinaryUnmarshaler with a
// gob-encoded state, which the modeldir package compresses and checksums.
package learner
