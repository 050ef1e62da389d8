// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

// Package modeldir persists one trained model per source id plus a single
// model type tag describing the whole collection.
//
// # Overview
//
// Directory is the storage contract used by the classifier engine:
//   - HasModels reports NONE, SOME or ALL for a set of source ids
//   - Load and Save move models in and out of the store; Save refuses to
//     replace an existing model unless overwrite is set
//   - LoadModelType and SetModelType track the training mode of the store
//   - Reset deletes every model and the type tag, returning a status message
//
// # Storage Format
//
// Every model is stored as a gob-encoded record holding metadata and the
// gzip-compressed model state. The metadata carries a SHA-256 checksum of the
// uncompressed state which is verified on load:
//
//	record:
//	  - Metadata (source id, classes, samples, checksum, sizes, timestamps)
//	  - CompressedData (gzip of learner.Perceptron.MarshalBinary)
//
// # Backends
//
// FileDirectory keeps one file per source id:
//
//	/var/lib/fleetids/models/
//	  GAUSSIAN.gob.gz
//	  COLOUR.gob.gz
//	  model_type
//
// Files are written to a temporary name and renamed into place, so readers
// never observe a half-written model.
//
// BadgerDirectory stores the same records in BadgerDB under the keys
// "model:<ID>" and "meta:model_type".
//
// # Thread Safety
//
// All operations are safe for concurrent use. Saves take a write lock; loads
// and existence checks share a read lock.
package modeldir
