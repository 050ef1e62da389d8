// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package classifier implements the FleetIDS classification engine and the
per-source model lifecycle.

# Classification

Classify evaluates two stages:

 1. Rules. LevelErrorRule flags ERROR entries as intrusions with the rule
    certainty (100 by default). A result at rule certainty is returned
    immediately, so ERROR entries classify even without trained models.
 2. The learned stage. The entry is encoded by the features package and fed
    to the model of its source id. Learned results carry a fixed confidence
    (70 by default).

When the learned confidence exceeds the override threshold (60 by default)
the learned result wins. Otherwise the more confident result wins, with ties
going to the learned result. Without a complete model set, entries no rule is
certain about fail with ErrNoLearner.

# Model Lifecycle

	NONE --Train--> ALL --Train(extend)--> ALL
	 ^                |
	 +----Reset-------+

Train and Score check every precondition before touching the store. A
successful Train persists all models, records the model type and atomically
swaps the in-memory model set; readers never observe a partially updated set.

# Construction

Provider builds the engine once per process:

	provider := classifier.NewOptionsProvider(classifier.Options{
	    Taxonomy: tax,
	    Store:    store,
	})
	engine, err := provider.Engine(ctx)

# Errors

ErrPrecondition groups ErrNoLearner, ErrModelsExist, ErrModelTypeMismatch,
ErrIncompleteModels, ErrMissingSource, ErrClassMismatch and
ErrTrainingInProgress. Encoding failures wrap features.ErrEncoding; drifted
taxonomies wrap ErrIntegrity; corrupt models wrap ErrModelIntegrity, which also
matches ErrIntegrity.
*/
package classifier
