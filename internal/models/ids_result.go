// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package models

import "fmt"

// Classification is the verdict of the intrusion detector.
type Classification string

const (
	ClassificationNormal    Classification = "normal"
	ClassificationIntrusion Classification = "intrusion"
)

// IdsResult is the output of a classification.
// Confidence is an integer percentage in [0, 100].
type IdsResult struct {
	Classification Classification `json:"classification"`
	Confidence     int            `json:"confidence"`
}

// String implements fmt.Stringer.
func (r IdsResult) String() string {
	return fmt.Sprintf("%s (%d %%)", r.Classification, r.Confidence)
}

// ModelType describes the training mode of a whole model directory.
// All persisted models share one type at a time.
type ModelType string

const (
	ModelTypeNone       ModelType = "NONE"
	ModelTypeTwoClass   ModelType = "TWO_CLASS"
	ModelTypeMultiClass ModelType = "MULTICLASS"
)

// ModelTypeFor returns the model type produced by a training mode.
func ModelTypeFor(multiClass bool) ModelType {
	if multiClass {
		return ModelTypeMultiClass
	}
	return ModelTypeTwoClass
}

// ParseModelType parses a persisted model type marker.
func ParseModelType(s string) (ModelType, error) {
	switch ModelType(s) {
	case ModelTypeNone, ModelTypeTwoClass, ModelTypeMultiClass:
		return ModelType(s), nil
	default:
		return ModelTypeNone, fmt.Errorf("unknown model type %q", s)
	}
}

// StoreStatus summarizes which of a set of models exist.
type StoreStatus string

const (
	StoreStatusNone StoreStatus = "NONE"
	StoreStatusSome StoreStatus = "SOME"
	StoreStatusAll  StoreStatus = "ALL"
)
