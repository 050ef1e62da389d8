// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package features

import (
	"fmt"

	"github.com/tomtom215/fleetids/internal/models"
)

// Two-class targets.
const (
	ClassLegal     = 0
	ClassIntrusion = 1
)

// LabelToClass maps a label to its training target. Multi-class mode returns
// the label's own value; two-class mode collapses every intrusion label to
// ClassIntrusion.
func (e *Encoder) LabelToClass(label models.Label, multiClass bool) (int, error) {
	if err := e.singleLegalLabel(); err != nil {
		return 0, err
	}
	value, ok := e.tax.LabelValue(label)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	if multiClass {
		return value, nil
	}
	if e.tax.IsLegal(label) {
		return ClassLegal, nil
	}
	return ClassIntrusion, nil
}

// ClassToLabel is the inverse of LabelToClass. In two-class mode
// ClassIntrusion has no single label and maps to "intrusion".
func (e *Encoder) ClassToLabel(class int, multiClass bool) (models.Label, error) {
	if multiClass {
		label, ok := e.tax.LabelForValue(class)
		if !ok {
			return "", fmt.Errorf("%w: class %d", ErrUnknownLabel, class)
		}
		return label, nil
	}

	if err := e.singleLegalLabel(); err != nil {
		return "", err
	}
	switch class {
	case ClassLegal:
		return e.tax.LegalLabels()[0], nil
	case ClassIntrusion:
		return models.Label(models.ClassificationIntrusion), nil
	default:
		return "", fmt.Errorf("%w: two-class model predicted %d", ErrUnknownLabel, class)
	}
}

// IsIntrusionClass reports whether a predicted class denotes an intrusion.
func (e *Encoder) IsIntrusionClass(class int, multiClass bool) (bool, error) {
	label, err := e.ClassToLabel(class, multiClass)
	if err != nil {
		return false, err
	}
	return !e.tax.IsLegal(label), nil
}

func (e *Encoder) singleLegalLabel() error {
	if n := len(e.tax.LegalLabels()); n != 1 {
		return fmt.Errorf("%w: label mapping with %d legal labels", ErrNotImplemented, n)
	}
	return nil
}
