// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"fmt"

	"github.com/tomtom215/fleetids/internal/learner"
)

// Config holds the confidence arbitration thresholds and training settings.
type Config struct {
	// RuleCertainty is the rule confidence that short-circuits the learner.
	RuleCertainty int `koanf:"rule_certainty"`

	// LearnerOverride is the learner confidence above which the learned
	// result is returned without comparing against the rule result.
	LearnerOverride int `koanf:"learner_override"`

	// LearnerConfidence is the fixed confidence attached to learned results.
	LearnerConfidence int `koanf:"learner_confidence"`

	Training learner.Config `koanf:"training"`
}

// DefaultConfig returns the default thresholds (100, 60, 70).
func DefaultConfig() Config {
	return Config{
		RuleCertainty:     100,
		LearnerOverride:   60,
		LearnerConfidence: 70,
		Training:          learner.DefaultConfig(),
	}
}

// Validate checks that thresholds are percentages.
func (c *Config) Validate() error {
	for name, v := range map[string]int{
		"rule_certainty":     c.RuleCertainty,
		"learner_override":   c.LearnerOverride,
		"learner_confidence": c.LearnerConfidence,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be within [0,100], got %d", name, v)
		}
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("training epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training learning rate must be positive, got %v", c.Training.LearningRate)
	}
	return nil
}
