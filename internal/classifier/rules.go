// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"github.com/tomtom215/fleetids/internal/models"
)

// Rule is a deterministic classifier evaluated before the learned stage.
type Rule interface {
	Name() string
	Evaluate(entry *models.LogEntry) models.IdsResult
}

// LevelErrorRule flags entries the vehicle component itself reported as ERROR.
type LevelErrorRule struct {
	// Confidence attached to a match, normally the rule certainty.
	Confidence int
}

// Name implements Rule.
func (r LevelErrorRule) Name() string {
	return "level_error"
}

// Evaluate implements Rule.
func (r LevelErrorRule) Evaluate(entry *models.LogEntry) models.IdsResult {
	if entry.Level == models.LevelError {
		return models.IdsResult{Classification: models.ClassificationIntrusion, Confidence: r.Confidence}
	}
	return models.IdsResult{Classification: models.ClassificationNormal, Confidence: 0}
}

// DefaultRules returns the rules registered when Options.Rules is nil.
func DefaultRules(cfg Config) []Rule {
	return []Rule{LevelErrorRule{Confidence: cfg.RuleCertainty}}
}

// evaluateRules returns the most confident rule result; earlier rules win ties.
func evaluateRules(rules []Rule, entry *models.LogEntry) models.IdsResult {
	best := models.IdsResult{Classification: models.ClassificationNormal, Confidence: 0}
	for _, r := range rules {
		if res := r.Evaluate(entry); res.Confidence > best.Confidence {
			best = res
		}
	}
	return best
}
