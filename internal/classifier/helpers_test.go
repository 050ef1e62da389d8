// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"context"
	"fmt"
	"testing"

	"github.com/tomtom215/fleetids/internal/modeldir"
	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/taxonomy"
)

// sample is one labelled payload of a synthetic dataset.
type sample struct {
	payload string
	label   models.Label
}

// twoClassSamples are linearly separable per category: every intrusion
// payload lies on one side of every legal payload.
var twoClassSamples = map[taxonomy.SourceCategory][]sample{
	taxonomy.CategoryGenerator: {
		{"1", "normal"}, {"2", "normal"}, {"1000", "huge-error"}, {"1200", "huge-error"},
	},
	taxonomy.CategoryColour: {
		{"10,10,10", "normal"}, {"20,20,20", "normal"}, {"255,0,0", "red"},
	},
	taxonomy.CategoryPoseCountryCode: {
		{"DE", "normal"}, {"FR", "normal"}, {"ZZ", "jump"},
	},
	taxonomy.CategoryPosePOI: {
		{"bank,success", "normal"}, {"cafe,success", "normal"}, {"police,closed", "illegaltype"},
	},
	taxonomy.CategoryPoseTSP: {
		{"1,1,2,2", "normal"}, {"3,3,4,4", "normal"}, {"5,5,5,5", "routetoself"},
	},
}

// multiClassSamples add the second generator intrusion kind below the legal range.
var multiClassSamples = map[taxonomy.SourceCategory][]sample{
	taxonomy.CategoryGenerator: {
		{"-1200", "zeroes"}, {"-1000", "zeroes"}, {"1", "normal"}, {"2", "normal"},
		{"1000", "huge-error"}, {"1200", "huge-error"},
	},
	taxonomy.CategoryColour:          twoClassSamples[taxonomy.CategoryColour],
	taxonomy.CategoryPoseCountryCode: twoClassSamples[taxonomy.CategoryPoseCountryCode],
	taxonomy.CategoryPosePOI:         twoClassSamples[taxonomy.CategoryPosePOI],
	taxonomy.CategoryPoseTSP:         twoClassSamples[taxonomy.CategoryPoseTSP],
}

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.Default()
	if err != nil {
		t.Fatalf("taxonomy.Default() error = %v", err)
	}
	return tax
}

func newEntry(appID, payload string, category taxonomy.SourceCategory) models.LogEntry {
	e := models.LogEntry{
		VIN:        "A123456",
		AppID:      appID,
		Level:      models.LevelDefault,
		LogMessage: payload,
		TimeUnix:   1514764800,
		LogID:      fmt.Sprintf("%s-%s", appID, payload),
	}
	if category.IsPose() {
		e.GPSPosition = models.StringPtr("10,20")
	}
	return e
}

// dataset builds labelled entries for every source id, skipping ids in skip.
func dataset(t *testing.T, tax *taxonomy.Taxonomy, samples map[taxonomy.SourceCategory][]sample, skip ...string) []models.LogEntry {
	t.Helper()
	skipped := make(map[string]bool, len(skip))
	for _, id := range skip {
		skipped[id] = true
	}

	var entries []models.LogEntry
	for _, id := range tax.SourceIDs() {
		if skipped[id] {
			continue
		}
		c, _ := tax.Category(id)
		for _, s := range samples[c] {
			e := newEntry(id+"_1", s.payload, c)
			e.Intrusion = models.LabelPtr(s.label)
			entries = append(entries, e)
		}
	}
	return entries
}

// newTestEngine returns an engine over a fresh file directory.
func newTestEngine(t *testing.T) (*Engine, *modeldir.FileDirectory) {
	t.Helper()
	store, err := modeldir.NewFileDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(context.Background(), Options{Taxonomy: testTaxonomy(t), Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e, store
}

// fixedRule always returns the same result.
type fixedRule struct {
	result models.IdsResult
}

func (r fixedRule) Name() string { return "fixed" }

func (r fixedRule) Evaluate(*models.LogEntry) models.IdsResult { return r.result }
