// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package taxonomy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/fleetids/internal/models"
)

func TestDefault(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if tax.Version() != SupportedVersion {
		t.Errorf("Version() = %d, want %d", tax.Version(), SupportedVersion)
	}
	if got := len(tax.SourceIDs()); got != 15 {
		t.Errorf("len(SourceIDs()) = %d, want 15", got)
	}

	tests := []struct {
		id   string
		want SourceCategory
	}{
		{"GAUSSIAN", CategoryGenerator},
		{"ZIPF", CategoryGenerator},
		{"COLOUR", CategoryColour},
		{"COUNTRYCODE", CategoryPoseCountryCode},
		{"POI", CategoryPosePOI},
		{"TSPROUTING", CategoryPoseTSP},
	}
	for _, tt := range tests {
		got, ok := tax.Category(tt.id)
		if !ok || got != tt.want {
			t.Errorf("Category(%s) = %v, %v; want %v", tt.id, got, ok, tt.want)
		}
	}

	if v, _ := tax.LevelValue(models.LevelError); v != 1 {
		t.Errorf("LevelValue(ERROR) = %d, want 1", v)
	}
	if v, _ := tax.LabelValue("normal"); v != 0 {
		t.Errorf("LabelValue(normal) = %d, want 0", v)
	}
	if v, _ := tax.POIType("supermarket"); v != 8 {
		t.Errorf("POIType(supermarket) = %d, want 8", v)
	}
	if v, _ := tax.POIResult("unknown"); v != 3 {
		t.Errorf("POIResult(unknown) = %d, want 3", v)
	}
}

func TestLabels(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	if !tax.IsLegal("normal") || tax.IsLegal("red") {
		t.Error("IsLegal() misclassifies labels")
	}

	intrusions := tax.IntrusionLabels()
	want := []models.Label{"zeroes", "huge-error", "red", "jump", "illegaltype", "routetoself"}
	if len(intrusions) != len(want) {
		t.Fatalf("IntrusionLabels() = %v, want %v", intrusions, want)
	}
	for i := range want {
		if intrusions[i] != want[i] {
			t.Errorf("IntrusionLabels()[%d] = %s, want %s", i, intrusions[i], want[i])
		}
	}

	gen := tax.LabelsFor(CategoryGenerator)
	if len(gen) != 2 || gen[0] != "zeroes" || gen[1] != "huge-error" {
		t.Errorf("LabelsFor(generator) = %v", gen)
	}
	if l, ok := tax.LabelForValue(6); !ok || l != "routetoself" {
		t.Errorf("LabelForValue(6) = %s, %v", l, ok)
	}
}

func TestStripAppID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"GAUSSIAN_1", "GAUSSIAN"},
		{"COLOUR_12", "COLOUR"},
		{"POI", "POI"},
		{"TSPROUTING_3_7", "TSPROUTING"},
		{"A_B_2", "A_B"},
	}
	for _, tt := range tests {
		if got := StripAppID(tt.in); got != tt.want {
			t.Errorf("StripAppID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveAppID(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	id, c, err := tax.ResolveAppID("COUNTRYCODE_4")
	if err != nil || id != "COUNTRYCODE" || c != CategoryPoseCountryCode {
		t.Errorf("ResolveAppID() = %s, %v, %v", id, c, err)
	}
	if _, _, err := tax.ResolveAppID("TELEPORT_1"); err == nil {
		t.Error("ResolveAppID(TELEPORT_1) expected error")
	}
}

func TestLoad_DetectsDrift(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"renamed source", "- GUMBEL", "- GUMBLE"},
		{"changed level", "{name: ERROR, value: 1}", "{name: ERROR, value: 2}"},
		{"changed label", "{name: red, value: 3, category: colour}", "{name: red, value: 3, category: generator}"},
		{"changed poi", "{name: cafe, value: 2}", "{name: cafe, value: 9}"},
		{"unsupported version", "version: 1", "version: 2"},
		{"tampered checksum", "checksum: d4aa", "checksum: 0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Replace(defaultArtifact, []byte(tt.old), []byte(tt.new), 1)
			if bytes.Equal(data, defaultArtifact) {
				t.Fatalf("fixture %q not found in artifact", tt.old)
			}
			_, err := Load(data)
			if !errors.Is(err, ErrIntegrity) {
				t.Errorf("Load() error = %v, want ErrIntegrity", err)
			}
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	for _, data := range []string{"", "version: [", "version: 1\n"} {
		if _, err := Load([]byte(data)); !errors.Is(err, ErrIntegrity) {
			t.Errorf("Load(%q) error = %v, want ErrIntegrity", data, err)
		}
	}
}

// restamp edits the artifact through fn and recomputes every checksum.
func restamp(t *testing.T, fn func(a *artifact)) []byte {
	t.Helper()
	var a artifact
	if err := yaml.Unmarshal(defaultArtifact, &a); err != nil {
		t.Fatal(err)
	}
	fn(&a)
	a.Sources.Checksum = Checksum(a.Sources.canonical())
	a.Levels.Checksum = Checksum(a.Levels.canonical())
	a.Labels.Checksum = Checksum(a.Labels.canonical())
	a.POI.Checksum = Checksum(a.POI.canonical())
	out, err := yaml.Marshal(&a)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestLoad_RestampedEditAccepted(t *testing.T) {
	data := restamp(t, func(a *artifact) {
		a.Sources.Generator = append(a.Sources.Generator, "CAUCHY")
	})
	tax, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c, ok := tax.Category("CAUCHY"); !ok || c != CategoryGenerator {
		t.Errorf("Category(CAUCHY) = %v, %v", c, ok)
	}
}

func TestLoad_StructuralRules(t *testing.T) {
	tests := []struct {
		name string
		edit func(a *artifact)
	}{
		{"duplicate source", func(a *artifact) { a.Sources.Generator = append(a.Sources.Generator, "GAUSSIAN") }},
		{"duplicate label value", func(a *artifact) {
			a.Labels.Values = append(a.Labels.Values, labelValue{Name: "extra", Value: 3, Category: "colour"})
		}},
		{"legal label without value", func(a *artifact) { a.Labels.Legal = append(a.Labels.Legal, "benign") }},
		{"intrusion without category", func(a *artifact) { a.Labels.Values[3].Category = "" }},
		{"second colour source", func(a *artifact) { a.Sources.Colour = append(a.Sources.Colour, "COLOUR2") }},
		{"poi value too large", func(a *artifact) { a.POI.Types[0].Value = 9 }},
		{"missing level", func(a *artifact) {
			a.Levels.Values = []namedValue{{Name: "DEFAULT", Value: 0}, {Name: "WARN", Value: 1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(restamp(t, tt.edit))
			if !errors.Is(err, ErrIntegrity) {
				t.Errorf("Load() error = %v, want ErrIntegrity", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, defaultArtifact, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Errorf("LoadFile() error = %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) expected error")
	}
}

func TestExpectedClasses(t *testing.T) {
	tax, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id    string
		multi bool
		want  []int
	}{
		{"GAUSSIAN", false, []int{0, 1}},
		{"GAUSSIAN", true, []int{0, 1, 2}},
		{"COLOUR", true, []int{0, 3}},
		{"COUNTRYCODE", true, []int{0, 4}},
		{"POI", true, []int{0, 5}},
		{"TSPROUTING", true, []int{0, 6}},
		{"TSPROUTING", false, []int{0, 1}},
	}
	for _, tt := range tests {
		got, err := tax.ExpectedClasses(tt.id, tt.multi)
		if err != nil {
			t.Errorf("ExpectedClasses(%s, %v) error = %v", tt.id, tt.multi, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ExpectedClasses(%s, %v) = %v, want %v", tt.id, tt.multi, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ExpectedClasses(%s, %v) = %v, want %v", tt.id, tt.multi, got, tt.want)
				break
			}
		}
	}

	if _, err := tax.ExpectedClasses("NOPE", true); err == nil {
		t.Error("ExpectedClasses(NOPE) expected error")
	}
}
