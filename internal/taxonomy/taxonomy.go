// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/validation"
)

// SupportedVersion is the taxonomy schema version the encoder and classifier
// are written against.
const SupportedVersion = 1

// ErrIntegrity is returned when the taxonomy artifact drifted from its
// checksums, declares an unsupported version, or breaks a structural rule.
var ErrIntegrity = errors.New("taxonomy integrity check failed")

//go:embed taxonomy.yaml
var defaultArtifact []byte

// appIDIndex matches instance suffixes such as "_1" in "GAUSSIAN_1".
var appIDIndex = regexp.MustCompile(`_\d+`)

// Taxonomy is the verified, immutable domain constants registry.
type Taxonomy struct {
	version int

	sourceIDs  []string
	categories map[string]SourceCategory

	levels map[models.Level]int

	labels        map[models.Label]int
	classLabels   map[int]models.Label
	legal         []models.Label
	labelCategory map[models.Label]SourceCategory

	poiTypes   map[string]int
	poiResults map[string]int
}

// Default loads the taxonomy embedded in the binary.
func Default() (*Taxonomy, error) {
	return Load(defaultArtifact)
}

// DefaultArtifact returns a copy of the embedded taxonomy.yaml.
func DefaultArtifact() []byte {
	out := make([]byte, len(defaultArtifact))
	copy(out, defaultArtifact)
	return out
}

// LoadFile loads and verifies a taxonomy artifact from disk.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Load(data)
}

// Load parses a taxonomy artifact and verifies its version, section
// checksums and structure. Any failure wraps ErrIntegrity.
func Load(data []byte) (*Taxonomy, error) {
	var a artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrIntegrity, err)
	}

	if a.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: version %d is not supported (want %d)", ErrIntegrity, a.Version, SupportedVersion)
	}

	if verr := validation.ValidateStruct(&a); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, verr)
	}

	if err := a.verifyChecksums(); err != nil {
		return nil, err
	}

	return build(&a)
}

// build turns a checksum-verified artifact into lookup tables, enforcing the
// structural rules the encoder depends on.
func build(a *artifact) (*Taxonomy, error) {
	t := &Taxonomy{
		version:       a.Version,
		categories:    make(map[string]SourceCategory),
		levels:        make(map[models.Level]int),
		labels:        make(map[models.Label]int),
		classLabels:   make(map[int]models.Label),
		labelCategory: make(map[models.Label]SourceCategory),
		poiTypes:      make(map[string]int),
		poiResults:    make(map[string]int),
	}

	for _, c := range Categories {
		for _, id := range a.Sources.byCategory(c) {
			if _, dup := t.categories[id]; dup {
				return nil, fmt.Errorf("%w: duplicate source id %s", ErrIntegrity, id)
			}
			t.categories[id] = c
			t.sourceIDs = append(t.sourceIDs, id)
		}
	}

	if err := t.buildLevels(a.Levels.Values); err != nil {
		return nil, err
	}
	if err := t.buildLabels(&a.Labels); err != nil {
		return nil, err
	}

	var err error
	if t.poiTypes, err = digitMapping("poi type", a.POI.Types); err != nil {
		return nil, err
	}
	if t.poiResults, err = digitMapping("poi result", a.POI.Results); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Taxonomy) buildLevels(values []namedValue) error {
	seen := make(map[int]string)
	for _, v := range values {
		if other, dup := seen[v.Value]; dup {
			return fmt.Errorf("%w: levels %s and %s share value %d", ErrIntegrity, other, v.Name, v.Value)
		}
		seen[v.Value] = v.Name
		t.levels[models.Level(v.Name)] = v.Value
	}
	for _, required := range []models.Level{models.LevelDefault, models.LevelError} {
		if _, ok := t.levels[required]; !ok {
			return fmt.Errorf("%w: level %s missing", ErrIntegrity, required)
		}
	}
	return nil
}

func (t *Taxonomy) buildLabels(s *labelsSection) error {
	legal := make(map[models.Label]bool, len(s.Legal))
	for _, name := range s.Legal {
		legal[models.Label(name)] = true
		t.legal = append(t.legal, models.Label(name))
	}

	for _, v := range s.Values {
		label := models.Label(v.Name)
		if _, dup := t.labels[label]; dup {
			return fmt.Errorf("%w: duplicate label %s", ErrIntegrity, v.Name)
		}
		if other, dup := t.classLabels[v.Value]; dup {
			return fmt.Errorf("%w: labels %s and %s share value %d", ErrIntegrity, other, v.Name, v.Value)
		}
		t.labels[label] = v.Value
		t.classLabels[v.Value] = label

		switch {
		case legal[label] && v.Category != "":
			return fmt.Errorf("%w: legal label %s must not belong to a category", ErrIntegrity, v.Name)
		case !legal[label]:
			c, err := ParseCategory(v.Category)
			if err != nil {
				return fmt.Errorf("%w: label %s: %v", ErrIntegrity, v.Name, err)
			}
			t.labelCategory[label] = c
		}
	}

	for _, l := range t.legal {
		if _, ok := t.labels[l]; !ok {
			return fmt.Errorf("%w: legal label %s has no value", ErrIntegrity, l)
		}
	}
	if zero, ok := t.classLabels[0]; !ok || !legal[zero] {
		return fmt.Errorf("%w: value 0 must belong to a legal label", ErrIntegrity)
	}
	return nil
}

// digitMapping builds a POI mapping whose shifted values (value+1) stay single
// decimal digits.
func digitMapping(what string, values []namedValue) (map[string]int, error) {
	m := make(map[string]int, len(values))
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if v.Value < 0 || v.Value > 8 {
			return nil, fmt.Errorf("%w: %s %s value %d outside [0,8]", ErrIntegrity, what, v.Name, v.Value)
		}
		if seen[v.Value] {
			return nil, fmt.Errorf("%w: %s value %d used twice", ErrIntegrity, what, v.Value)
		}
		if _, dup := m[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate %s %s", ErrIntegrity, what, v.Name)
		}
		seen[v.Value] = true
		m[v.Name] = v.Value
	}
	return m, nil
}

// Version returns the schema version of the loaded artifact.
func (t *Taxonomy) Version() int {
	return t.version
}

// SourceIDs returns every known source id in canonical order.
func (t *Taxonomy) SourceIDs() []string {
	ids := make([]string, len(t.sourceIDs))
	copy(ids, t.sourceIDs)
	return ids
}

// Category returns the category of a stripped source id.
func (t *Taxonomy) Category(sourceID string) (SourceCategory, bool) {
	c, ok := t.categories[sourceID]
	return c, ok
}

// StripAppID removes the instance index from an app id ("GAUSSIAN_1" -> "GAUSSIAN").
func StripAppID(appID string) string {
	loc := appIDIndex.FindStringIndex(appID)
	if loc == nil {
		return appID
	}
	return appID[:loc[0]]
}

// ResolveAppID strips the instance index and looks up the source category.
func (t *Taxonomy) ResolveAppID(appID string) (string, SourceCategory, error) {
	id := StripAppID(appID)
	c, ok := t.categories[id]
	if !ok {
		return "", 0, fmt.Errorf("unknown source id %q (app id %q)", id, appID)
	}
	return id, c, nil
}

// LevelValue returns the integer mapping of a telemetry level.
func (t *Taxonomy) LevelValue(level models.Level) (int, bool) {
	v, ok := t.levels[level]
	return v, ok
}

// LabelValue returns the integer mapping of a label.
func (t *Taxonomy) LabelValue(label models.Label) (int, bool) {
	v, ok := t.labels[label]
	return v, ok
}

// LabelForValue is the inverse of LabelValue.
func (t *Taxonomy) LabelForValue(value int) (models.Label, bool) {
	l, ok := t.classLabels[value]
	return l, ok
}

// LegalLabels returns the labels denoting non-intrusions.
func (t *Taxonomy) LegalLabels() []models.Label {
	out := make([]models.Label, len(t.legal))
	copy(out, t.legal)
	return out
}

// IsLegal reports whether label denotes a non-intrusion.
func (t *Taxonomy) IsLegal(label models.Label) bool {
	for _, l := range t.legal {
		if l == label {
			return true
		}
	}
	return false
}

// IntrusionLabels returns every label that denotes an intrusion, ordered by value.
func (t *Taxonomy) IntrusionLabels() []models.Label {
	out := make([]models.Label, 0, len(t.labelCategory))
	for l := range t.labelCategory {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return t.labels[out[i]] < t.labels[out[j]] })
	return out
}

// LabelsFor returns the intrusion labels a source category can legitimately
// produce, ordered by value.
func (t *Taxonomy) LabelsFor(c SourceCategory) []models.Label {
	var out []models.Label
	for _, l := range t.IntrusionLabels() {
		if t.labelCategory[l] == c {
			out = append(out, l)
		}
	}
	return out
}

// ExpectedClasses returns the classes a complete training set for sourceID must
// contain, ascending. Two-class mode always expects {0, 1}; multi-class mode
// expects the legal class plus every intrusion label of the source's category.
func (t *Taxonomy) ExpectedClasses(sourceID string, multiClass bool) ([]int, error) {
	c, ok := t.categories[sourceID]
	if !ok {
		return nil, fmt.Errorf("unknown source id %q", sourceID)
	}
	if !multiClass {
		return []int{0, 1}, nil
	}
	classes := []int{0}
	for _, l := range t.LabelsFor(c) {
		classes = append(classes, t.labels[l])
	}
	return classes, nil
}

// POIType returns the mapping of a point-of-interest type.
func (t *Taxonomy) POIType(name string) (int, bool) {
	v, ok := t.poiTypes[name]
	return v, ok
}

// POIResult returns the mapping of a point-of-interest result.
func (t *Taxonomy) POIResult(name string) (int, bool) {
	v, ok := t.poiResults[name]
	return v, ok
}
