// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package taxonomy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// artifact mirrors taxonomy.yaml.
type artifact struct {
	Version int            `yaml:"version" validate:"required"`
	Sources sourcesSection `yaml:"sources"`
	Levels  levelsSection  `yaml:"levels"`
	Labels  labelsSection  `yaml:"labels"`
	POI     poiSection     `yaml:"poi"`
}

type namedValue struct {
	Name  string `yaml:"name" validate:"required"`
	Value int    `yaml:"value" validate:"gte=0"`
}

type labelValue struct {
	Name     string `yaml:"name" validate:"required"`
	Value    int    `yaml:"value" validate:"gte=0"`
	Category string `yaml:"category"`
}

type sourcesSection struct {
	Checksum    string   `yaml:"checksum" validate:"required,len=64,hexadecimal"`
	Generator   []string `yaml:"generator" validate:"min=1,dive,sourceid"`
	Colour      []string `yaml:"colour" validate:"len=1,dive,sourceid"`
	CountryCode []string `yaml:"country_code" validate:"len=1,dive,sourceid"`
	POI         []string `yaml:"poi" validate:"len=1,dive,sourceid"`
	TSP         []string `yaml:"tsp" validate:"len=1,dive,sourceid"`
}

type levelsSection struct {
	Checksum string       `yaml:"checksum" validate:"required,len=64,hexadecimal"`
	Values   []namedValue `yaml:"values" validate:"min=2,dive"`
}

type labelsSection struct {
	Checksum string       `yaml:"checksum" validate:"required,len=64,hexadecimal"`
	Legal    []string     `yaml:"legal" validate:"min=1,dive,required"`
	Values   []labelValue `yaml:"values" validate:"min=2,dive"`
}

type poiSection struct {
	Checksum string       `yaml:"checksum" validate:"required,len=64,hexadecimal"`
	Types    []namedValue `yaml:"types" validate:"min=1,max=9,dive"`
	Results  []namedValue `yaml:"results" validate:"min=1,max=9,dive"`
}

func (s *sourcesSection) byCategory(c SourceCategory) []string {
	switch c {
	case CategoryGenerator:
		return s.Generator
	case CategoryColour:
		return s.Colour
	case CategoryPoseCountryCode:
		return s.CountryCode
	case CategoryPosePOI:
		return s.POI
	case CategoryPoseTSP:
		return s.TSP
	default:
		return nil
	}
}

// canonical renders the section as "category:ID" lines.
func (s *sourcesSection) canonical() string {
	var b strings.Builder
	for _, c := range Categories {
		for _, id := range s.byCategory(c) {
			b.WriteString(c.String())
			b.WriteByte(':')
			b.WriteString(id)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// canonical renders the section as "NAME=value" lines.
func (s *levelsSection) canonical() string {
	var b strings.Builder
	for _, v := range s.Values {
		writePair(&b, "", v.Name, v.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

// canonical renders "legal:name" lines followed by "name=value@category" lines.
func (s *labelsSection) canonical() string {
	var b strings.Builder
	for _, l := range s.Legal {
		b.WriteString("legal:")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for _, v := range s.Values {
		writePair(&b, "", v.Name, v.Value)
		b.WriteByte('@')
		b.WriteString(v.Category)
		b.WriteByte('\n')
	}
	return b.String()
}

// canonical renders "type:name=value" lines followed by "result:name=value" lines.
func (s *poiSection) canonical() string {
	var b strings.Builder
	for _, v := range s.Types {
		writePair(&b, "type:", v.Name, v.Value)
		b.WriteByte('\n')
	}
	for _, v := range s.Results {
		writePair(&b, "result:", v.Name, v.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

func writePair(b *strings.Builder, prefix, name string, value int) {
	b.WriteString(prefix)
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(value))
}

// Checksum returns the hex SHA-256 of a canonical section form.
func Checksum(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func (a *artifact) verifyChecksums() error {
	sections := []struct {
		name      string
		canonical string
		stamped   string
	}{
		{"sources", a.Sources.canonical(), a.Sources.Checksum},
		{"levels", a.Levels.canonical(), a.Levels.Checksum},
		{"labels", a.Labels.canonical(), a.Labels.Checksum},
		{"poi", a.POI.canonical(), a.POI.Checksum},
	}
	for _, s := range sections {
		if got := Checksum(s.canonical); !strings.EqualFold(got, s.stamped) {
			return fmt.Errorf("%w: section %s checksum mismatch (stamped %s, computed %s)", ErrIntegrity, s.name, s.stamped, got)
		}
	}
	return nil
}
