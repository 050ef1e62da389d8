// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package modeldir

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/fleetids/internal/learner"
	"github.com/tomtom215/fleetids/internal/models"
)

var (
	// ErrNotFound is returned by Load when no model exists for the id.
	ErrNotFound = errors.New("model not found")

	// ErrModelExists is returned by Save when a model exists and overwrite is false.
	ErrModelExists = errors.New("model already exists")

	// ErrCorrupt is returned when a persisted record fails verification.
	ErrCorrupt = errors.New("persisted model is corrupt")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("model directory closed")
)

// Reset status messages.
const (
	msgAlreadyEmpty = "Models: already empty"
	msgDeleted      = "Models: deleted %d model(s)"
)

// Directory is a keyed store of one model per source id plus a store-wide
// model type.
type Directory interface {
	// HasModels reports whether none, some or all of ids have a model.
	HasModels(ctx context.Context, ids []string) (models.StoreStatus, error)

	// Load returns the model stored for id, or ErrNotFound.
	Load(ctx context.Context, id string) (*learner.Perceptron, error)

	// Save persists model under id. It fails with ErrModelExists when a model
	// is already stored and overwrite is false.
	Save(ctx context.Context, model *learner.Perceptron, id string, overwrite bool) error

	// List returns the metadata of every stored model.
	List(ctx context.Context) ([]Metadata, error)

	// LoadModelType returns the store's model type, ModelTypeNone when unset.
	LoadModelType(ctx context.Context) (models.ModelType, error)

	// SetModelType records the training mode of the persisted models.
	SetModelType(ctx context.Context, t models.ModelType) error

	// Reset deletes every model and the type tag and returns a status message.
	// Resetting an empty store is not an error.
	Reset(ctx context.Context) (string, error)

	// Close releases the backend.
	Close() error
}

// Metadata describes a persisted model.
type Metadata struct {
	SourceID  string    `json:"source_id"`
	Classes   []int     `json:"classes"`
	Samples   int       `json:"samples"`
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`
	Checksum  string    `json:"checksum"`
	SizeBytes int64     `json:"size_bytes"`
}

// record is the persisted form of a model.
type record struct {
	Metadata       Metadata
	CompressedData []byte
}

// statusOf folds an existence count into a StoreStatus.
func statusOf(found, total int) models.StoreStatus {
	switch {
	case found == 0:
		return models.StoreStatusNone
	case found == total:
		return models.StoreStatusAll
	default:
		return models.StoreStatusSome
	}
}

// encodeRecord serializes, checksums and compresses model.
func encodeRecord(model *learner.Perceptron, id string) ([]byte, error) {
	raw, err := model.MarshalBinary()
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	lm := model.Metadata()
	rec := record{
		Metadata: Metadata{
			SourceID:  id,
			Classes:   lm.Classes,
			Samples:   lm.Samples,
			Version:   lm.Version,
			TrainedAt: lm.TrainedAt,
			SavedAt:   time.Now(),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode model record: %w", err)
	}
	return out.Bytes(), nil
}

// decodeMetadata reads only the record header.
func decodeMetadata(data []byte) (Metadata, error) {
	var rec record
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec.Metadata, nil
}

// decodeRecord verifies and restores a model written by encodeRecord.
func decodeRecord(data []byte, id string) (*learner.Perceptron, error) {
	var rec record
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}
	if rec.Metadata.SourceID != id {
		return nil, fmt.Errorf("%w: record for %s stored under %s", ErrCorrupt, rec.Metadata.SourceID, id)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(rec.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decompress: %v", ErrCorrupt, id, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read decompressed data: %v", ErrCorrupt, id, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != rec.Metadata.Checksum {
		return nil, fmt.Errorf("%w: %s: checksum mismatch: expected %s, got %s", ErrCorrupt, id, rec.Metadata.Checksum, checksum)
	}

	model := learner.New(learner.DefaultConfig())
	if err := model.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}
	return model, nil
}
