// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package modeldir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tomtom215/fleetids/internal/learner"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/models"
)

const (
	modelSuffix   = ".gob.gz"
	modelTypeFile = "model_type"
)

// FileDirectory stores models as files under a base directory.
type FileDirectory struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileDirectory creates the base directory if needed.
func NewFileDirectory(baseDir string) (*FileDirectory, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}
	return &FileDirectory{baseDir: baseDir}, nil
}

// Path returns the base directory.
func (d *FileDirectory) Path() string {
	return d.baseDir
}

func (d *FileDirectory) modelPath(id string) string {
	return filepath.Join(d.baseDir, id+modelSuffix)
}

// HasModels implements Directory.
func (d *FileDirectory) HasModels(ctx context.Context, ids []string) (models.StoreStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	found := 0
	for _, id := range ids {
		_, err := os.Stat(d.modelPath(id))
		switch {
		case err == nil:
			found++
		case !errors.Is(err, os.ErrNotExist):
			return models.StoreStatusNone, fmt.Errorf("stat model %s: %w", id, err)
		}
	}
	return statusOf(found, len(ids)), nil
}

// Load implements Directory.
func (d *FileDirectory) Load(ctx context.Context, id string) (*learner.Perceptron, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := os.ReadFile(d.modelPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", id, err)
	}
	return decodeRecord(data, id)
}

// Save implements Directory.
func (d *FileDirectory) Save(ctx context.Context, model *learner.Perceptron, id string, overwrite bool) error {
	data, err := encodeRecord(model, id)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	path := d.modelPath(id)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrModelExists, id)
		}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write model %s: %w", id, err)
	}

	logging.Debug().Str("source_id", id).Int("bytes", len(data)).Msg("Model saved")
	return nil
}

// List implements Directory.
func (d *FileDirectory) List(ctx context.Context) ([]Metadata, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	paths, err := d.modelFiles()
	if err != nil {
		return nil, err
	}
	out := make([]Metadata, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // path comes from a directory listing of baseDir
		if err != nil {
			return nil, fmt.Errorf("read model: %w", err)
		}
		meta, err := decodeMetadata(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, meta)
	}
	return out, nil
}

// LoadModelType implements Directory.
func (d *FileDirectory) LoadModelType(ctx context.Context) (models.ModelType, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(d.baseDir, modelTypeFile))
	if errors.Is(err, os.ErrNotExist) {
		return models.ModelTypeNone, nil
	}
	if err != nil {
		return models.ModelTypeNone, fmt.Errorf("read model type: %w", err)
	}
	return models.ParseModelType(strings.TrimSpace(string(data)))
}

// SetModelType implements Directory.
func (d *FileDirectory) SetModelType(ctx context.Context, t models.ModelType) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := writeFileAtomic(filepath.Join(d.baseDir, modelTypeFile), []byte(string(t)+"\n")); err != nil {
		return fmt.Errorf("write model type: %w", err)
	}
	return nil
}

// Reset implements Directory.
func (d *FileDirectory) Reset(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	paths, err := d.modelFiles()
	if err != nil {
		return "", err
	}

	typePath := filepath.Join(d.baseDir, modelTypeFile)
	if err := os.Remove(typePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("remove model type: %w", err)
	}

	if len(paths) == 0 {
		return msgAlreadyEmpty, nil
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			return "", fmt.Errorf("remove model: %w", err)
		}
	}

	logging.Info().Int("count", len(paths)).Str("path", d.baseDir).Msg("Models deleted")
	return fmt.Sprintf(msgDeleted, len(paths)), nil
}

// Close implements Directory. The file backend holds no resources.
func (d *FileDirectory) Close() error {
	return nil
}

// modelFiles lists model files. Callers hold the lock.
func (d *FileDirectory) modelFiles() ([]string, error) {
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read model directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), modelSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(d.baseDir, e.Name()))
	}
	return paths, nil
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // temp file is gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
