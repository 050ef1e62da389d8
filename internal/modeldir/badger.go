// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package modeldir

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/fleetids/internal/learner"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/models"
)

// Key prefixes
const (
	prefixModel  = "model:"
	keyModelType = "meta:model_type"
)

// BadgerDirectory stores models in BadgerDB.
type BadgerDirectory struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a BadgerDB model store at path. An empty
// path opens an in-memory store.
func OpenBadger(path string, syncWrites bool) (*BadgerDirectory, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.SyncWrites = syncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Bool("sync_writes", syncWrites).Msg("Model store opened")
	return &BadgerDirectory{db: db}, nil
}

func modelKey(id string) []byte {
	return []byte(prefixModel + id)
}

func (d *BadgerDirectory) checkOpen() error {
	if d.closed {
		return ErrClosed
	}
	return nil
}

// HasModels implements Directory.
func (d *BadgerDirectory) HasModels(ctx context.Context, ids []string) (models.StoreStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return models.StoreStatusNone, err
	}

	found := 0
	err := d.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			_, err := txn.Get(modelKey(id))
			switch {
			case err == nil:
				found++
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.StoreStatusNone, fmt.Errorf("check models: %w", err)
	}
	return statusOf(found, len(ids)), nil
}

// Load implements Directory.
func (d *BadgerDirectory) Load(ctx context.Context, id string) (*learner.Perceptron, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	var data []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", id, err)
	}
	return decodeRecord(data, id)
}

// Save implements Directory.
func (d *BadgerDirectory) Save(ctx context.Context, model *learner.Perceptron, id string, overwrite bool) error {
	data, err := encodeRecord(model, id)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		if !overwrite {
			_, err := txn.Get(modelKey(id))
			if err == nil {
				return fmt.Errorf("%w: %s", ErrModelExists, id)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return txn.SetEntry(badger.NewEntry(modelKey(id), data))
	})
	if err != nil {
		if errors.Is(err, ErrModelExists) {
			return err
		}
		return fmt.Errorf("write model %s: %w", id, err)
	}

	logging.Debug().Str("source_id", id).Int("bytes", len(data)).Msg("Model saved")
	return nil
}

// List implements Directory.
func (d *BadgerDirectory) List(ctx context.Context) ([]Metadata, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	var out []Metadata
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixModel)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta Metadata
			err := it.Item().Value(func(val []byte) error {
				m, err := decodeMetadata(val)
				meta = m
				return err
			})
			if err != nil {
				return err
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return out, nil
}

// LoadModelType implements Directory.
func (d *BadgerDirectory) LoadModelType(ctx context.Context) (models.ModelType, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return models.ModelTypeNone, err
	}

	var raw string
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyModelType))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.ModelTypeNone, nil
	}
	if err != nil {
		return models.ModelTypeNone, fmt.Errorf("read model type: %w", err)
	}
	return models.ParseModelType(raw)
}

// SetModelType implements Directory.
func (d *BadgerDirectory) SetModelType(ctx context.Context, t models.ModelType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}

	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyModelType), []byte(t))
	})
	if err != nil {
		return fmt.Errorf("write model type: %w", err)
	}
	return nil
}

// Reset implements Directory.
func (d *BadgerDirectory) Reset(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return "", err
	}

	var keys [][]byte
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixModel)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan models: %w", err)
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(keyModelType))
	})
	if err != nil {
		return "", fmt.Errorf("delete models: %w", err)
	}

	if len(keys) == 0 {
		return msgAlreadyEmpty, nil
	}
	logging.Info().Int("count", len(keys)).Msg("Models deleted")
	return fmt.Sprintf(msgDeleted, len(keys)), nil
}

// Close implements Directory.
func (d *BadgerDirectory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}
