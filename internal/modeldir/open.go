// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package modeldir

import "fmt"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config selects and configures a backend.
type Config struct {
	Backend    string `koanf:"backend" validate:"oneof=file badger"`
	Path       string `koanf:"path" validate:"required"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// Open returns the Directory described by cfg.
func Open(cfg Config) (Directory, error) {
	switch cfg.Backend {
	case BackendFile, "":
		d, err := NewFileDirectory(cfg.Path)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendBadger:
		d, err := OpenBadger(cfg.Path, cfg.SyncWrites)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
}
