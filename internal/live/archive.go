// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package live

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/fleetids/internal/metrics"
)

const resetPrefix = "Intrusion logs: "

// ResetLog moves every pending alert file into a new archive folder and
// returns a status message. A missing or empty alert directory is not an error.
func (d *Dispatcher) ResetLog() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, os.ErrNotExist) {
		return resetPrefix + "Log folder doesn't exist", nil
	}
	if err != nil {
		return "", fmt.Errorf("read alert directory: %w", err)
	}
	if len(entries) == 0 {
		return resetPrefix + "Log folder is empty", nil
	}

	folder, err := d.archiveName()
	if err != nil {
		return "", err
	}
	folderPath := filepath.Join(d.dir, folder)
	if err := os.Mkdir(folderPath, 0o750); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}

	moved := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), alertSuffix) {
			continue
		}
		if err := os.Rename(filepath.Join(d.dir, e.Name()), filepath.Join(folderPath, e.Name())); err != nil {
			return "", fmt.Errorf("archive %s: %w", e.Name(), err)
		}
		moved++
	}
	metrics.RecordAlertArchive(moved)

	plural := ""
	if moved > 1 {
		plural = "s"
	}
	msg := fmt.Sprintf("%sMoved %d file%s to %s", resetPrefix, moved, plural, folder)
	d.logger.Info().Int("files", moved).Str("folder", folder).Msg("alert files archived")
	return msg, nil
}

// archiveName returns an unused logs_until_<timestamp> folder name. A taken
// name gets a numeric suffix.
func (d *Dispatcher) archiveName() (string, error) {
	base := archivePrefix + d.now().Format(archiveTimeLayout)
	name := base
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		if _, err := os.Lstat(filepath.Join(d.dir, name)); errors.Is(err, os.ErrNotExist) {
			return name, nil
		} else if err != nil {
			return "", fmt.Errorf("check archive folder: %w", err)
		}
		name = fmt.Sprintf("%s_%d", base, attempt+1)
	}
	return "", fmt.Errorf("archive folder: %w", ErrNameExhausted)
}
