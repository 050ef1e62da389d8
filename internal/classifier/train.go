// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/tomtom215/fleetids/internal/features"
	"github.com/tomtom215/fleetids/internal/learner"
	"github.com/tomtom215/fleetids/internal/metrics"
	"github.com/tomtom215/fleetids/internal/modeldir"
	"github.com/tomtom215/fleetids/internal/models"
)

// TrainReport summarizes a completed training run.
type TrainReport struct {
	ModelType models.ModelType
	Sources   []string
	Samples   int
	Duration  time.Duration
}

// ScoreReport holds per-source accuracy and the unweighted mean across sources.
type ScoreReport struct {
	PerSource map[string]float64
	Samples   map[string]int
	Mean      float64
}

// sourceData is the encoded training or scoring data of one source id.
type sourceData struct {
	X [][]float64
	y []int
}

func modeLabel(multiClass bool) string {
	if multiClass {
		return "multiclass"
	}
	return "two_class"
}

// Train fits one model per source id and replaces the loaded model set.
//
// Every precondition is checked before the store is written:
//   - existing models require extend (ErrModelsExist)
//   - extending requires the stored type to match the mode (ErrModelTypeMismatch)
//   - every known source id must be present (ErrMissingSource)
//   - each source's classes must equal its expected classes (ErrClassMismatch)
//
// On success the model type is recorded, the new models are persisted with
// overwrite and the snapshot is swapped. On failure the previous snapshot
// stays in effect.
//
//nolint:gocritic // entries are read-only
func (e *Engine) Train(ctx context.Context, entries []models.LogEntry, multiClass, extend bool) (report TrainReport, err error) {
	if !e.trainMu.TryLock() {
		return TrainReport{}, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordTraining(modeLabel(multiClass), len(entries), time.Since(start), err)
	}()

	ids := e.tax.SourceIDs()
	wantType := models.ModelTypeFor(multiClass)

	status, err := e.store.HasModels(ctx, ids)
	if err != nil {
		return TrainReport{}, fmt.Errorf("check models: %w", err)
	}
	if status != models.StoreStatusNone && !extend {
		return TrainReport{}, fmt.Errorf("%w: store is %s, retry with extend to update them", ErrModelsExist, status)
	}
	if extend && status != models.StoreStatusNone {
		stored, err := e.store.LoadModelType(ctx)
		if err != nil {
			return TrainReport{}, fmt.Errorf("load model type: %w", err)
		}
		if stored != wantType {
			return TrainReport{}, fmt.Errorf("%w: stored %s, requested %s", ErrModelTypeMismatch, stored, wantType)
		}
	}

	data, err := e.buildDataset(entries, multiClass)
	if err != nil {
		return TrainReport{}, err
	}
	if err := e.checkClasses(data, multiClass); err != nil {
		return TrainReport{}, err
	}

	e.logger.Info().
		Str("mode", string(wantType)).
		Bool("extend", extend).
		Int("entries", len(entries)).
		Msg("starting model training")

	fitted := make(map[string]*learner.Perceptron, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return TrainReport{}, err
		}
		m, err := e.fitSource(ctx, id, data[id], extend)
		if err != nil {
			return TrainReport{}, err
		}
		fitted[id] = m
	}

	// The type marker goes first so an interrupted save never leaves a full
	// store without one.
	if err := e.store.SetModelType(ctx, wantType); err != nil {
		return TrainReport{}, fmt.Errorf("set model type: %w", err)
	}
	for _, id := range ids {
		if err := e.store.Save(ctx, fitted[id], id, true); err != nil {
			return TrainReport{}, fmt.Errorf("save model %s: %w", id, err)
		}
	}
	if err := e.reload(ctx); err != nil {
		return TrainReport{}, err
	}

	report = TrainReport{
		ModelType: wantType,
		Sources:   ids,
		Samples:   len(entries),
		Duration:  time.Since(start),
	}
	e.logger.Info().
		Str("mode", string(wantType)).
		Int("sources", len(ids)).
		Dur("duration", report.Duration).
		Msg("model training complete")
	return report, nil
}

func (e *Engine) fitSource(ctx context.Context, id string, d *sourceData, extend bool) (*learner.Perceptron, error) {
	if extend {
		m, err := e.store.Load(ctx, id)
		switch {
		case err == nil:
			if err := m.Extend(d.X, d.y); err != nil {
				return nil, fmt.Errorf("extend model %s: %w", id, err)
			}
			return m, nil
		case errors.Is(err, modeldir.ErrCorrupt):
			return nil, fmt.Errorf("%w: %w", ErrModelIntegrity, err)
		case !errors.Is(err, modeldir.ErrNotFound):
			return nil, fmt.Errorf("load model %s: %w", id, err)
		}
	}

	m := learner.New(e.cfg.Training)
	if err := m.Fit(d.X, d.y); err != nil {
		return nil, fmt.Errorf("fit model %s: %w", id, err)
	}
	return m, nil
}

// Score computes each model's accuracy on entries. The store must hold a
// complete model set of the requested type.
//
//nolint:gocritic // entries are read-only
func (e *Engine) Score(ctx context.Context, entries []models.LogEntry, multiClass bool) (ScoreReport, error) {
	ids := e.tax.SourceIDs()

	status, err := e.store.HasModels(ctx, ids)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("check models: %w", err)
	}
	switch status {
	case models.StoreStatusNone:
		return ScoreReport{}, fmt.Errorf("%w: no models to score", ErrIncompleteModels)
	case models.StoreStatusSome:
		return ScoreReport{}, fmt.Errorf("%w: partial scoring: %w", ErrNotImplemented, ErrIncompleteModels)
	}

	wantType := models.ModelTypeFor(multiClass)
	stored, err := e.store.LoadModelType(ctx)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("load model type: %w", err)
	}
	if stored != wantType {
		return ScoreReport{}, fmt.Errorf("%w: stored %s, requested %s", ErrModelTypeMismatch, stored, wantType)
	}

	data, err := e.buildDataset(entries, multiClass)
	if err != nil {
		return ScoreReport{}, err
	}

	report := ScoreReport{
		PerSource: make(map[string]float64, len(ids)),
		Samples:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		m, err := e.store.Load(ctx, id)
		if errors.Is(err, modeldir.ErrCorrupt) {
			return ScoreReport{}, fmt.Errorf("%w: %w", ErrModelIntegrity, err)
		}
		if err != nil {
			return ScoreReport{}, fmt.Errorf("load model %s: %w", id, err)
		}
		acc, err := m.Accuracy(data[id].X, data[id].y)
		if err != nil {
			return ScoreReport{}, fmt.Errorf("score %s: %w", id, err)
		}
		report.PerSource[id] = acc
		report.Samples[id] = len(data[id].y)
		report.Mean += acc
	}
	report.Mean /= float64(len(ids))

	metrics.RecordScore(report.PerSource, report.Mean)
	e.logger.Info().Float64("accuracy", report.Mean).Int("sources", len(ids)).Msg("scoring complete")
	return report, nil
}

// ResetModels deletes every persisted model and drops the learned stage.
func (e *Engine) ResetModels(ctx context.Context) (string, error) {
	if !e.trainMu.TryLock() {
		return "", ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	msg, err := e.store.Reset(ctx)
	if err != nil {
		return "", fmt.Errorf("reset models: %w", err)
	}
	e.snapshot.Store(&modelSet{modelType: models.ModelTypeNone})
	metrics.SetModelsLoaded(0)

	e.logger.Info().Str("status", msg).Msg("models reset")
	return msg, nil
}

// buildDataset groups labelled entries by source id and encodes them. Every
// known source id must be represented.
//
//nolint:gocritic // entries are read-only
func (e *Engine) buildDataset(entries []models.LogEntry, multiClass bool) (map[string]*sourceData, error) {
	data := make(map[string]*sourceData)
	for i := range entries {
		entry := &entries[i]
		if !entry.HasLabel() {
			return nil, fmt.Errorf("entry %d (%s): %w: missing intrusion label", i, entry.LogID, features.ErrUnknownLabel)
		}
		id, _, err := e.tax.ResolveAppID(entry.AppID)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w: %v", i, entry.LogID, features.ErrUnknownSource, err)
		}
		vec, err := e.encoder.Encode(*entry, entry.AppID)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entry.LogID, err)
		}
		class, err := e.encoder.LabelToClass(*entry.Intrusion, multiClass)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entry.LogID, err)
		}

		d, ok := data[id]
		if !ok {
			d = &sourceData{}
			data[id] = d
		}
		d.X = append(d.X, vec)
		d.y = append(d.y, class)
	}

	var missing []string
	for _, id := range e.tax.SourceIDs() {
		if _, ok := data[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no entries for %v", ErrMissingSource, missing)
	}
	return data, nil
}

// checkClasses verifies that every source's observed classes equal its
// expected classes under the requested mode.
func (e *Engine) checkClasses(data map[string]*sourceData, multiClass bool) error {
	for _, id := range e.tax.SourceIDs() {
		want, err := e.tax.ExpectedClasses(id, multiClass)
		if err != nil {
			return err
		}
		seen := make(map[int]bool)
		for _, c := range data[id].y {
			seen[c] = true
		}
		got := make([]int, 0, len(seen))
		for c := range seen {
			got = append(got, c)
		}
		sort.Ints(got)

		if !slices.Equal(got, want) {
			return fmt.Errorf("%w: %s has classes %v, want %v", ErrClassMismatch, id, got, want)
		}
	}
	return nil
}
