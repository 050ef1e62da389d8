// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetids/internal/features"
	"github.com/tomtom215/fleetids/internal/learner"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/metrics"
	"github.com/tomtom215/fleetids/internal/modeldir"
	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/taxonomy"
)

// Classification stages used for metrics.
const (
	stageRule    = "rule"
	stageLearner = "learner"
)

// Options configure NewEngine.
type Options struct {
	// Taxonomy is the verified domain constants registry. Required.
	Taxonomy *taxonomy.Taxonomy

	// Store persists per-source models. Required.
	Store modeldir.Directory

	// Config holds thresholds and training settings. Zero value means defaults.
	Config *Config

	// Rules overrides the rule stage. Nil registers DefaultRules.
	Rules []Rule
}

// modelSet is an immutable snapshot of loaded models. A nil models map means
// no learned classifier is available.
type modelSet struct {
	modelType models.ModelType
	models    map[string]*learner.Perceptron
}

func (s *modelSet) hasLearner() bool {
	return s != nil && len(s.models) > 0
}

// Engine orchestrates rule-based and learned classification and the model
// lifecycle. It is safe for concurrent use; Train and ResetModels are
// serialized and fail fast when another run holds the engine.
type Engine struct {
	cfg     Config
	tax     *taxonomy.Taxonomy
	encoder *features.Encoder
	store   modeldir.Directory
	rules   []Rule
	logger  zerolog.Logger

	snapshot atomic.Pointer[modelSet]
	trainMu  sync.Mutex
}

// NewEngine builds an engine and loads the persisted models. A store without
// a complete model set still yields a working engine that only has the rule
// stage.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Taxonomy == nil {
		return nil, fmt.Errorf("%w: taxonomy is required", ErrIntegrity)
	}
	if opts.Store == nil {
		return nil, errors.New("model store is required")
	}

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier config: %w", err)
	}

	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules(cfg)
	}

	e := &Engine{
		cfg:     cfg,
		tax:     opts.Taxonomy,
		encoder: features.NewEncoder(opts.Taxonomy),
		store:   opts.Store,
		rules:   rules,
		logger:  logging.WithComponent("classifier"),
	}

	if err := e.reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// HasLearner reports whether a complete model set is loaded.
func (e *Engine) HasLearner() bool {
	return e.snapshot.Load().hasLearner()
}

// ModelType returns the type of the loaded model set.
func (e *Engine) ModelType() models.ModelType {
	if s := e.snapshot.Load(); s != nil {
		return s.modelType
	}
	return models.ModelTypeNone
}

// Status describes the loaded model set and the backing store.
func (e *Engine) Status(ctx context.Context) (models.StatusResponse, error) {
	ids := e.tax.SourceIDs()
	status, err := e.store.HasModels(ctx, ids)
	if err != nil {
		return models.StatusResponse{}, err
	}
	s := e.snapshot.Load()
	return models.StatusResponse{
		ModelType:   s.modelType,
		StoreStatus: status,
		Loaded:      len(s.models),
		Sources:     len(ids),
	}, nil
}

// reload replaces the snapshot with the models currently in the store.
func (e *Engine) reload(ctx context.Context) error {
	set, err := e.loadModelSet(ctx)
	if err != nil {
		return err
	}
	e.snapshot.Store(set)
	metrics.SetModelsLoaded(len(set.models))

	e.logger.Info().
		Str("model_type", string(set.modelType)).
		Int("models", len(set.models)).
		Bool("learner", set.hasLearner()).
		Msg("model set loaded")
	return nil
}

func (e *Engine) loadModelSet(ctx context.Context) (*modelSet, error) {
	ids := e.tax.SourceIDs()
	status, err := e.store.HasModels(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check models: %w", err)
	}
	if status != models.StoreStatusAll {
		if status == models.StoreStatusSome {
			e.logger.Warn().Msg("model store is incomplete; learned classifier disabled")
		}
		return &modelSet{modelType: models.ModelTypeNone}, nil
	}

	modelType, err := e.store.LoadModelType(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model type: %w", err)
	}
	if modelType == models.ModelTypeNone {
		e.logger.Warn().Msg("model store has no model type; learned classifier disabled until models are reset")
		return &modelSet{modelType: models.ModelTypeNone}, nil
	}

	loaded := make(map[string]*learner.Perceptron, len(ids))
	for _, id := range ids {
		m, err := e.store.Load(ctx, id)
		if errors.Is(err, modeldir.ErrCorrupt) {
			return nil, fmt.Errorf("%w: %w", ErrModelIntegrity, err)
		}
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", id, err)
		}
		loaded[id] = m
	}
	return &modelSet{modelType: modelType, models: loaded}, nil
}

// Classify runs the rule stage and, unless a rule is certain, the learned
// stage, then arbitrates between both results.
//
// Without a learned classifier an entry that no rule is certain about yields
// ErrNoLearner.
//
//nolint:gocritic // LogEntry is passed by value on purpose
func (e *Engine) Classify(ctx context.Context, entry models.LogEntry) (models.IdsResult, error) {
	start := time.Now()

	rule := evaluateRules(e.rules, &entry)
	if rule.Confidence >= e.cfg.RuleCertainty {
		metrics.RecordClassification(stageRule, string(rule.Classification), time.Since(start))
		return rule, nil
	}

	set := e.snapshot.Load()
	if !set.hasLearner() {
		metrics.RecordClassificationError("no_learner")
		return models.IdsResult{}, ErrNoLearner
	}

	learned, err := e.classifyLearned(set, &entry)
	if err != nil {
		kind := "other"
		if errors.Is(err, features.ErrEncoding) {
			kind = "encoding"
		}
		metrics.RecordClassificationError(kind)
		return models.IdsResult{}, err
	}

	result, stage := e.arbitrate(rule, learned)
	metrics.RecordClassification(stage, string(result.Classification), time.Since(start))
	return result, nil
}

// arbitrate returns the learned result when it is confident enough, otherwise
// the more confident of both. Ties favor the learned result.
func (e *Engine) arbitrate(rule, learned models.IdsResult) (models.IdsResult, string) {
	if learned.Confidence > e.cfg.LearnerOverride {
		return learned, stageLearner
	}
	if rule.Confidence > learned.Confidence {
		return rule, stageRule
	}
	return learned, stageLearner
}

func (e *Engine) classifyLearned(set *modelSet, entry *models.LogEntry) (models.IdsResult, error) {
	id, _, err := e.tax.ResolveAppID(entry.AppID)
	if err != nil {
		return models.IdsResult{}, fmt.Errorf("%w: %v", features.ErrUnknownSource, err)
	}
	model, ok := set.models[id]
	if !ok {
		return models.IdsResult{}, fmt.Errorf("%w: no model for %s", ErrIncompleteModels, id)
	}

	vec, err := e.encoder.Encode(*entry, entry.AppID)
	if err != nil {
		return models.IdsResult{}, err
	}
	class, err := model.Predict(vec)
	if err != nil {
		return models.IdsResult{}, fmt.Errorf("predict %s: %w", id, err)
	}

	intrusion, err := e.encoder.IsIntrusionClass(class, set.modelType == models.ModelTypeMultiClass)
	if err != nil {
		return models.IdsResult{}, err
	}

	result := models.IdsResult{Classification: models.ClassificationNormal, Confidence: e.cfg.LearnerConfidence}
	if intrusion {
		result.Classification = models.ClassificationIntrusion
	}
	return result, nil
}
