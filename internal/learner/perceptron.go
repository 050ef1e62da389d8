// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package learner

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotTrained is returned when predicting with an untrained model.
	ErrNotTrained = errors.New("model not trained")

	// ErrShape is returned for empty or ragged inputs and feature count changes.
	ErrShape = errors.New("invalid training data shape")
)

// Config controls training.
type Config struct {
	// Epochs is the maximum number of passes over the training data.
	Epochs int `koanf:"epochs"`

	// LearningRate scales every weight update.
	LearningRate float64 `koanf:"learning_rate"`
}

// DefaultConfig returns the training defaults.
func DefaultConfig() Config {
	return Config{
		Epochs:       1000,
		LearningRate: 1.0,
	}
}

// Metadata describes a trained model.
type Metadata struct {
	Classes   []int
	Features  int
	Samples   int
	Epochs    int
	Converged bool
	Version   int
	TrainedAt time.Time
}

// Perceptron is a multi-class linear classifier.
type Perceptron struct {
	mu  sync.RWMutex
	cfg Config

	classes []int
	mean    []float64
	scale   []float64
	// weights[k] holds the weights of classes[k]; the last element is the bias.
	weights [][]float64

	meta Metadata
}

// New creates an untrained perceptron.
func New(cfg Config) *Perceptron {
	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultConfig().Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultConfig().LearningRate
	}
	return &Perceptron{cfg: cfg}
}

// IsTrained reports whether the model can predict.
func (p *Perceptron) IsTrained() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.weights) > 0
}

// Classes returns the known classes in ascending order.
func (p *Perceptron) Classes() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]int, len(p.classes))
	copy(out, p.classes)
	return out
}

// Metadata returns a copy of the training metadata.
func (p *Perceptron) Metadata() Metadata {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m := p.meta
	m.Classes = append([]int(nil), p.meta.Classes...)
	return m
}

// Fit trains a fresh model on X and y, discarding any previous state.
func (p *Perceptron) Fit(X [][]float64, y []int) error {
	nFeatures, err := checkShape(X, y)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.mean, p.scale = fitScaler(X, nFeatures)
	p.classes = nil
	p.weights = nil
	p.addClasses(y, nFeatures)
	p.meta = Metadata{}
	p.train(X, y, nFeatures)
	return nil
}

// Extend continues training on X and y. An untrained model is fitted.
func (p *Perceptron) Extend(X [][]float64, y []int) error {
	if !p.IsTrained() {
		return p.Fit(X, y)
	}

	nFeatures, err := checkShape(X, y)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if nFeatures != len(p.mean) {
		return fmt.Errorf("%w: model has %d features, data has %d", ErrShape, len(p.mean), nFeatures)
	}
	p.addClasses(y, nFeatures)
	p.train(X, y, nFeatures)
	return nil
}

// Predict returns the class with the highest score. Ties go to the lowest class.
func (p *Perceptron) Predict(x []float64) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.weights) == 0 {
		return 0, ErrNotTrained
	}
	if len(x) != len(p.mean) {
		return 0, fmt.Errorf("%w: model has %d features, sample has %d", ErrShape, len(p.mean), len(x))
	}
	return p.classes[p.argmax(p.standardize(x))], nil
}

// Accuracy returns the fraction of samples in X predicted as their label in y.
func (p *Perceptron) Accuracy(X [][]float64, y []int) (float64, error) {
	if _, err := checkShape(X, y); err != nil {
		return 0, err
	}
	correct := 0
	for i, x := range X {
		got, err := p.Predict(x)
		if err != nil {
			return 0, err
		}
		if got == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}

// train runs perceptron epochs. Callers hold the write lock.
func (p *Perceptron) train(X [][]float64, y []int, nFeatures int) {
	index := make(map[int]int, len(p.classes))
	for k, c := range p.classes {
		index[c] = k
	}

	samples := make([][]float64, len(X))
	for i, x := range X {
		samples[i] = p.standardize(x)
	}

	epochs, converged := 0, false
	for epochs < p.cfg.Epochs {
		epochs++
		mistakes := 0
		for i, xs := range samples {
			want := index[y[i]]
			got := p.argmax(xs)
			if got == want {
				continue
			}
			mistakes++
			floats.AddScaled(p.weights[want], p.cfg.LearningRate, xs)
			floats.AddScaled(p.weights[got], -p.cfg.LearningRate, xs)
		}
		if mistakes == 0 {
			converged = true
			break
		}
	}

	p.meta.Classes = append([]int(nil), p.classes...)
	p.meta.Features = nFeatures
	p.meta.Samples += len(X)
	p.meta.Epochs = epochs
	p.meta.Converged = converged
	p.meta.Version++
	p.meta.TrainedAt = time.Now()
}

// addClasses registers unseen classes with zero weights, keeping classes sorted.
func (p *Perceptron) addClasses(y []int, nFeatures int) {
	rows := make(map[int][]float64, len(p.classes))
	for k, c := range p.classes {
		rows[c] = p.weights[k]
	}
	for _, c := range y {
		if _, ok := rows[c]; !ok {
			rows[c] = make([]float64, nFeatures+1)
			p.classes = append(p.classes, c)
		}
	}
	sort.Ints(p.classes)
	p.weights = make([][]float64, len(p.classes))
	for k, c := range p.classes {
		p.weights[k] = rows[c]
	}
}

// standardize scales x and appends the bias input.
func (p *Perceptron) standardize(x []float64) []float64 {
	out := make([]float64, len(x)+1)
	for j, v := range x {
		out[j] = (v - p.mean[j]) / p.scale[j]
	}
	out[len(x)] = 1
	return out
}

func (p *Perceptron) argmax(xs []float64) int {
	best, bestScore := 0, math.Inf(-1)
	for k, w := range p.weights {
		if s := floats.Dot(w, xs); s > bestScore {
			best, bestScore = k, s
		}
	}
	return best
}

// fitScaler computes per-column mean and standard deviation. Constant or
// single-sample columns get a scale of 1.
func fitScaler(X [][]float64, nFeatures int) (mean, scale []float64) {
	mean = make([]float64, nFeatures)
	scale = make([]float64, nFeatures)
	col := make([]float64, len(X))
	for j := 0; j < nFeatures; j++ {
		for i, x := range X {
			col[i] = x[j]
		}
		m, std := stat.MeanStdDev(col, nil)
		if len(X) < 2 || math.IsNaN(std) || std == 0 {
			std = 1
		}
		mean[j], scale[j] = m, std
	}
	return mean, scale
}

func checkShape(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrShape)
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d samples but %d labels", ErrShape, len(X), len(y))
	}
	n := len(X[0])
	if n == 0 {
		return 0, fmt.Errorf("%w: samples have no features", ErrShape)
	}
	for i, x := range X {
		if len(x) != n {
			return 0, fmt.Errorf("%w: sample %d has %d features, want %d", ErrShape, i, len(x), n)
		}
	}
	return n, nil
}

// state is the gob-encoded form of a Perceptron.
type state struct {
	Config  Config
	Classes []int
	Mean    []float64
	Scale   []float64
	Weights [][]float64
	Meta    Metadata
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Perceptron) MarshalBinary() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(state{
		Config:  p.cfg,
		Classes: p.classes,
		Mean:    p.mean,
		Scale:   p.scale,
		Weights: p.weights,
		Meta:    p.meta,
	})
	if err != nil {
		return nil, fmt.Errorf("encode perceptron: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Perceptron) UnmarshalBinary(data []byte) error {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("decode perceptron: %w", err)
	}
	if len(s.Classes) != len(s.Weights) || len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: inconsistent persisted state", ErrShape)
	}
	for _, w := range s.Weights {
		if len(w) != len(s.Mean)+1 {
			return fmt.Errorf("%w: weight row has %d entries, want %d", ErrShape, len(w), len(s.Mean)+1)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = s.Config
	p.classes = s.Classes
	p.mean = s.Mean
	p.scale = s.Scale
	p.weights = s.Weights
	p.meta = s.Meta
	return nil
}
