// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/metrics"
	"github.com/tomtom215/fleetids/internal/models"
)

const (
	alertPrefix   = "intrusion_"
	alertSuffix   = ".log"
	archivePrefix = "logs_until_"

	headerTimeLayout  = "Monday January 02 2006 - 15:04:05"
	archiveTimeLayout = "2006-01-02_15:04:05"

	// maxNameAttempts bounds the regeneration loop for unique names.
	maxNameAttempts = 100
)

// ErrNameExhausted is returned when no unused alert or archive name was found.
var ErrNameExhausted = errors.New("no unused name available")

// Classifier is the contract the dispatcher consumes.
type Classifier interface {
	Classify(ctx context.Context, entry models.LogEntry) (models.IdsResult, error)
}

// Notifier receives every recorded alert. Delivery failures are logged and
// never fail Process; the alert file is the record of truth.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert *models.Alert) error
}

// Config configures a Dispatcher.
type Config struct {
	// Dir receives alert files. It is created on the first alert.
	Dir string `koanf:"dir"`

	// Verbose prints a console banner for every alert.
	Verbose bool `koanf:"verbose"`
}

// Dispatcher classifies entries and records alerts.
type Dispatcher struct {
	classifier Classifier
	dir        string
	verbose    bool
	console    io.Writer
	now        func() time.Time
	newID      func() string
	logger     zerolog.Logger
	notifiers  []Notifier

	// mu serializes name selection with file creation and archiving.
	mu sync.Mutex
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithConsole sets the writer for verbose banners. Defaults to os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(d *Dispatcher) { d.console = w }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithNotifiers adds alert notifiers, called in order after each alert file
// is written.
func WithNotifiers(n ...Notifier) Option {
	return func(d *Dispatcher) { d.notifiers = append(d.notifiers, n...) }
}

// withIDs overrides alert id generation in tests.
func withIDs(newID func() string) Option {
	return func(d *Dispatcher) { d.newID = newID }
}

// NewDispatcher returns a dispatcher writing into cfg.Dir.
func NewDispatcher(c Classifier, cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		classifier: c,
		dir:        cfg.Dir,
		verbose:    cfg.Verbose,
		console:    os.Stdout,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		logger:     logging.WithComponent("live"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir returns the alert directory.
func (d *Dispatcher) Dir() string {
	return d.dir
}

// Process classifies entry and writes an alert file unless the result is a
// normal non-event. It returns the alert path, or "" when nothing was written.
//
//nolint:gocritic // LogEntry is passed by value to match Classifier
func (d *Dispatcher) Process(ctx context.Context, entry models.LogEntry) (string, error) {
	result, err := d.classifier.Classify(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("classify %s: %w", entry.LogID, err)
	}
	if result.Classification == models.ClassificationNormal && result.Confidence > 0 {
		return "", nil
	}

	detectedAt := d.now()
	id, path, err := d.writeAlert(&entry, result, detectedAt)
	if err != nil {
		return "", err
	}
	metrics.RecordAlert(string(result.Classification))

	d.logger.Warn().
		Str("app_id", entry.AppID).
		Str("log_id", entry.LogID).
		Str("classification", string(result.Classification)).
		Int("confidence", result.Confidence).
		Str("file", path).
		Msg("intrusion detected")

	if d.verbose {
		fmt.Fprintf(d.console, "\n!!!\nINTRUSION DETECTED. See log file at: %s\n!!!\n\n", path)
	}

	if len(d.notifiers) > 0 {
		d.notify(ctx, &models.Alert{
			ID:             id,
			Path:           path,
			DetectedAt:     detectedAt,
			Classification: result.Classification,
			Confidence:     result.Confidence,
			Entry:          entry,
		})
	}
	return path, nil
}

func (d *Dispatcher) notify(ctx context.Context, alert *models.Alert) {
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			d.logger.Error().Err(err).
				Str("notifier", n.Name()).
				Str("alert_id", alert.ID).
				Msg("alert notification failed")
		}
	}
}

func (d *Dispatcher) writeAlert(entry *models.LogEntry, result models.IdsResult, at time.Time) (id, path string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return "", "", fmt.Errorf("create alert directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Intrusion detected | %s\n\n", at.Format(headerTimeLayout))
	fmt.Fprintf(&b, "Classification: %s\n", result.Classification)
	fmt.Fprintf(&b, "Confidence: %d %%\n\n", result.Confidence)
	fmt.Fprintf(&b, "Data received:\n%s\n", entry.LogString())

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		id = d.newID()
		path = filepath.Join(d.dir, alertPrefix+id+alertSuffix)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // name is generated
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("create alert file: %w", err)
		}
		if _, err := f.WriteString(b.String()); err != nil {
			_ = f.Close()
			return "", "", fmt.Errorf("write alert file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", "", fmt.Errorf("close alert file: %w", err)
		}
		return id, path, nil
	}
	return "", "", fmt.Errorf("alert file: %w", ErrNameExhausted)
}
