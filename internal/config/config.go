// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package config

import (
	"time"

	"github.com/tomtom215/fleetids/internal/api"
	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/ingest"
	"github.com/tomtom215/fleetids/internal/learner"
	"github.com/tomtom215/fleetids/internal/live"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/modeldir"
	"github.com/tomtom215/fleetids/internal/notify"
)

// Config holds all application configuration.
type Config struct {
	Models     ModelsConfig     `koanf:"models"`
	Alerts     AlertsConfig     `koanf:"alerts"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Training   TrainingConfig   `koanf:"training"`
	Taxonomy   TaxonomyConfig   `koanf:"taxonomy"`
	Server     ServerConfig     `koanf:"server"`
	Ingest     IngestConfig     `koanf:"ingest"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ModelsConfig selects the model store backend.
type ModelsConfig struct {
	// Backend is "file" (one gzip file per source) or "badger".
	// Default: file
	Backend string `koanf:"backend"`

	// Path is the model directory or the Badger database directory.
	// An empty path with the badger backend keeps models in memory.
	Path string `koanf:"path"`

	// SyncWrites makes Badger fsync every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// AlertsConfig configures the live dispatcher and alert notifications.
type AlertsConfig struct {
	Dir     string `koanf:"dir"`
	Verbose bool   `koanf:"verbose"`

	// StreamEnabled serves GET /api/v1/alerts/stream. Requires the server.
	StreamEnabled bool `koanf:"stream_enabled"`

	// WebhookURL receives a POST per alert. Empty disables the webhook.
	WebhookURL         string        `koanf:"webhook_url"`
	WebhookToken       string        `koanf:"webhook_token"`
	WebhookTimeout     time.Duration `koanf:"webhook_timeout"`
	WebhookMinInterval time.Duration `koanf:"webhook_min_interval"`
	BreakerFailures    uint32        `koanf:"breaker_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// ClassifierConfig holds the arbitration thresholds.
type ClassifierConfig struct {
	// RuleCertainty is the rule confidence at which the learned stage is skipped.
	RuleCertainty int `koanf:"rule_certainty"`

	// LearnerOverride is the learned confidence above which the learner wins outright.
	LearnerOverride int `koanf:"learner_override"`

	// LearnerConfidence is the confidence attached to every learned result.
	LearnerConfidence int `koanf:"learner_confidence"`
}

// TrainingConfig holds learner hyperparameters.
type TrainingConfig struct {
	Epochs       int     `koanf:"epochs"`
	LearningRate float64 `koanf:"learning_rate"`
}

// TaxonomyConfig points at an optional taxonomy override file.
type TaxonomyConfig struct {
	// Path replaces the embedded taxonomy when set. The file passes the same
	// version and checksum checks.
	Path string `koanf:"path"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// IngestConfig configures the telemetry consumer.
type IngestConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is "gochannel" (in-process) or "nats" (requires the nats build tag).
	Backend string `koanf:"backend"`

	Topic        string        `koanf:"topic"`
	NATSURL      string        `koanf:"nats_url"`
	DurableName  string        `koanf:"durable_name"`
	QueueGroup   string        `koanf:"queue_group"`
	PoisonTopic  string        `koanf:"poison_topic"`
	RetryCount   int           `koanf:"retry_count"`
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// ThrottlePerSecond caps classified messages per second; 0 is unlimited.
	ThrottlePerSecond int64 `koanf:"throttle_per_second"`

	// DedupTTL drops redelivered message ids seen within the window; 0 disables.
	DedupTTL      time.Duration `koanf:"dedup_ttl"`
	DedupCapacity int           `koanf:"dedup_capacity"`

	// Embedded runs a JetStream server in-process for the nats backend and
	// connects to it instead of NATSURL.
	Embedded         bool   `koanf:"embedded"`
	EmbeddedPort     int    `koanf:"embedded_port"`
	EmbeddedStoreDir string `koanf:"embedded_store_dir"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ModelStore returns the model directory settings.
func (c *Config) ModelStore() modeldir.Config {
	return modeldir.Config{
		Backend:    c.Models.Backend,
		Path:       c.Models.Path,
		SyncWrites: c.Models.SyncWrites,
	}
}

// Engine returns the classifier engine settings.
func (c *Config) Engine() classifier.Config {
	return classifier.Config{
		RuleCertainty:     c.Classifier.RuleCertainty,
		LearnerOverride:   c.Classifier.LearnerOverride,
		LearnerConfidence: c.Classifier.LearnerConfidence,
		Training: learner.Config{
			Epochs:       c.Training.Epochs,
			LearningRate: c.Training.LearningRate,
		},
	}
}

// Dispatcher returns the live dispatcher settings.
func (c *Config) Dispatcher() live.Config {
	return live.Config{Dir: c.Alerts.Dir, Verbose: c.Alerts.Verbose}
}

// Webhook returns the webhook notifier settings and whether one is configured.
func (c *Config) Webhook() (notify.WebhookConfig, bool) {
	if c.Alerts.WebhookURL == "" {
		return notify.WebhookConfig{}, false
	}
	cfg := notify.WebhookConfig{
		URL:             c.Alerts.WebhookURL,
		Timeout:         c.Alerts.WebhookTimeout,
		MinInterval:     c.Alerts.WebhookMinInterval,
		BreakerFailures: c.Alerts.BreakerFailures,
		BreakerTimeout:  c.Alerts.BreakerTimeout,
	}
	if c.Alerts.WebhookToken != "" {
		cfg.Headers = map[string]string{"Authorization": "Bearer " + c.Alerts.WebhookToken}
	}
	return cfg, true
}

// Log returns the logger settings.
func (c *Config) Log() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// API returns the HTTP server settings.
func (c *Config) API() api.Config {
	return api.Config{
		Host:              c.Server.Host,
		Port:              c.Server.Port,
		Timeout:           c.Server.Timeout,
		ShutdownTimeout:   c.Server.ShutdownTimeout,
		MaxBodyBytes:      c.Server.MaxBodyBytes,
		CORSOrigins:       c.Server.CORSOrigins,
		RateLimitReqs:     c.Server.RateLimitReqs,
		RateLimitWindow:   c.Server.RateLimitWindow,
		RateLimitDisabled: c.Server.RateLimitDisabled,
	}
}

// IngestRouter returns the ingest router settings.
func (c *Config) IngestRouter() ingest.Config {
	cfg := ingest.DefaultConfig()
	cfg.Topic = c.Ingest.Topic
	cfg.PoisonTopic = c.Ingest.PoisonTopic
	cfg.RetryMaxRetries = c.Ingest.RetryCount
	cfg.ThrottlePerSecond = c.Ingest.ThrottlePerSecond
	cfg.DedupTTL = c.Ingest.DedupTTL
	if c.Ingest.DedupCapacity > 0 {
		cfg.DedupCapacity = c.Ingest.DedupCapacity
	}
	if c.Ingest.CloseTimeout > 0 {
		cfg.CloseTimeout = c.Ingest.CloseTimeout
	}
	return cfg
}

// NATS returns the JetStream source settings.
func (c *Config) NATS() ingest.NATSConfig {
	cfg := ingest.DefaultNATSConfig()
	cfg.URL = c.Ingest.NATSURL
	if c.Ingest.DurableName != "" {
		cfg.DurableName = c.Ingest.DurableName
	}
	if c.Ingest.QueueGroup != "" {
		cfg.QueueGroup = c.Ingest.QueueGroup
	}
	if c.Ingest.CloseTimeout > 0 {
		cfg.CloseTimeout = c.Ingest.CloseTimeout
	}
	return cfg
}

// EmbeddedNATS returns the in-process JetStream server settings.
func (c *Config) EmbeddedNATS() ingest.EmbeddedConfig {
	cfg := ingest.DefaultEmbeddedConfig()
	if c.Ingest.EmbeddedPort != 0 {
		cfg.Port = c.Ingest.EmbeddedPort
	}
	if c.Ingest.EmbeddedStoreDir != "" {
		cfg.StoreDir = c.Ingest.EmbeddedStoreDir
	}
	return cfg
}
