// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Models.Backend != "file" {
		t.Errorf("Models.Backend = %q, want file", cfg.Models.Backend)
	}
	if cfg.Classifier.RuleCertainty != 100 || cfg.Classifier.LearnerOverride != 60 || cfg.Classifier.LearnerConfidence != 70 {
		t.Errorf("Classifier thresholds = %+v, want 100/60/70", cfg.Classifier)
	}
	if cfg.Training.Epochs != 1000 {
		t.Errorf("Training.Epochs = %d, want 1000", cfg.Training.Epochs)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Ingest.Enabled {
		t.Error("Ingest.Enabled should be false by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
models:
  backend: badger
  path: /var/lib/fleetids
classifier:
  learner_override: 50
server:
  port: 8080
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LEARNER_CONFIDENCE", "80")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Models.Backend != "badger" || cfg.Models.Path != "/var/lib/fleetids" {
		t.Errorf("Models = %+v", cfg.Models)
	}
	if cfg.Classifier.LearnerOverride != 50 {
		t.Errorf("LearnerOverride = %d, want 50 (file)", cfg.Classifier.LearnerOverride)
	}
	if cfg.Classifier.LearnerConfidence != 80 {
		t.Errorf("LearnerConfidence = %d, want 80 (env)", cfg.Classifier.LearnerConfidence)
	}
	if cfg.Classifier.RuleCertainty != 100 {
		t.Errorf("RuleCertainty = %d, want 100 (default)", cfg.Classifier.RuleCertainty)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 (env over file)", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 5*time.Second {
		t.Errorf("Server.Timeout = %v, want 5s", cfg.Server.Timeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoadFrom_InvalidEnv(t *testing.T) {
	t.Setenv("RULE_CERTAINTY", "150")

	_, err := LoadFrom("")
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("LoadFrom() error = %v, want validation failure", err)
	}
}

func TestFindConfigFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"MODELS_BACKEND", "models.backend"},
		{"HTTP_PORT", "server.port"},
		{"NATS_URL", "ingest.nats_url"},
		{"TRAINING_LEARNING_RATE", "training.learning_rate"},
		{"DISABLE_RATE_LIMIT", "server.rate_limit_disabled"},
		{"ALERTS_WEBHOOK_URL", "alerts.webhook_url"},
		{"NATS_EMBEDDED", "ingest.embedded"},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Models.Backend = "s3" }, "MODELS_BACKEND"},
		{"file backend without path", func(c *Config) { c.Models.Path = "" }, "MODELS_PATH"},
		{"badger in memory", func(c *Config) { c.Models.Backend = "badger"; c.Models.Path = "" }, ""},
		{"no alert dir", func(c *Config) { c.Alerts.Dir = "" }, "ALERTS_DIR"},
		{"threshold above 100", func(c *Config) { c.Classifier.LearnerOverride = 101 }, "learner_override"},
		{"zero epochs", func(c *Config) { c.Training.Epochs = 0 }, "epochs"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"server disabled skips port", func(c *Config) { c.Server.Enabled = false; c.Server.Port = 0 }, ""},
		{"rate limit window", func(c *Config) { c.Server.RateLimitWindow = time.Millisecond }, "RATE_LIMIT_WINDOW"},
		{"ingest backend", func(c *Config) { c.Ingest.Enabled = true; c.Ingest.Backend = "kafka" }, "INGEST_BACKEND"},
		{"nats without url", func(c *Config) { c.Ingest.Enabled = true; c.Ingest.Backend = "nats"; c.Ingest.NATSURL = "" }, "NATS_URL"},
		{"negative dedup ttl", func(c *Config) { c.Ingest.Enabled = true; c.Ingest.DedupTTL = -time.Second }, "INGEST_DEDUP_TTL"},
		{"webhook url scheme", func(c *Config) { c.Alerts.WebhookURL = "ftp://hooks.local" }, "ALERTS_WEBHOOK_URL"},
		{"webhook url", func(c *Config) { c.Alerts.WebhookURL = "https://hooks.local/ids" }, ""},
		{"embedded without nats", func(c *Config) { c.Ingest.Enabled = true; c.Ingest.Embedded = true }, "NATS_EMBEDDED"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSectionConversions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Training.LearningRate = 0.5
	cfg.Alerts.Verbose = true

	if got := cfg.Engine(); got.Training.LearningRate != 0.5 || got.LearnerConfidence != 70 {
		t.Errorf("Engine() = %+v", got)
	}
	if got := cfg.Dispatcher(); got.Dir != "log" || !got.Verbose {
		t.Errorf("Dispatcher() = %+v", got)
	}
	if got := cfg.ModelStore(); got.Backend != "file" || got.Path != "data/models" {
		t.Errorf("ModelStore() = %+v", got)
	}
	if got := cfg.Log(); got.Level != "info" || got.Format != "json" || !got.Timestamp {
		t.Errorf("Log() = %+v", got)
	}
	if got := cfg.API(); got.Addr() != "0.0.0.0:5000" || got.MaxBodyBytes != 32<<20 {
		t.Errorf("API() = %+v", got)
	}
	if got := cfg.IngestRouter(); got.Topic != "fleet_logs" || got.PoisonTopic != "fleet_logs_poison" {
		t.Errorf("IngestRouter() = %+v", got)
	}
	cfg.Ingest.DedupTTL = time.Minute
	cfg.Ingest.ThrottlePerSecond = 50
	if got := cfg.IngestRouter(); got.DedupTTL != time.Minute || got.DedupCapacity != 10000 || got.ThrottlePerSecond != 50 {
		t.Errorf("IngestRouter() dedup/throttle = %+v", got)
	}
	if _, ok := cfg.Webhook(); ok {
		t.Error("Webhook() configured by default")
	}
	cfg.Alerts.WebhookURL = "https://hooks.local/ids"
	cfg.Alerts.WebhookToken = "secret"
	if got, ok := cfg.Webhook(); !ok || got.Headers["Authorization"] != "Bearer secret" || got.BreakerFailures != 5 {
		t.Errorf("Webhook() = %+v, %v", got, ok)
	}
	if got := cfg.EmbeddedNATS(); got.Port != 4222 || got.StoreDir != "data/jetstream" {
		t.Errorf("EmbeddedNATS() = %+v", got)
	}
	if got := cfg.NATS(); got.URL != cfg.Ingest.NATSURL || got.DurableName == "" {
		t.Errorf("NATS() = %+v", got)
	}
}
