// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fleetids/config.yaml",
	"/etc/fleetids/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Backend:    "file",
			Path:       "data/models",
			SyncWrites: false,
		},
		Alerts: AlertsConfig{
			Dir:                "log",
			Verbose:            false,
			StreamEnabled:      true,
			WebhookTimeout:     10 * time.Second,
			WebhookMinInterval: 100 * time.Millisecond,
			BreakerFailures:    5,
			BreakerTimeout:     30 * time.Second,
		},
		Classifier: ClassifierConfig{
			RuleCertainty:     100,
			LearnerOverride:   60,
			LearnerConfidence: 70,
		},
		Training: TrainingConfig{
			Epochs:       1000,
			LearningRate: 1.0,
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            5000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20, // training batches can be large
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Ingest: IngestConfig{
			Enabled:          false,
			Backend:          "gochannel",
			Topic:            "fleet_logs",
			NATSURL:          "nats://127.0.0.1:4222",
			DurableName:      "fleetids",
			QueueGroup:       "classifiers",
			PoisonTopic:      "fleet_logs_poison",
			RetryCount:       3,
			CloseTimeout:     30 * time.Second,
			DedupCapacity:    10000,
			EmbeddedPort:     4222,
			EmbeddedStoreDir: "data/jetstream",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing priority, and validates the result.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, preferring CONFIG_PATH.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated environment values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"models_backend":     "models.backend",
	"models_path":        "models.path",
	"models_sync_writes": "models.sync_writes",

	"alerts_dir":                  "alerts.dir",
	"alerts_verbose":              "alerts.verbose",
	"alerts_stream_enabled":       "alerts.stream_enabled",
	"alerts_webhook_url":          "alerts.webhook_url",
	"alerts_webhook_token":        "alerts.webhook_token",
	"alerts_webhook_timeout":      "alerts.webhook_timeout",
	"alerts_webhook_min_interval": "alerts.webhook_min_interval",
	"alerts_breaker_failures":     "alerts.breaker_failures",
	"alerts_breaker_timeout":      "alerts.breaker_timeout",

	"rule_certainty":     "classifier.rule_certainty",
	"learner_override":   "classifier.learner_override",
	"learner_confidence": "classifier.learner_confidence",

	"training_epochs":        "training.epochs",
	"training_learning_rate": "training.learning_rate",

	"taxonomy_path": "taxonomy.path",

	"http_enabled":          "server.enabled",
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_max_body_bytes":   "server.max_body_bytes",
	"cors_origins":          "server.cors_origins",
	"rate_limit_reqs":       "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	"ingest_enabled":        "ingest.enabled",
	"ingest_backend":        "ingest.backend",
	"ingest_topic":          "ingest.topic",
	"nats_url":              "ingest.nats_url",
	"nats_durable_name":     "ingest.durable_name",
	"nats_queue_group":      "ingest.queue_group",
	"ingest_poison_topic":   "ingest.poison_topic",
	"ingest_retry_count":    "ingest.retry_count",
	"ingest_close_timeout":  "ingest.close_timeout",
	"ingest_throttle":       "ingest.throttle_per_second",
	"ingest_dedup_ttl":      "ingest.dedup_ttl",
	"ingest_dedup_capacity": "ingest.dedup_capacity",
	"nats_embedded":         "ingest.embedded",
	"nats_embedded_port":    "ingest.embedded_port",
	"nats_store_dir":        "ingest.embedded_store_dir",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MODELS_BACKEND -> models.backend
//   - HTTP_PORT -> server.port
//   - NATS_URL -> ingest.nats_url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
