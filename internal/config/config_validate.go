// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/fleetids/internal/modeldir"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateModels(); err != nil {
		return err
	}
	engine := c.Engine()
	if err := engine.Validate(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateModels() error {
	switch c.Models.Backend {
	case modeldir.BackendFile:
		if c.Models.Path == "" {
			return fmt.Errorf("MODELS_PATH is required for the file backend")
		}
	case modeldir.BackendBadger:
	default:
		return fmt.Errorf("MODELS_BACKEND must be one of: file, badger (got %q)", c.Models.Backend)
	}
	if c.Alerts.Dir == "" {
		return fmt.Errorf("ALERTS_DIR is required")
	}
	if c.Alerts.WebhookURL != "" {
		u, err := url.Parse(c.Alerts.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("ALERTS_WEBHOOK_URL must be an absolute http(s) url")
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
		}
		if c.Server.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}
	return nil
}

func (c *Config) validateIngest() error {
	if !c.Ingest.Enabled {
		return nil
	}
	if c.Ingest.Topic == "" {
		return fmt.Errorf("INGEST_TOPIC is required when ingest is enabled")
	}
	switch c.Ingest.Backend {
	case "gochannel":
	case "nats":
		if c.Ingest.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the nats ingest backend")
		}
	default:
		return fmt.Errorf("INGEST_BACKEND must be one of: gochannel, nats (got %q)", c.Ingest.Backend)
	}
	if c.Ingest.RetryCount < 0 {
		return fmt.Errorf("INGEST_RETRY_COUNT must not be negative")
	}
	if c.Ingest.Embedded && c.Ingest.Backend != "nats" {
		return fmt.Errorf("NATS_EMBEDDED requires INGEST_BACKEND=nats")
	}
	if c.Ingest.ThrottlePerSecond < 0 || c.Ingest.DedupTTL < 0 || c.Ingest.DedupCapacity < 0 {
		return fmt.Errorf("INGEST_THROTTLE, INGEST_DEDUP_TTL and INGEST_DEDUP_CAPACITY must not be negative")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
