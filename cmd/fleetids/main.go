// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

// Package main is the entry point for the FleetIDS server.
//
// FleetIDS classifies vehicle telemetry log entries as normal or intrusion.
// A rule stage flags ERROR-level entries; a per-source learned classifier
// judges the rest. Intrusions are written as alert files.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Logging: zerolog, bridged to slog for the supervisor
//  3. Taxonomy: the checksummed domain constants registry
//  4. Model store: gzip files or Badger
//  5. Classifier provider: builds the engine once, on first use
//  6. Notifiers: websocket alert stream and webhook with circuit breaker
//  7. Live dispatcher: classification plus alert files
//  8. Ingest (optional): Watermill router on GoChannel or NATS JetStream,
//     optionally against an embedded JetStream server
//  9. HTTP API (optional): chi router with Prometheus metrics
//
// # Build Tags
//
//	go build -tags nats ./cmd/fleetids   # Enable the NATS JetStream ingest backend and embedded server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree: the HTTP server drains,
// the ingest router finishes in-flight messages, then the model store closes.
//
// # Example Usage
//
//	export MODELS_PATH=/var/lib/fleetids/models
//	export ALERTS_DIR=/var/log/fleetids
//	export INGEST_ENABLED=true INGEST_BACKEND=nats NATS_URL=nats://nats:4222
//	./fleetids
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/fleetids/internal/api"
	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/config"
	"github.com/tomtom215/fleetids/internal/ingest"
	"github.com/tomtom215/fleetids/internal/live"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/modeldir"
	"github.com/tomtom215/fleetids/internal/notify"
	"github.com/tomtom215/fleetids/internal/supervisor"
	"github.com/tomtom215/fleetids/internal/supervisor/services"
	"github.com/tomtom215/fleetids/internal/taxonomy"
	ws "github.com/tomtom215/fleetids/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Log())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("FleetIDS stopped with error")
	}
	logging.Info().Msg("FleetIDS stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	tax, err := loadTaxonomy(cfg.Taxonomy.Path)
	if err != nil {
		return err
	}

	store, err := modeldir.Open(cfg.ModelStore())
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing model store")
		}
	}()

	logging.Info().
		Str("model_backend", cfg.Models.Backend).
		Str("model_path", cfg.Models.Path).
		Str("alerts_dir", cfg.Alerts.Dir).
		Int("taxonomy_version", tax.Version()).
		Int("sources", len(tax.SourceIDs())).
		Msg("Configuration loaded")

	engineCfg := cfg.Engine()
	provider := classifier.NewOptionsProvider(classifier.Options{
		Taxonomy: tax,
		Store:    store,
		Config:   &engineCfg,
	})

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewEngineWarmupService(provider))

	var (
		notifiers   []live.Notifier
		handlerOpts []api.HandlerOption
	)
	if cfg.Server.Enabled && cfg.Alerts.StreamEnabled {
		hub := ws.NewHub()
		tree.AddAPIService(hub)
		notifiers = append(notifiers, hub)
		handlerOpts = append(handlerOpts, api.WithAlertStream(hub, cfg.Server.CORSOrigins))
	}
	if webhookCfg, ok := cfg.Webhook(); ok {
		webhook, err := notify.NewWebhookNotifier(webhookCfg)
		if err != nil {
			return fmt.Errorf("create webhook notifier: %w", err)
		}
		notifiers = append(notifiers, webhook)
		logging.Info().Msg("Alert webhook enabled")
	}
	dispatcher := live.NewDispatcher(provider, cfg.Dispatcher(), live.WithNotifiers(notifiers...))

	if cfg.Ingest.Enabled {
		if cfg.Ingest.Embedded {
			embedded, err := ingest.StartEmbeddedServer(cfg.EmbeddedNATS())
			if err != nil {
				return fmt.Errorf("start embedded NATS server: %w", err)
			}
			defer embedded.Shutdown()
			cfg.Ingest.NATSURL = embedded.ClientURL()
		}

		source, err := newSource(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := source.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing ingest source")
			}
		}()

		svc, err := ingest.NewService(cfg.IngestRouter(), source, dispatcher, ingest.NewLogger())
		if err != nil {
			return fmt.Errorf("create ingest service: %w", err)
		}
		tree.AddDataService(svc)
		handlerOpts = append(handlerOpts, api.WithPublisher(ingest.NewPublisher(source.Publisher, cfg.Ingest.Topic)))
		logging.Info().Str("backend", source.Name).Str("topic", cfg.Ingest.Topic).Msg("Ingest enabled")
	}

	if cfg.Server.Enabled {
		handler, err := api.NewHandler(provider, dispatcher, handlerOpts...)
		if err != nil {
			return fmt.Errorf("create API handler: %w", err)
		}
		apiCfg := cfg.API()
		server := api.NewServer(api.NewRouter(handler, apiCfg), apiCfg)
		tree.AddAPIService(services.NewHTTPServerService(server, apiCfg.Addr(), apiCfg.ShutdownTimeout))
	}

	logging.Info().Msg("Starting FleetIDS supervisor tree")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, s := range report {
			logging.Warn().Str("service", s.Name).Msg("Service did not stop in time")
		}
	}
	return err
}

func loadTaxonomy(path string) (*taxonomy.Taxonomy, error) {
	if path == "" {
		tax, err := taxonomy.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded taxonomy: %w", err)
		}
		return tax, nil
	}
	tax, err := taxonomy.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", path, err)
	}
	return tax, nil
}

func newSource(cfg *config.Config) (*ingest.Source, error) {
	switch cfg.Ingest.Backend {
	case ingest.BackendNATS:
		source, err := ingest.NewNATSSource(cfg.NATS(), ingest.NewLogger())
		if err != nil {
			return nil, fmt.Errorf("connect NATS ingest source: %w", err)
		}
		return source, nil
	case ingest.BackendGoChannel, "":
		return ingest.NewGoChannelSource(ingest.NewLogger()), nil
	default:
		return nil, fmt.Errorf("unknown ingest backend %q", cfg.Ingest.Backend)
	}
}
