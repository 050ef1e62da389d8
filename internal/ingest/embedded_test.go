// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

//go:build nats

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/fleetids/internal/models"
)

func TestEmbeddedServer_RoundTrip(t *testing.T) {
	cfg := DefaultEmbeddedConfig()
	cfg.Port = -1
	cfg.StoreDir = t.TempDir()
	srv, err := StartEmbeddedServer(cfg)
	if err != nil {
		t.Fatalf("StartEmbeddedServer() error: %v", err)
	}
	t.Cleanup(srv.Shutdown)
	if !srv.Running() {
		t.Fatal("server not running")
	}

	natsCfg := DefaultNATSConfig()
	natsCfg.URL = srv.ClientURL()
	natsCfg.CloseTimeout = 5 * time.Second
	source, err := NewNATSSource(natsCfg, nil)
	if err != nil {
		t.Fatalf("NewNATSSource() error: %v", err)
	}
	t.Cleanup(func() { _ = source.Close() })

	routerCfg := testConfig()
	routerCfg.Topic = "fleet_logs"
	routerCfg.PoisonTopic = ""
	proc := &stubProcessor{entries: make(chan models.LogEntry, 1)}
	svc, err := NewService(routerCfg, source, proc, nil)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	startService(t, svc)

	if err := NewPublisher(source.Publisher, routerCfg.Topic).Publish(context.Background(), testEntry()); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	select {
	case got := <-proc.entries:
		if got.AppID != "GAUSSIAN_1" {
			t.Errorf("received %+v", got)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("entry was not delivered through JetStream")
	}
}
