// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package supervisor runs the long-lived FleetIDS services under suture v4.

The tree has two layers for failure isolation:

	RootSupervisor ("fleetids")
	├── DataSupervisor ("data-layer")
	│   ├── EngineWarmupService
	│   └── ingest.Service (if ingest.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if server.enabled)

A broker outage that keeps restarting the ingest router does not take the
HTTP API down, and a port conflict on the API does not stop ingestion.

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog, which bridges to zerolog via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(ingestService)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)
*/
package supervisor
