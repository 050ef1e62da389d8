// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package services adapts FleetIDS components to suture v4 supervision.

Each wrapper implements suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer so suture can name it in logs.

# Available Services

HTTP Server (HTTPServerService):
  - Binds the listener before serving so address errors surface at once
  - Shuts down gracefully when the context is canceled

Engine Warmup (EngineWarmupService):
  - Builds the shared classifier engine at startup instead of on the
    first request, then leaves the tree with suture.ErrDoNotRestart

The ingest router is supervised directly: *ingest.Service already
implements suture.Service.

# Usage

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddDataService(services.NewEngineWarmupService(provider))
*/
package services
