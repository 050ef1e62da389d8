// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

/*
Package notify delivers alert notifications to external endpoints.

WebhookNotifier POSTs each alert as JSON:

	{
	  "event_type": "intrusion_alert",
	  "source": "fleetids",
	  "timestamp": "2026-01-01T12:00:00Z",
	  "alert": { "id": "...", "classification": "intrusion", "confidence": 70, ... }
	}

Sends are paced by a token bucket and guarded by a circuit breaker. After
BreakerFailures consecutive failures the breaker opens and Notify fails
fast with ErrBreakerOpen until BreakerTimeout elapses; one probe request
then decides whether it closes again. Breaker state is exported as the
fleetids_circuit_breaker_state gauge.
*/
package notify
