// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services provides suture.Service implementations for Cinematch.

RefitService keeps the recommendation model fresh. It fits on startup, on a
fixed interval, and whenever Trigger is called (throttled with a token bucket).
Each fit runs under a timeout and a gobreaker circuit breaker; consecutive
data source failures open the breaker so scheduled refits stop hammering the
store. Invalid input and cancellation never trip it. Every attempt that
reaches the engine is written to the fit history and the history is pruned to
the configured limit.

StoreMaintenanceService runs BadgerDB value log GC periodically.

HTTPServerService adapts *http.Server's ListenAndServe/Shutdown pair to
suture's context-aware Serve.
*/
package services
