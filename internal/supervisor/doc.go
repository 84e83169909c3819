// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for Cinematch using suture v4.

Long-running services are organized into a two-layer tree:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   ├── RefitService
	│   └── StoreMaintenanceService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing refit loop is restarted with backoff inside the data layer while
the API keeps answering from the last published model.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRefitService(engine, store, refitCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog, which writes to the slog logger bridged onto zerolog by the
logging package.

# Failure handling

FailureThreshold, FailureDecay and FailureBackoff follow suture's semantics;
zero values in TreeConfig fall back to DefaultTreeConfig. ShutdownTimeout
bounds how long each service may take to stop; services that overrun are
listed by UnstoppedServiceReport.
*/
package supervisor
