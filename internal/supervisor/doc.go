// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

# Layout

	partwise
	├── data-layer
	│   ├── memory-cache-janitor   (cache backend "memory")
	│   ├── badger-cache-gc        (cache backend "badger")
	│   └── duckdb-checkpoint
	├── ingest-layer
	│   └── event-ingest           (ingest enabled)
	└── api-layer
	    └── http-server

Each layer has its own failure counter. A crash-looping ingest router backs
off on its own while recommendations keep being served.

# Restart Policy

A service returning an error is restarted. Returning suture.ErrDoNotRestart
stops it for good. Returning ctx.Err() after cancellation is a clean stop.
Once a layer's decayed failure count passes FailureThreshold, restarts in
that layer pause for FailureBackoff.

# Logging

Supervisor events (restarts, backoff, timeouts) go through sutureslog to the
slog logger passed to NewTree, which cmd/server bridges into zerolog with
logging.NewSlogLogger.

# Usage

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(memoryStore)
	tree.AddIngestService(services.NewIngestService(ingestor, 30*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err := tree.Serve(ctx)
*/
package supervisor
