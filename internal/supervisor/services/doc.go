// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
Package services adapts server components to suture.Service.

  - HTTPServerService: ListenAndServe/Shutdown to Serve
  - IngestService: a blocking Run(ctx) plus Close to Serve
  - PeriodicService: a func(ctx) error run on a ticker

Every wrapper returns ctx.Err() on cancellation and a wrapped error on
failure so the supervisor restarts it.
*/
package services
