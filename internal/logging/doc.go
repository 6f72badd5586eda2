// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package logging provides the global zerolog logger used across Partwise.
//
// Output is JSON by default and human-readable with Format "console".
// Levels, format and caller info come from the logging section of the
// configuration (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//	logging.Info().Str("backend", "redis").Msg("Recommendation cache ready")
//
// # Request Context
//
// The API middleware stores a request id in the request context. Ctx
// attaches it, plus any correlation id, to every entry:
//
//	logging.Ctx(ctx).Warn().Err(err).Str("user_id", id).Msg("Falling back to popular categories")
//
// # Adapters
//
// Two adapters route third-party logs into the same stream:
//
//   - NewSlogLogger returns an *slog.Logger for the suture supervisor hook.
//   - NewWatermillLogger returns a watermill.LoggerAdapter for the ingest
//     router and subscribers. Watermill info entries are written at debug.
//
// # Thread Safety
//
// The global logger sits behind an atomic pointer, so reads never block.
// Init may be called again to reconfigure it, which tests use to capture
// output. Loggers already derived with With or WithComponent keep the
// writer they were created with.
package logging
