// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package middleware provides the chi middleware the API mounts on every
// route: request id propagation into the logging context and Prometheus
// request metrics labeled by route pattern.
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
//
// CORS and rate limiting come from go-chi/cors and go-chi/httprate and are
// configured in the api package.
package middleware
