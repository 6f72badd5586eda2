// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package api is the thin HTTP adapter over the recommendation engine.
//
// Routes:
//
//	GET  /api/v1/users/{userID}/recommendations?limit=&exclude_viewed=&exclude_in_cart=&exclude_purchased=
//	GET  /api/v1/products/{productID}/similar?limit=
//	GET  /api/v1/categories/recommendations?category_id=a&category_id=b&limit=
//	POST /api/v1/events
//	GET  /healthz
//	GET  /metrics
//
// Every JSON response uses the models.APIResponse envelope. Engine errors
// map to statuses by sentinel:
//
//	recommend.ErrInvalidInput        400 VALIDATION_ERROR
//	recommend.ErrNotFound            404 NOT_FOUND
//	recommend.ErrUpstreamUnavailable 503 UPSTREAM_UNAVAILABLE
//
// Anything else is a 500. An omitted limit uses the configured default.
package api
