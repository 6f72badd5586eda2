// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package recommend implements the content-based recommendation engine for
// the auto parts catalog.
//
// # Architecture
//
// Every request runs the same pipeline:
//
//	request -> validate -> cache lookup -> resolve source -> fetch candidates
//	        -> score -> rank -> format -> cache write-through
//
// A source is what candidates are compared against. It is built from one
// product (SimilarProducts), from a user's recent events
// (RecommendationsForUser) or from a category set (CategoryRecommendations).
//
// # Scoring
//
// Scores are the sum of weighted signals from a named weight table:
//
//   - category_exact / category_hierarchy: same category, or an ancestor,
//     descendant or sibling within the configured hierarchy depth
//   - complementary: a bonus for parent/child relations and consumable pairs
//     such as engine oil and oil filters
//   - brand_exact / brand_country
//   - price_proximity, tag_overlap, vehicle_exact, recency
//
// Bonuses are additive: a candidate in the source's own category that also
// has children in the source resolution receives both weights.
//
// # Fallbacks
//
// A user with no qualifying events gets category recommendations for the
// most popular categories (Result.Fallback == "cold_start"). A computation
// that exceeds the request timeout is answered from the categories it had
// resolved so far under a shorter fallback timeout (Result.Fallback ==
// "timeout"). Fallback results are never stored under the original key.
//
// # Caching
//
// Results are cached per (subject type, subject id, kind). StoreCache adapts
// any KVStore and guards it with a circuit breaker; when the store is
// unavailable the engine computes fresh results and skips the write.
//
// # Thread Safety
//
// Engine, Scorer, Hierarchy and StoreCache are safe for concurrent use.
// Scoring above Config.ParallelThreshold candidates is split across
// GOMAXPROCS goroutines.
package recommend
