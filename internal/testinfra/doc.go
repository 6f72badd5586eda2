// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run the external services the
// recommendation engine talks to in production:
//
//   - Redis: the shared recommendation cache backend
//   - NATS with JetStream: the behavioral event stream
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// Tests call SkipIfNoDocker first so they skip cleanly where Docker is not
// available.
package testinfra
