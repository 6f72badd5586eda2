// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey int

const (
	scopeKey contextKey = iota
	loggerKey
)

// scope carries the ids attached to every log line of a request.
type scope struct {
	correlationID string
	requestID     string
}

func scopeFrom(ctx context.Context) scope {
	sc, _ := ctx.Value(scopeKey).(scope)
	return sc
}

// GenerateCorrelationID returns a short id: the first 8 characters of a UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a full UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID sets the correlation id, keeping any request id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	sc := scopeFrom(ctx)
	sc.correlationID = id
	return context.WithValue(ctx, scopeKey, sc)
}

// ContextWithNewCorrelationID sets a freshly generated correlation id.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// ContextWithRequestID sets the request id, keeping any correlation id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	sc := scopeFrom(ctx)
	sc.requestID = id
	return context.WithValue(ctx, scopeKey, sc)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ContextWithLogger stores a logger in the context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the stored logger, or the global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns a logger with correlation_id and request_id from ctx attached.
//
//	logging.Ctx(ctx).Info().Str("product_id", id).Msg("Similar products served")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder with the context ids pre-populated.
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := LoggerFromContext(ctx).With()
	sc := scopeFrom(ctx)
	if sc.correlationID != "" {
		logCtx = logCtx.Str("correlation_id", sc.correlationID)
	}
	if sc.requestID != "" {
		logCtx = logCtx.Str("request_id", sc.requestID)
	}
	return logCtx
}

// WithComponent creates a child logger with a component field.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
