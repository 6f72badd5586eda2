// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// captureGlobal points the global logger at a buffer for the duration of a test.
func captureGlobal(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, Format: "json", Timestamp: true, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || !cfg.Timestamp || cfg.Caller {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInit_LevelFilters(t *testing.T) {
	buf := captureGlobal(t, "warn")

	Info().Msg("cache warmed")
	Warn().Str("backend", "redis").Msg("cache breaker open")
	Err(errors.New("dial tcp: refused")).Msg("redis unavailable")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (info filtered): %s", len(lines), buf.String())
	}
	if lines[0]["level"] != "warn" || lines[0]["backend"] != "redis" {
		t.Errorf("warn line = %v", lines[0])
	}
	if lines[1]["error"] != "dial tcp: refused" {
		t.Errorf("error line = %v", lines[1])
	}
	if _, ok := lines[0]["time"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestInit_Console(t *testing.T) {
	buf := captureGlobal(t, "info")
	Init(Config{Level: "info", Format: "console", Output: buf})

	Info().Msg("server listening")
	if out := buf.String(); !strings.Contains(out, "server listening") || strings.HasPrefix(out, "{") {
		t.Errorf("console output = %q", out)
	}
}

func TestCtx_AttachesIDs(t *testing.T) {
	buf := captureGlobal(t, "debug")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr1234")
	Ctx(ctx).Info().Str("user_id", "user-demo-1").Msg("recommendations served")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	got := lines[0]
	if got["request_id"] != "req-1" || got["correlation_id"] != "corr1234" || got["user_id"] != "user-demo-1" {
		t.Errorf("line = %v", got)
	}
}

func TestCtx_UsesContextLogger(t *testing.T) {
	captureGlobal(t, "trace")
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf).With().Str("component", "api").Logger())

	Ctx(ctx).Debug().Msg("routed")
	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["component"] != "api" {
		t.Errorf("lines = %v", lines)
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" {
		t.Error("empty context returned ids")
	}

	ctx = ContextWithNewCorrelationID(ctx)
	if id := CorrelationIDFromContext(ctx); len(id) != 8 {
		t.Errorf("generated correlation id %q, want 8 chars", id)
	}
	if a, b := GenerateRequestID(), GenerateRequestID(); a == b || len(a) != 36 {
		t.Errorf("GenerateRequestID() = %q, %q", a, b)
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t, "info")

	logger := WithComponent("ingest")
	logger.Info().Msg("subscribed")

	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0]["component"] != "ingest" {
		t.Errorf("lines = %v", lines)
	}
}
