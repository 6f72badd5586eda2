// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string

	// Format is the output format: json or console.
	// Default: json
	Format string

	// Caller includes caller file and line number in logs.
	Caller bool

	// Timestamp enables timestamps in log output.
	// Default: true
	Timestamp bool

	// Output is the writer for log output.
	// Default: os.Stderr
	Output io.Writer
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// global holds the process logger; readers never block.
var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging works before an explicit Init() call
func init() {
	Init(DefaultConfig())
}

// levels maps configuration names to zerolog levels. Unknown names are info.
var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"disabled": zerolog.Disabled,
}

func parseLevel(level string) zerolog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Init configures the global logger from cfg.
//
// It sets the zerolog global level and field names, wraps Output in a
// ConsoleWriter when Format is "console", and swaps the new logger in.
// Output defaults to os.Stderr.
//
// Example:
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "json", Timestamp: true})
//
// Thread Safety: safe to call concurrently with logging calls. The zerolog
// field-name globals are not synchronized, so call Init before starting
// goroutines that log.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	out := cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	SetLogger(ctx.Logger())
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *global.Load()
}

// SetLogger replaces the global logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	global.Store(&l)
}

// With starts a child logger from the global one.
func With() zerolog.Context { return global.Load().With() }

// Debug starts a debug message.
func Debug() *zerolog.Event { return global.Load().Debug() }

// Info starts an info message.
func Info() *zerolog.Event { return global.Load().Info() }

// Warn starts a warn message.
func Warn() *zerolog.Event { return global.Load().Warn() }

// Error starts an error message.
func Error() *zerolog.Event { return global.Load().Error() }

// Fatal starts a fatal message. The process exits after Msg.
func Fatal() *zerolog.Event { return global.Load().Fatal() }

// Err starts an error message with err attached, or an info message when
// err is nil.
func Err(err error) *zerolog.Event { return global.Load().Err(err) }

// NewTestLogger returns a JSON logger writing to w at trace level, for tests
// that assert on log output.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.TraceLevel)
}
