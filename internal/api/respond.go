// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/partwise/internal/eventprocessor"
	"github.com/tomtom215/partwise/internal/logging"
	"github.com/tomtom215/partwise/internal/models"
	"github.com/tomtom215/partwise/internal/recommend"
	"github.com/tomtom215/partwise/internal/validation"
)

// Error codes carried in APIError.Code.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeNotFound    = "NOT_FOUND"
	codeUpstream    = "UPSTREAM_UNAVAILABLE"
	codeTimeout     = "TIMEOUT"
	codeInternal    = "INTERNAL_ERROR"
	codeIngestOff   = "INGEST_DISABLED"
	codeRateLimited = "RATE_LIMIT_EXCEEDED"
)

// sanitizeLogValue escapes control characters so client input cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes the envelope with goccy/go-json.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, meta models.Metadata) {
	respondJSON(w, status, models.Success(data, meta, time.Now()))
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, models.Failure(code, message, details, time.Now()))
}

// respondEngineError maps the error taxonomy onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)

	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Int("status", status).
		Str("code", code).
		Msg("Request failed")

	respondError(w, status, code, message, validationDetails(err, status))
}

// validationDetails exposes per-field failures on 400 responses.
func validationDetails(err error, status int) map[string]interface{} {
	var verr *validation.RequestValidationError
	if status != http.StatusBadRequest || !errors.As(err, &verr) {
		return nil
	}
	return verr.ToAPIError().Details
}

func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput), errors.Is(err, eventprocessor.ErrMalformedEvent):
		// validation messages describe the field, never internals
		return http.StatusBadRequest, codeValidation, validationMessage(err)
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, codeNotFound, "Resource not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout, "Request timed out"
	case errors.Is(err, recommend.ErrUpstreamUnavailable), errors.Is(err, eventprocessor.ErrPublisherClosed):
		return http.StatusServiceUnavailable, codeUpstream, "A backing service is unavailable"
	default:
		return http.StatusInternalServerError, codeInternal, "Internal server error"
	}
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{recommend.ErrInvalidInput.Error() + ": ", eventprocessor.ErrMalformedEvent.Error() + ": "} {
		if i := strings.LastIndex(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
	}
	return msg
}
