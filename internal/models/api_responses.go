// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package models

import (
	"time"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse wraps every HTTP body. Exactly one of Data or Error is
// meaningful, selected by Status:
//
//	{
//	  "status": "success",
//	  "data": [{"product_id": "p-2", "score": 32, "reason": "Fits the same vehicle · Same category: Brake Pads"}],
//	  "metadata": {"timestamp": "2026-01-28T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced. Fallback names the
// strategy used when the personalized path was skipped, e.g. "cold_start".
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Fallback    string    `json:"fallback,omitempty"`
}

// APIError is the error half of the envelope. Code is stable for clients;
// Message is for humans and may change.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Success builds a success envelope, stamping meta with now when unset.
func Success(data interface{}, meta Metadata, now time.Time) *APIResponse {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now.UTC()
	}
	return &APIResponse{Status: StatusSuccess, Data: data, Metadata: meta}
}

// Failure builds an error envelope.
func Failure(code, message string, details map[string]interface{}, now time.Time) *APIResponse {
	return &APIResponse{
		Status:   StatusError,
		Metadata: Metadata{Timestamp: now.UTC()},
		Error:    &APIError{Code: code, Message: message, Details: details},
	}
}
