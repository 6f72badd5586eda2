// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/partwise/internal/logging"
	"github.com/tomtom215/partwise/internal/metrics"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generated when absent", "", false},
		{"upstream id reused", "edge-7f3a.42", true},
		{"unsafe id replaced", "abc\ninjected", false},
		{"overlong id replaced", string(make([]byte, 65)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenRequestID, seenCorrelation string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenRequestID = logging.RequestIDFromContext(r.Context())
				seenCorrelation = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" || header != seenRequestID {
				t.Errorf("header %q, context %q; want equal and non-empty", header, seenRequestID)
			}
			if got := header == tt.incoming; got != tt.wantSame {
				t.Errorf("reused upstream id = %v, want %v", got, tt.wantSame)
			}
			if seenCorrelation == "" {
				t.Error("correlation id missing from context")
			}
		})
	}
}

func TestPrometheusMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/products/{productID}/similar", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	pattern := "/api/v1/products/{productID}/similar"
	before404 := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "404"))
	beforeOK := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	beforeMiss := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))

	for _, path := range []string{"/api/v1/products/prd-1/similar", "/api/v1/products/prd-2/similar", "/healthz", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "404")) - before404; got != 2 {
		t.Errorf("pattern 404 delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/healthz", "200")) - beforeOK; got != 1 {
		t.Errorf("healthz 200 delta = %v, want 1 (implicit status)", got)
	}
	if got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")) - beforeMiss; got != 1 {
		t.Errorf("unmatched delta = %v, want 1", got)
	}
}
