// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/partwise/internal/eventprocessor"
	"github.com/tomtom215/partwise/internal/logging"
	"github.com/tomtom215/partwise/internal/models"
	"github.com/tomtom215/partwise/internal/recommend"
)

// maxEventBodyBytes bounds POST /api/v1/events bodies.
const maxEventBodyBytes = 64 << 10

// Recommender is the engine surface the handlers call.
type Recommender interface {
	RecommendationsForUser(ctx context.Context, req recommend.UserRequest) (*recommend.Result, error)
	SimilarProducts(ctx context.Context, req recommend.SimilarRequest) (*recommend.Result, error)
	CategoryRecommendations(ctx context.Context, req recommend.CategoryRequest) (*recommend.Result, error)
}

// EventPublisher accepts interaction events for ingestion.
type EventPublisher interface {
	Publish(ctx context.Context, e eventprocessor.InteractionEvent) (string, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP endpoints.
type Handler struct {
	engine       Recommender
	events       EventPublisher
	checks       map[string]Pinger
	defaultLimit int
}

// NewHandler creates a handler. events may be nil when ingestion is disabled.
func NewHandler(engine Recommender, events EventPublisher, defaultLimit int) *Handler {
	if defaultLimit < 1 {
		defaultLimit = recommend.DefaultConfig().DefaultLimit
	}
	return &Handler{
		engine:       engine,
		events:       events,
		checks:       make(map[string]Pinger),
		defaultLimit: defaultLimit,
	}
}

// AddHealthCheck registers a dependency reported by /healthz.
func (h *Handler) AddHealthCheck(name string, p Pinger) {
	h.checks[name] = p
}

// parseLimit returns the default for an absent limit. A present but
// non-numeric limit is reported; range checks are the engine's job.
func (h *Handler) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	return limit, nil
}

func parseBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}

func respondResult(w http.ResponseWriter, start time.Time, res *recommend.Result) {
	items := res.Items
	if items == nil {
		items = []recommend.Recommendation{}
	}
	respondSuccess(w, http.StatusOK, items, models.Metadata{
		Timestamp:   res.GeneratedAt,
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      res.Cached,
		Fallback:    string(res.Fallback),
	})
}

// UserRecommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := h.parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	req := recommend.UserRequest{UserID: chi.URLParam(r, "userID"), Limit: limit}
	for key, dst := range map[string]*bool{
		"exclude_viewed":    &req.ExcludeViewed,
		"exclude_in_cart":   &req.ExcludeInCart,
		"exclude_purchased": &req.ExcludePurchased,
	} {
		if *dst, err = parseBool(r, key); err != nil {
			respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
			return
		}
	}

	res, err := h.engine.RecommendationsForUser(r.Context(), req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondResult(w, start, res)
}

// SimilarProducts handles GET /api/v1/products/{productID}/similar.
func (h *Handler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := h.parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	res, err := h.engine.SimilarProducts(r.Context(), recommend.SimilarRequest{
		ProductID: chi.URLParam(r, "productID"),
		Limit:     limit,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondResult(w, start, res)
}

// CategoryRecommendations handles GET /api/v1/categories/recommendations.
// Repeated category_id parameters select several categories; none selects
// the most popular ones.
func (h *Handler) CategoryRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := h.parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	res, err := h.engine.CategoryRecommendations(r.Context(), recommend.CategoryRequest{
		CategoryIDs: r.URL.Query()["category_id"],
		Limit:       limit,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondResult(w, start, res)
}

// PostEvent handles POST /api/v1/events.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		respondError(w, http.StatusServiceUnavailable, codeIngestOff, "Event ingestion is disabled", nil)
		return
	}

	var event eventprocessor.InteractionEvent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "Request body must be a JSON interaction event", nil)
		return
	}

	id, err := h.events.Publish(r.Context(), event)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("event_id", id).
		Str("event_type", event.Type).
		Msg("Interaction event accepted")
	respondSuccess(w, http.StatusAccepted, map[string]string{"event_id": id}, models.Metadata{})
}

// Healthz handles GET /healthz. Any failing dependency yields 503.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = "unavailable"
			logging.Ctx(r.Context()).Warn().Err(err).Str("check", name).Msg("Health check failed")
			continue
		}
		results[name] = "ok"
	}

	if status != http.StatusOK {
		respondError(w, status, codeUpstream, "One or more dependencies are unavailable", map[string]interface{}{"checks": results})
		return
	}
	respondSuccess(w, status, map[string]interface{}{"status": "ok", "checks": results}, models.Metadata{})
}
