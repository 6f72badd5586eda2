// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/partwise/internal/logging"
	"github.com/tomtom215/partwise/internal/metrics"
	"github.com/tomtom215/partwise/internal/validation"
)

// errRequestTimeout marks a computation cut short by the engine's own
// request deadline while the caller was still waiting.
var errRequestTimeout = errors.New("recommendation request timed out")

// Engine orchestrates profile building, hierarchy resolution, candidate
// retrieval, scoring and caching.
//
// Every entry point runs the same pipeline: validate, check the cache,
// resolve the source, fetch candidates, score, rank, format and write
// through. The whole call is bounded by Config.RequestTimeout. When that
// engine-owned deadline fires while the caller is still waiting, the engine
// answers with category recommendations under Config.FallbackTimeout and
// marks the result with FallbackTimeout. Users without qualifying events get
// the same category path marked FallbackColdStart. Fallback results always
// honor the request's exclusions and are never cached under the original key.
//
// Example:
//
//	engine, err := recommend.NewEngine(cfg, db, db, logger,
//	    recommend.WithCache(recommend.NewStoreCache(store, recommend.DefaultBreakerConfig(), time.Now, logger)),
//	    recommend.WithUserDirectory(db),
//	)
//	res, err := engine.SimilarProducts(ctx, recommend.SimilarRequest{ProductID: "p-123", Limit: 10})
//
// Errors carry the package sentinels: ErrInvalidInput, ErrNotFound and
// ErrUpstreamUnavailable. A canceled caller context is returned as is.
//
// Thread Safety: the engine holds no mutable state after NewEngine and is
// safe for concurrent use. Concurrent misses on the same key each compute
// and write; the last writer wins.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	products ProductStore
	events   EventStore
	cache    Cache
	users    UserDirectory
	profiles *ProfileBuilder
	now      func() time.Time
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithCache enables result caching.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithUserDirectory makes unknown users a NotFound error instead of a cold start.
func WithUserDirectory(u UserDirectory) Option {
	return func(e *Engine) { e.users = u }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, products ProductStore, events EventStore, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if products == nil || events == nil {
		return nil, fmt.Errorf("product store and event store are required")
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		products: products,
		events:   events,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.profiles = NewProfileBuilder(events, products, e.config.LookbackDays, e.now)

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// planState carries what a computation learned before it was interrupted.
// exclude is only trustworthy once excludeResolved is set; a fallback must
// not run on a partial exclusion set.
type planState struct {
	fallbackCategories []string
	exclude            map[string]struct{}
	excludeResolved    bool
}

// plan describes one orchestrated computation.
type plan struct {
	kind      Kind
	key       CacheKey
	limit     int
	skipWrite bool
	resolve   func(ctx context.Context, cat *catalog, st *planState) (*Source, error)

	// exclude is known before any I/O, e.g. the source product itself.
	exclude map[string]struct{}

	// loadExclusions rebuilds the request's exclusions for a fallback when
	// resolve was interrupted before computing them. Nil when exclude is
	// already complete.
	loadExclusions func(ctx context.Context) (map[string]struct{}, error)
}

func (p *plan) newState() *planState {
	st := &planState{excludeResolved: p.loadExclusions == nil}
	if len(p.exclude) > 0 {
		st.exclude = make(map[string]struct{}, len(p.exclude))
		for id := range p.exclude {
			st.exclude[id] = struct{}{}
		}
	}
	return st
}

// RecommendationsForUser ranks products for a user from their recent events.
// A user without qualifying events receives category recommendations.
func (e *Engine) RecommendationsForUser(ctx context.Context, req UserRequest) (*Result, error) {
	if err := e.validate(KindPersonalized, &req, req.Limit); err != nil {
		return nil, err
	}

	p := &plan{
		kind:  KindPersonalized,
		key:   CacheKey{SubjectType: SubjectUser, SubjectID: req.UserID, Kind: personalizedKind(req.ExcludeViewed, req.ExcludeInCart, req.ExcludePurchased)},
		limit: req.Limit,
		resolve: func(ctx context.Context, cat *catalog, st *planState) (*Source, error) {
			return e.resolveUser(ctx, cat, st, &req)
		},
	}
	if req.ExcludeViewed || req.ExcludeInCart || req.ExcludePurchased {
		p.loadExclusions = func(ctx context.Context) (map[string]struct{}, error) {
			return e.profiles.Exclusions(ctx, req.UserID, exclusionFlags{
				viewed:    req.ExcludeViewed,
				inCart:    req.ExcludeInCart,
				purchased: req.ExcludePurchased,
			})
		}
	}
	return e.run(ctx, p)
}

// SimilarProducts ranks products against one concrete product.
func (e *Engine) SimilarProducts(ctx context.Context, req SimilarRequest) (*Result, error) {
	if err := e.validate(KindSimilar, &req, req.Limit); err != nil {
		return nil, err
	}

	p := &plan{
		kind:  KindSimilar,
		key:   CacheKey{SubjectType: SubjectProduct, SubjectID: req.ProductID, Kind: string(KindSimilar)},
		limit:   req.Limit,
		exclude: map[string]struct{}{req.ProductID: {}},
		resolve: func(ctx context.Context, cat *catalog, st *planState) (*Source, error) {
			return e.resolveProduct(ctx, cat, st, req.ProductID)
		},
	}
	return e.run(ctx, p)
}

// CategoryRecommendations ranks products within categories. An empty list
// stands for the most popular categories.
func (e *Engine) CategoryRecommendations(ctx context.Context, req CategoryRequest) (*Result, error) {
	if err := e.validate(KindCategory, &req, req.Limit); err != nil {
		return nil, err
	}
	return e.run(ctx, e.categoryPlan(req.CategoryIDs, req.Limit))
}

func (e *Engine) categoryPlan(ids []string, limit int) *plan {
	ids = sortedKeys(toSet(ids))
	return &plan{
		kind:  KindCategory,
		key:   CacheKey{SubjectType: SubjectCategory, SubjectID: categorySubject(ids), Kind: string(KindCategory)},
		limit: limit,
		resolve: func(ctx context.Context, cat *catalog, st *planState) (*Source, error) {
			return e.resolveCategories(ctx, cat, st, ids)
		},
	}
}

// validate rejects malformed requests with ErrInvalidInput.
func (e *Engine) validate(kind Kind, req interface{}, limit int) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		metrics.RecordRecommendation(string(kind), "invalid", 0)
		return fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}
	if limit > e.config.MaxLimit {
		metrics.RecordRecommendation(string(kind), "invalid", 0)
		return fmt.Errorf("%w: limit must be at most %d, got %d", ErrInvalidInput, e.config.MaxLimit, limit)
	}
	return nil
}

// run executes a plan under the request timeout and applies the category
// fallback on cold start or timeout.
func (e *Engine) run(ctx context.Context, p *plan) (*Result, error) {
	start := time.Now()
	logger := e.requestLogger(ctx, p)

	res, st, err := e.execute(ctx, p, e.config.RequestTimeout, logger)
	switch {
	case err == nil:
		outcome := "ok"
		if res.Cached {
			outcome = "cached"
		}
		metrics.RecordRecommendation(string(p.kind), outcome, time.Since(start))
		return res, nil

	case errors.Is(err, errColdStart):
		logger.Debug().Msg("no qualifying events, using category fallback")
		return e.fallback(ctx, p, st, FallbackColdStart, e.config.RequestTimeout, start, logger)

	case errors.Is(err, errRequestTimeout):
		logger.Warn().
			Dur("timeout", e.config.RequestTimeout).
			Strs("categories", st.fallbackCategories).
			Msg("recommendation timed out, using category fallback")
		return e.fallback(ctx, p, st, FallbackTimeout, e.config.FallbackTimeout, start, logger)

	default:
		metrics.RecordRecommendation(string(p.kind), outcomeFor(err), time.Since(start))
		return nil, err
	}
}

// fallback answers a request with category recommendations for the
// categories resolved so far, still honoring the request's exclusions. If
// the exclusions were never computed they are loaded first; when that fails
// too the request fails with ErrUpstreamUnavailable rather than returning
// products the caller asked to exclude.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) fallback(ctx context.Context, p *plan, st *planState, reason FallbackReason,
	timeout time.Duration, start time.Time, logger zerolog.Logger) (*Result, error) {
	metrics.RecordFallback(string(reason))

	exclude, err := e.fallbackExclusions(ctx, p, st, timeout)
	if err != nil {
		metrics.RecordRecommendation(string(p.kind), outcomeFor(err), time.Since(start))
		logger.Warn().Err(err).Msg("exclusions unavailable for fallback")
		return nil, err
	}

	fp := e.categoryPlan(st.fallbackCategories, p.limit+len(exclude))
	res, _, err := e.execute(ctx, fp, timeout, logger)
	if err != nil {
		metrics.RecordRecommendation(string(p.kind), outcomeFor(err), time.Since(start))
		if errors.Is(err, errRequestTimeout) {
			return nil, fmt.Errorf("%w: category fallback: %w", ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("category fallback: %w", err)
	}

	res.Items = withoutExcluded(res.Items, exclude, p.limit)
	res.Fallback = reason
	metrics.RecordRecommendation(string(p.kind), "fallback", time.Since(start))
	return res, nil
}

// fallbackExclusions returns the exclusion set a fallback must honor.
func (e *Engine) fallbackExclusions(ctx context.Context, p *plan, st *planState, timeout time.Duration) (map[string]struct{}, error) {
	if st.excludeResolved {
		return st.exclude, nil
	}

	xctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	loaded, err := p.loadExclusions(xctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrUpstreamUnavailable) {
			return nil, fmt.Errorf("fallback exclusions: %w", err)
		}
		return nil, fmt.Errorf("fallback exclusions: %w: %w", ErrUpstreamUnavailable, err)
	}
	for id := range st.exclude {
		loaded[id] = struct{}{}
	}
	return loaded, nil
}

// execute is cache check, compute under timeout, write-through.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) execute(ctx context.Context, p *plan, timeout time.Duration, logger zerolog.Logger) (*Result, *planState, error) {
	st := p.newState()

	if res := e.tryGetCached(ctx, p, logger); res != nil {
		return res, st, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	items, err := e.compute(reqCtx, p, st, logger)
	if err != nil {
		if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) &&
			!errors.Is(err, ErrNotFound) && !errors.Is(err, errColdStart) {
			return nil, st, fmt.Errorf("%w: %w", errRequestTimeout, err)
		}
		return nil, st, err
	}

	e.cacheResult(ctx, p, items, logger)

	return &Result{Items: items, GeneratedAt: e.now()}, st, nil
}

// tryGetCached returns a cached result, or nil on miss. A cache error turns
// the request into a miss that also skips the write.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) tryGetCached(ctx context.Context, p *plan, logger zerolog.Logger) *Result {
	if e.cache == nil {
		return nil
	}

	entry, ok, err := e.cache.Get(ctx, p.key)
	if err != nil {
		p.skipWrite = true
		metrics.RecordCacheLookup(string(p.kind), "error")
		logger.Warn().Err(err).Msg("cache unavailable, computing fresh")
		return nil
	}
	if !ok || (entry.Capacity < p.limit && len(entry.Items) >= entry.Capacity) {
		metrics.RecordCacheLookup(string(p.kind), "miss")
		return nil
	}

	metrics.RecordCacheLookup(string(p.kind), "hit")
	logger.Debug().Msg("cache hit")

	items := entry.Items
	if len(items) > p.limit {
		items = items[:p.limit]
	}
	return &Result{Items: items, Cached: true, GeneratedAt: entry.CreatedAt}
}

// cacheResult writes the result through to the cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) cacheResult(ctx context.Context, p *plan, items []Recommendation, logger zerolog.Logger) {
	if e.cache == nil || p.skipWrite {
		return
	}
	if err := e.cache.Put(ctx, p.key, items, p.limit, e.config.CacheTTL); err != nil {
		logger.Warn().Err(err).Msg("cache write failed")
	}
}

// requestLogger creates a logger with request context.
func (e *Engine) requestLogger(ctx context.Context, p *plan) zerolog.Logger {
	lc := e.logger.With().
		Str("kind", string(p.kind)).
		Str("subject_type", string(p.key.SubjectType)).
		Str("subject_id", p.key.SubjectID).
		Int("limit", p.limit)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	return lc.Logger()
}

// withoutExcluded drops excluded ids and truncates to limit.
func withoutExcluded(items []Recommendation, exclude map[string]struct{}, limit int) []Recommendation {
	out := make([]Recommendation, 0, min(len(items), limit))
	for _, it := range items {
		if _, skip := exclude[it.ProductID]; skip {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, it)
	}
	return out
}

// outcomeFor maps an error to a metrics outcome label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
