// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/partwise/internal/metrics"
	"github.com/tomtom215/partwise/internal/models"
)

// catalog is the per-request snapshot of categories and brands.
type catalog struct {
	hierarchy *Hierarchy
	brands    map[string]models.Brand
}

// rankedProduct pairs a candidate with its score.
type rankedProduct struct {
	product *models.Product
	score   Score
}

func (e *Engine) loadCatalog(ctx context.Context) (*catalog, error) {
	categories, err := e.products.ListCategories(ctx)
	if err != nil {
		return nil, upstream("list categories", err)
	}
	brands, err := e.products.ListBrands(ctx)
	if err != nil {
		return nil, upstream("list brands", err)
	}

	byID := make(map[string]models.Brand, len(brands))
	for _, b := range brands {
		byID[b.ID] = b
	}
	return &catalog{
		hierarchy: NewHierarchy(categories, e.config.HierarchyDepth),
		brands:    byID,
	}, nil
}

// compute runs the full pipeline for one plan: resolve the source, fetch
// candidates, score, rank and format.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) compute(ctx context.Context, p *plan, st *planState, logger zerolog.Logger) ([]Recommendation, error) {
	cat, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	src, err := p.resolve(ctx, cat, st)
	if err != nil {
		return nil, err
	}

	candidates, err := e.products.FindProducts(ctx, src.Filter(e.config.CandidateLimit))
	if err != nil {
		return nil, upstream("find candidates", err)
	}

	now := e.now()
	scorer := NewScorer(e.config, cat.hierarchy, cat.brands, now)
	ranked, skipped, err := e.scoreCandidates(ctx, scorer, src, candidates, logger)
	if err != nil {
		return nil, err
	}
	metrics.RecordCandidates(len(ranked), skipped)

	sortRanked(ranked)

	buffer := p.limit * 2
	if len(ranked) > buffer {
		ranked = ranked[:buffer]
	}

	items := e.format(cat, src, ranked)
	if len(items) > p.limit {
		items = items[:p.limit]
	}

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("skipped", skipped).
		Int("returned", len(items)).
		Msg("recommendations computed")

	return items, nil
}

// scoreCandidates scores every candidate the source does not exclude.
// Malformed candidates are skipped. Large sets are scored in parallel
// chunks; the result order follows the candidate order either way.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) scoreCandidates(ctx context.Context, scorer *Scorer, src *Source, candidates []models.Product,
	logger zerolog.Logger) ([]rankedProduct, int, error) {
	pool := make([]*models.Product, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if src.Excludes(c.ID) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		pool = append(pool, c)
	}

	results := make([]rankedProduct, len(pool))
	valid := make([]bool, len(pool))

	scoreOne := func(i int) {
		sc, err := scorer.Score(src, pool[i])
		if err != nil {
			if errors.Is(err, ErrInvalidCandidate) {
				logger.Warn().Err(err).Str("product_id", pool[i].ID).Msg("skipping candidate")
			}
			return
		}
		results[i] = rankedProduct{product: pool[i], score: sc}
		valid[i] = true
	}

	if len(pool) < e.config.ParallelThreshold {
		for i := range pool {
			scoreOne(i)
		}
	} else if err := scoreParallel(ctx, len(pool), scoreOne); err != nil {
		return nil, 0, fmt.Errorf("score candidates: %w", err)
	}

	ranked := make([]rankedProduct, 0, len(pool))
	skipped := 0
	for i := range pool {
		if !valid[i] {
			skipped++
			continue
		}
		ranked = append(ranked, results[i])
	}
	return ranked, skipped, nil
}

// scoreParallel splits [0, n) into one chunk per processor. Each index is
// written by exactly one goroutine.
func scoreParallel(ctx context.Context, n int, scoreOne func(int)) error {
	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				scoreOne(i)
			}
			return nil
		})
	}
	return g.Wait()
}

// sortRanked orders by score, then newest first, then id.
func sortRanked(ranked []rankedProduct) {
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score.Total != b.score.Total {
			return a.score.Total > b.score.Total
		}
		if !a.product.CreatedAt.Equal(b.product.CreatedAt) {
			return a.product.CreatedAt.After(b.product.CreatedAt)
		}
		return a.product.ID < b.product.ID
	})
}

// format attaches summaries and reasons, then re-ranks by score.
func (e *Engine) format(cat *catalog, src *Source, ranked []rankedProduct) []Recommendation {
	reasons := NewReasonGenerator(e.config.MaxReasonSignals, cat.hierarchy, cat.brands)

	out := make([]Recommendation, 0, len(ranked))
	for i := range ranked {
		r := &ranked[i]
		out = append(out, Recommendation{
			ProductID: r.product.ID,
			Score:     r.score.Total,
			Reason:    reasons.Reason(src, r.product, &r.score),
			Summary:   summarize(cat, r.product),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func summarize(cat *catalog, p *models.Product) ProductSummary {
	return ProductSummary{
		Name:               p.Name,
		Price:              p.Price,
		Image:              p.PrimaryImage(),
		Category:           cat.hierarchy.Name(p.CategoryID),
		Brand:              cat.brands[p.BrandID].Name,
		CompatibleVehicles: p.VehicleIDs(),
	}
}

// resolveUser builds the profile source for a user. Zero qualifying events
// yield errColdStart.
func (e *Engine) resolveUser(ctx context.Context, cat *catalog, st *planState, req *UserRequest) (*Source, error) {
	if e.users != nil {
		ok, err := e.users.UserExists(ctx, req.UserID)
		if err != nil {
			return nil, upstream("lookup user", err)
		}
		if !ok {
			return nil, fmt.Errorf("user %q: %w", req.UserID, ErrNotFound)
		}
	}

	profile, err := e.profiles.Build(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	exclude := profile.Exclusions(exclusionFlags{
		viewed:    req.ExcludeViewed,
		inCart:    req.ExcludeInCart,
		purchased: req.ExcludePurchased,
	})
	st.exclude = exclude
	st.excludeResolved = true

	if profile.IsEmpty() {
		return nil, errColdStart
	}
	st.fallbackCategories = profile.TopCategories(e.config.TopCategories)

	return NewProfileSource(profile, e.config, cat.hierarchy, cat.brands, exclude), nil
}

func (e *Engine) resolveProduct(ctx context.Context, cat *catalog, st *planState, productID string) (*Source, error) {
	product, err := e.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, upstream("get product", err)
	}
	st.fallbackCategories = []string{product.CategoryID}
	return NewProductSource(product, cat.hierarchy, cat.brands), nil
}

// resolveCategories builds a category source. Explicit ids of which none
// exist are NotFound; an empty list resolves to the popular categories, and
// to the newest products when nothing is popular yet.
func (e *Engine) resolveCategories(ctx context.Context, cat *catalog, st *planState, ids []string) (*Source, error) {
	if len(ids) > 0 {
		known := 0
		for _, id := range ids {
			if cat.hierarchy.Has(id) {
				known++
			}
		}
		if known == 0 {
			return nil, fmt.Errorf("categories %v: %w", ids, ErrNotFound)
		}
		st.fallbackCategories = ids
		return NewCategorySource(ids, cat.hierarchy), nil
	}

	since := e.now().AddDate(0, 0, -e.config.LookbackDays)
	popular, err := e.events.PopularCategories(ctx, since, e.config.PopularCategories)
	if err != nil {
		return nil, upstream("popular categories", err)
	}
	if len(popular) == 0 {
		metrics.RecordFallback("empty_popularity")
	}
	return NewCategorySource(popular, cat.hierarchy), nil
}
