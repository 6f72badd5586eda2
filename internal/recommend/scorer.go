// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/partwise/internal/models"
)

// SourceKind tells what a Source was built from.
type SourceKind int

const (
	SourceProduct SourceKind = iota
	SourceUser
	SourceCategories
)

// Source is what candidates are compared against: a concrete product, an
// aggregated user profile or a plain category set.
type Source struct {
	Kind SourceKind
	ID   string

	// PrimaryCategory is the strongest source category, used in reasons.
	PrimaryCategory string

	Categories map[string]struct{}
	Resolution Resolution
	Brands     map[string]struct{}
	Countries  map[string]struct{}
	PriceMin   float64
	PriceMax   float64
	HasPrice   bool
	Tags       map[string]struct{}
	Vehicles   map[string]struct{}

	// Exclude lists ids that must never be returned.
	Exclude map[string]struct{}
}

// Excludes reports whether a candidate id is filtered out before scoring.
func (s *Source) Excludes(id string) bool {
	if s.Kind == SourceProduct && id == s.ID {
		return true
	}
	_, ok := s.Exclude[id]
	return ok
}

// Filter builds the candidate query: categories from the source and its
// resolution, plus brands and vehicles, combined with OR.
func (s *Source) Filter(limit int) models.ProductFilter {
	cats := make(map[string]struct{}, len(s.Categories))
	for id := range s.Categories {
		cats[id] = struct{}{}
	}
	for _, id := range s.Resolution.categoryIDs() {
		cats[id] = struct{}{}
	}
	return models.ProductFilter{
		CategoryIDs: sortedKeys(cats),
		BrandIDs:    sortedKeys(s.Brands),
		VehicleIDs:  sortedKeys(s.Vehicles),
		Limit:       limit,
	}
}

// NewProductSource describes a concrete product.
func NewProductSource(p *models.Product, h *Hierarchy, brands map[string]models.Brand) *Source {
	src := &Source{
		Kind:            SourceProduct,
		ID:              p.ID,
		PrimaryCategory: p.CategoryID,
		Categories:      toSet([]string{p.CategoryID}),
		Resolution:      h.Resolve(p.CategoryID),
		Brands:          toSet([]string{p.BrandID}),
		Countries:       make(map[string]struct{}),
		PriceMin:        p.Price,
		PriceMax:        p.Price,
		HasPrice:        true,
		Tags:            toSet(p.Tags),
		Vehicles:        toSet(p.VehicleIDs()),
		Exclude:         map[string]struct{}{p.ID: {}},
	}
	if b, ok := brands[p.BrandID]; ok && b.Country != "" {
		src.Countries[b.Country] = struct{}{}
	}
	return src
}

// NewProfileSource describes a user profile reduced to its top preferences.
func NewProfileSource(p *UserProfile, cfg *Config, h *Hierarchy, brands map[string]models.Brand, exclude map[string]struct{}) *Source {
	topCategories := p.TopCategories(cfg.TopCategories)
	topBrands := p.TopBrands(cfg.TopBrands)

	src := &Source{
		Kind:       SourceUser,
		ID:         p.UserID,
		Categories: toSet(topCategories),
		Resolution: h.Resolve(topCategories...),
		Brands:     toSet(topBrands),
		Countries:  make(map[string]struct{}),
		PriceMin:   p.PriceRange.Min,
		PriceMax:   p.PriceRange.Max,
		HasPrice:   p.HasPrice,
		Tags:       toSet(p.Tags()),
		Vehicles:   toSet(p.TopVehicles(cfg.TopVehicles)),
		Exclude:    exclude,
	}
	if len(topCategories) > 0 {
		src.PrimaryCategory = topCategories[0]
	}
	for _, id := range topBrands {
		if b, ok := brands[id]; ok && b.Country != "" {
			src.Countries[b.Country] = struct{}{}
		}
	}
	return src
}

// NewCategorySource describes a plain category set. An empty set yields a
// source that only the recency signal can match.
func NewCategorySource(ids []string, h *Hierarchy) *Source {
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if h.Has(id) {
			known = append(known, id)
		}
	}
	src := &Source{
		Kind:       SourceCategories,
		Categories: toSet(known),
		Resolution: h.Resolve(known...),
	}
	if len(known) > 0 {
		src.PrimaryCategory = known[0]
	}
	return src
}

// Score is a candidate's total and the per-signal contributions behind it.
type Score struct {
	Total      float64
	Breakdown  map[Signal]float64
	TagMatches int
}

// Scorer applies the weight table. It is pure and safe for concurrent use.
type Scorer struct {
	weights        Weights
	hierarchy      *Hierarchy
	brands         map[string]models.Brand
	priceTolerance float64
	recencyWindow  time.Duration
	now            time.Time
}

// NewScorer creates a scorer evaluated at the given instant.
func NewScorer(cfg *Config, h *Hierarchy, brands map[string]models.Brand, now time.Time) *Scorer {
	return &Scorer{
		weights:        cfg.Weights,
		hierarchy:      h,
		brands:         brands,
		priceTolerance: cfg.PriceTolerance,
		recencyWindow:  cfg.RecencyWindow,
		now:            now,
	}
}

// Score sums the weights of every signal the candidate matches. Bonuses are
// additive. A candidate without a resolvable category returns
// ErrInvalidCandidate.
func (s *Scorer) Score(src *Source, c *models.Product) (Score, error) {
	if c.ID == "" {
		return Score{}, fmt.Errorf("%w: empty product id", ErrInvalidCandidate)
	}
	if c.CategoryID == "" {
		return Score{}, fmt.Errorf("%w: product %s has no category", ErrInvalidCandidate, c.ID)
	}
	if !s.hierarchy.Has(c.CategoryID) {
		return Score{}, fmt.Errorf("%w: product %s references unknown category %s", ErrInvalidCandidate, c.ID, c.CategoryID)
	}

	sc := Score{Breakdown: make(map[Signal]float64)}
	add := func(sig Signal, units float64) {
		v := s.weights.Get(sig) * units
		if v <= 0 {
			return
		}
		sc.Breakdown[sig] = v
		sc.Total += v
	}

	if _, exact := src.Categories[c.CategoryID]; exact {
		add(SignalCategoryExact, 1)
	} else if src.Resolution.IsRelated(c.CategoryID) {
		add(SignalCategoryHierarchy, 1)
	}
	if src.Resolution.IsComplementary(c.CategoryID) {
		add(SignalComplementary, 1)
	}

	if c.BrandID != "" {
		if _, same := src.Brands[c.BrandID]; same {
			add(SignalBrandExact, 1)
		} else if b, ok := s.brands[c.BrandID]; ok && b.Country != "" {
			if _, sameCountry := src.Countries[b.Country]; sameCountry {
				add(SignalBrandCountry, 1)
			}
		}
	}

	if src.HasPrice && s.withinPrice(src, c.Price) {
		add(SignalPriceProximity, 1)
	}

	if overlap := tagOverlap(src.Tags, c.Tags); overlap > 0 {
		sc.TagMatches = overlap
		add(SignalTagOverlap, float64(overlap))
	}

	for _, v := range c.CompatibleVehicles {
		if _, ok := src.Vehicles[v.VehicleModelID]; ok {
			add(SignalVehicleExact, 1)
			break
		}
	}

	if s.isRecent(c.CreatedAt) {
		add(SignalRecency, 1)
	}

	return sc, nil
}

// withinPrice checks |candidate - source| <= tolerance * source, widened to
// the profile's range when the source is a user.
func (s *Scorer) withinPrice(src *Source, price float64) bool {
	lo := src.PriceMin * (1 - s.priceTolerance)
	hi := src.PriceMax * (1 + s.priceTolerance)
	return price >= lo && price <= hi
}

func (s *Scorer) isRecent(created time.Time) bool {
	if s.recencyWindow <= 0 || created.IsZero() {
		return false
	}
	age := s.now.Sub(created)
	return age >= 0 && age <= s.recencyWindow
}

// tagOverlap counts distinct candidate tags present in the source set.
func tagOverlap(source map[string]struct{}, tags []string) int {
	if len(source) == 0 || len(tags) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tags))
	n := 0
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := source[t]; ok {
			n++
		}
	}
	return n
}
