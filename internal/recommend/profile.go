// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/partwise/internal/models"
)

// EventWeight returns the preference weight of an interaction type.
// Stronger intent weighs more.
func EventWeight(t models.EventType) float64 {
	switch t {
	case models.EventView:
		return 1
	case models.EventAddToCart:
		return 2
	case models.EventPurchase:
		return 3
	default:
		return 0
	}
}

// PriceRange is the span of prices a user interacted with.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UserProfile is an ephemeral weighting of a user's preferences. It is a pure
// function of the events inside the lookback window and is never persisted.
type UserProfile struct {
	UserID          string
	ViewedIDs       map[string]struct{}
	CartIDs         map[string]struct{}
	PurchasedIDs    map[string]struct{}
	CategoryWeights map[string]float64
	BrandWeights    map[string]float64
	VehicleWeights  map[string]float64
	TagWeights      map[string]float64
	PriceRange      PriceRange
	HasPrice        bool
	EventCount      int
}

// IsEmpty reports whether no qualifying event contributed to the profile.
func (p *UserProfile) IsEmpty() bool {
	return p.EventCount == 0
}

// exclusionFlags selects which interaction sets a request excludes.
type exclusionFlags struct {
	viewed    bool
	inCart    bool
	purchased bool
}

// Exclusions returns the union of the interaction sets selected by flags.
// The result is a new map the caller may modify.
func (p *UserProfile) Exclusions(flags exclusionFlags) map[string]struct{} {
	out := make(map[string]struct{})
	for _, sel := range []struct {
		on  bool
		ids map[string]struct{}
	}{
		{flags.viewed, p.ViewedIDs},
		{flags.inCart, p.CartIDs},
		{flags.purchased, p.PurchasedIDs},
	} {
		if !sel.on {
			continue
		}
		for id := range sel.ids {
			out[id] = struct{}{}
		}
	}
	return out
}

// TopCategories returns the n heaviest categories.
func (p *UserProfile) TopCategories(n int) []string { return topK(p.CategoryWeights, n) }

// TopBrands returns the n heaviest brands.
func (p *UserProfile) TopBrands(n int) []string { return topK(p.BrandWeights, n) }

// TopVehicles returns the n heaviest vehicles.
func (p *UserProfile) TopVehicles(n int) []string { return topK(p.VehicleWeights, n) }

// Tags returns every tag the user interacted with, sorted.
func (p *UserProfile) Tags() []string {
	out := make([]string, 0, len(p.TagWeights))
	for t := range p.TagWeights {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// topK orders keys by weight descending, then id ascending.
func topK(weights map[string]float64, n int) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := weights[keys[i]], weights[keys[j]]
		if wi != wj {
			return wi > wj
		}
		return keys[i] < keys[j]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// ProfileBuilder aggregates a user's recent events into a UserProfile.
// It only reads.
type ProfileBuilder struct {
	events       EventStore
	products     ProductStore
	lookbackDays int
	now          func() time.Time
}

// NewProfileBuilder creates a builder reading lookbackDays of history.
func NewProfileBuilder(events EventStore, products ProductStore, lookbackDays int, now func() time.Time) *ProfileBuilder {
	if now == nil {
		now = time.Now
	}
	if lookbackDays < 1 {
		lookbackDays = DefaultConfig().LookbackDays
	}
	return &ProfileBuilder{
		events:       events,
		products:     products,
		lookbackDays: lookbackDays,
		now:          now,
	}
}

// Build fetches the user's events in the window, joins them to their
// products and aggregates the profile.
func (b *ProfileBuilder) Build(ctx context.Context, userID string) (*UserProfile, error) {
	to := b.now()
	from := to.AddDate(0, 0, -b.lookbackDays)

	events, err := b.events.UserEvents(ctx, userID, from, to)
	if err != nil {
		return nil, upstream("fetch user events", err)
	}
	if len(events) == 0 {
		return buildProfile(userID, nil, nil), nil
	}

	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		ids = append(ids, ev.ProductID)
	}

	products, err := b.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, upstream("fetch event products", err)
	}

	return buildProfile(userID, events, products), nil
}

// Exclusions reads only the user's events in the window and collects the
// product ids selected by flags, without joining to products. It is the
// cheap path used when a profile build was interrupted. Ids of products that
// no longer exist are included; excluding them is harmless.
func (b *ProfileBuilder) Exclusions(ctx context.Context, userID string, flags exclusionFlags) (map[string]struct{}, error) {
	to := b.now()
	from := to.AddDate(0, 0, -b.lookbackDays)

	events, err := b.events.UserEvents(ctx, userID, from, to)
	if err != nil {
		return nil, upstream("fetch user events", err)
	}

	out := make(map[string]struct{})
	for _, ev := range events {
		var on bool
		switch ev.Type {
		case models.EventView:
			on = flags.viewed
		case models.EventAddToCart:
			on = flags.inCart
		case models.EventPurchase:
			on = flags.purchased
		}
		if on {
			out[ev.ProductID] = struct{}{}
		}
	}
	return out, nil
}

// buildProfile is the pure aggregation step. Events with an unknown type or a
// product that no longer exists do not qualify.
func buildProfile(userID string, events []models.Event, products map[string]*models.Product) *UserProfile {
	p := &UserProfile{
		UserID:          userID,
		ViewedIDs:       make(map[string]struct{}),
		CartIDs:         make(map[string]struct{}),
		PurchasedIDs:    make(map[string]struct{}),
		CategoryWeights: make(map[string]float64),
		BrandWeights:    make(map[string]float64),
		VehicleWeights:  make(map[string]float64),
		TagWeights:      make(map[string]float64),
	}

	for _, ev := range events {
		w := EventWeight(ev.Type)
		if w == 0 {
			continue
		}
		prod, ok := products[ev.ProductID]
		if !ok || prod == nil {
			continue
		}
		p.EventCount++

		switch ev.Type {
		case models.EventView:
			p.ViewedIDs[prod.ID] = struct{}{}
		case models.EventAddToCart:
			p.CartIDs[prod.ID] = struct{}{}
		case models.EventPurchase:
			p.PurchasedIDs[prod.ID] = struct{}{}
		}

		if prod.CategoryID != "" {
			p.CategoryWeights[prod.CategoryID] += w
		}
		if prod.BrandID != "" {
			p.BrandWeights[prod.BrandID] += w
		}
		for _, v := range prod.CompatibleVehicles {
			if v.VehicleModelID != "" {
				p.VehicleWeights[v.VehicleModelID] += w
			}
		}
		for _, tag := range prod.Tags {
			p.TagWeights[tag] += w
		}

		if !p.HasPrice {
			p.PriceRange = PriceRange{Min: prod.Price, Max: prod.Price}
			p.HasPrice = true
			continue
		}
		if prod.Price < p.PriceRange.Min {
			p.PriceRange.Min = prod.Price
		}
		if prod.Price > p.PriceRange.Max {
			p.PriceRange.Max = prod.Price
		}
	}

	return p
}
