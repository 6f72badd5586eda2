// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/partwise/internal/models"
)

const (
	reasonSeparator = " · "
	reasonDefault   = "Recommended for you"
)

// ReasonGenerator renders the dominant signals of a score as a short
// explanation.
type ReasonGenerator struct {
	maxSignals int
	hierarchy  *Hierarchy
	brands     map[string]models.Brand
}

// NewReasonGenerator creates a generator naming up to maxSignals signals.
func NewReasonGenerator(maxSignals int, h *Hierarchy, brands map[string]models.Brand) *ReasonGenerator {
	if maxSignals < 1 {
		maxSignals = 1
	}
	return &ReasonGenerator{maxSignals: maxSignals, hierarchy: h, brands: brands}
}

// Reason explains why a candidate was recommended for a source.
func (g *ReasonGenerator) Reason(src *Source, c *models.Product, sc *Score) string {
	signals := dominantSignals(sc.Breakdown)
	if len(signals) > g.maxSignals {
		signals = signals[:g.maxSignals]
	}

	phrases := make([]string, 0, len(signals))
	for _, sig := range signals {
		if p := g.phrase(src, c, sc, sig); p != "" {
			phrases = append(phrases, p)
		}
	}
	if len(phrases) == 0 {
		return reasonDefault
	}
	return strings.Join(phrases, reasonSeparator)
}

// dominantSignals orders contributing signals by contribution, largest first.
// Equal contributions keep declaration order.
func dominantSignals(breakdown map[Signal]float64) []Signal {
	out := make([]Signal, 0, len(breakdown))
	for _, sig := range AllSignals {
		if breakdown[sig] > 0 {
			out = append(out, sig)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return breakdown[out[i]] > breakdown[out[j]]
	})
	return out
}

func (g *ReasonGenerator) phrase(src *Source, c *models.Product, sc *Score, sig Signal) string {
	switch sig {
	case SignalCategoryExact:
		name := g.hierarchy.Name(c.CategoryID)
		switch src.Kind {
		case SourceUser:
			return "Because you viewed " + name
		case SourceCategories:
			return "Popular in " + name
		default:
			return "Same category: " + name
		}
	case SignalCategoryHierarchy:
		return "Related to " + g.hierarchy.Name(c.CategoryID)
	case SignalComplementary:
		anchor := src.PrimaryCategory
		if anchor == "" || anchor == c.CategoryID {
			return "Goes with " + g.hierarchy.Name(c.CategoryID)
		}
		return "Goes with " + g.hierarchy.Name(anchor)
	case SignalBrandExact:
		if b, ok := g.brands[c.BrandID]; ok && b.Name != "" {
			return "Also from " + b.Name
		}
		return "Same brand"
	case SignalBrandCountry:
		if b, ok := g.brands[c.BrandID]; ok && b.Country != "" {
			return "Brand from " + b.Country
		}
		return ""
	case SignalPriceProximity:
		return "Similar price"
	case SignalTagOverlap:
		if sc.TagMatches == 1 {
			return "Shares 1 tag"
		}
		return fmt.Sprintf("Shares %d tags", sc.TagMatches)
	case SignalVehicleExact:
		if src.Kind == SourceUser {
			return "Fits your vehicle"
		}
		return "Fits the same vehicle"
	case SignalRecency:
		return "New arrival"
	default:
		return ""
	}
}
