// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/partwise/internal/models"
)

// SubjectType is what a result set was computed for.
type SubjectType string

const (
	SubjectUser     SubjectType = "user"
	SubjectProduct  SubjectType = "product"
	SubjectCategory SubjectType = "category"
)

// Kind is the recommendation type of a result set.
type Kind string

const (
	KindPersonalized Kind = "personalized"
	KindSimilar      Kind = "similar"
	KindCategory     Kind = "category"
)

// FallbackReason explains why a result came from the category fallback.
type FallbackReason string

const (
	FallbackNone      FallbackReason = ""
	FallbackColdStart FallbackReason = "cold_start"
	FallbackTimeout   FallbackReason = "timeout"
)

// CacheKey identifies one cached result set. Subject types never collide
// because the type is part of the key.
type CacheKey struct {
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   string      `json:"subject_id"`
	Kind        string      `json:"kind"`
}

// String renders the key as stored in the cache backend.
//
//nolint:gocritic // value receiver keeps CacheKey usable as a map key
func (k CacheKey) String() string {
	return fmt.Sprintf("reco:%s:%s:%s", k.SubjectType, k.SubjectID, k.Kind)
}

// personalizedKind encodes the exclude flags so differently filtered result
// sets for the same user are cached separately.
func personalizedKind(viewed, inCart, purchased bool) string {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return fmt.Sprintf("%s:v%dc%dp%d", KindPersonalized, b(viewed), b(inCart), b(purchased))
}

// categorySubject builds a stable subject id from a category set.
func categorySubject(ids []string) string {
	if len(ids) == 0 {
		return "_popular"
	}
	return strings.Join(sortedKeys(toSet(ids)), ",")
}

// ProductSummary is the display data attached to each recommendation.
// CompatibleVehicles lists vehicle model ids.
type ProductSummary struct {
	Name               string   `json:"name"`
	Price              float64  `json:"price"`
	Image              string   `json:"image,omitempty"`
	Category           string   `json:"category"`
	Brand              string   `json:"brand,omitempty"`
	CompatibleVehicles []string `json:"compatible_vehicles,omitempty"`
}

// Recommendation is one ranked result.
type Recommendation struct {
	ProductID string         `json:"product_id"`
	Score     float64        `json:"score"`
	Reason    string         `json:"reason"`
	Summary   ProductSummary `json:"product_summary"`
}

// Result is the outcome of an engine call.
type Result struct {
	Items       []Recommendation `json:"items"`
	Cached      bool             `json:"cached"`
	Fallback    FallbackReason   `json:"fallback,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// UserRequest asks for personalized recommendations.
type UserRequest struct {
	UserID           string `validate:"required,entityid"`
	Limit            int    `validate:"gte=1"`
	ExcludeViewed    bool
	ExcludeInCart    bool
	ExcludePurchased bool
}

// SimilarRequest asks for products similar to one product.
type SimilarRequest struct {
	ProductID string `validate:"required,entityid"`
	Limit     int    `validate:"gte=1"`
}

// CategoryRequest asks for recommendations within categories. An empty
// category list means the most popular categories.
type CategoryRequest struct {
	CategoryIDs []string `validate:"omitempty,max=20,dive,entityid"`
	Limit       int      `validate:"gte=1"`
}

// ProductStore reads the catalog.
type ProductStore interface {
	// GetProduct returns ErrNotFound when the product does not exist.
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// GetProducts returns the products that exist among ids, keyed by id.
	GetProducts(ctx context.Context, ids []string) (map[string]*models.Product, error)

	// FindProducts applies a multi-criteria OR filter. Within filter.Limit,
	// category matches rank ahead of brand and vehicle matches.
	FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)

	// ListCategories returns every category as flat records.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// ListBrands returns every brand.
	ListBrands(ctx context.Context) ([]models.Brand, error)
}

// EventStore reads interaction events.
type EventStore interface {
	// UserEvents returns a user's events with from <= timestamp <= to.
	UserEvents(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)

	// PopularCategories returns category ids ordered by weighted event volume since a time.
	PopularCategories(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// UserDirectory reports whether a user exists. Optional.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// set helpers

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
