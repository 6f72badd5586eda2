// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"fmt"
	"time"
)

// MaxHierarchyDepth caps every category tree walk.
const MaxHierarchyDepth = 5

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights is the signal weight table.
	Weights Weights `json:"weights"`

	// LookbackDays bounds the events used to build a user profile.
	// Default: 30.
	LookbackDays int `json:"lookback_days"`

	// RequestTimeout bounds one orchestrated call. When it expires the
	// engine answers with category recommendations instead.
	// Default: 300ms.
	RequestTimeout time.Duration `json:"request_timeout"`

	// FallbackTimeout bounds the category fallback that follows a timeout.
	// Default: 200ms.
	FallbackTimeout time.Duration `json:"fallback_timeout"`

	// CacheTTL is the lifetime of a cached result set.
	// Default: 24h.
	CacheTTL time.Duration `json:"cache_ttl"`

	// CandidateLimit bounds the candidates fetched from the product store.
	// Default: 500.
	CandidateLimit int `json:"candidate_limit"`

	// ParallelThreshold is the candidate count above which scoring fans out
	// across goroutines.
	// Default: 256.
	ParallelThreshold int `json:"parallel_threshold"`

	// HierarchyDepth is how many levels up and down the resolver walks.
	// Clamped to MaxHierarchyDepth.
	// Default: 1 (parent and direct children).
	HierarchyDepth int `json:"hierarchy_depth"`

	// DefaultLimit applies when a request leaves the limit unset.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest accepted limit.
	// Default: 100.
	MaxLimit int `json:"max_limit"`

	// MaxReasonSignals is how many signals a reason mentions.
	// Default: 2.
	MaxReasonSignals int `json:"max_reason_signals"`

	// PriceTolerance is the relative price distance that still counts as close.
	// Default: 0.3.
	PriceTolerance float64 `json:"price_tolerance"`

	// RecencyWindow is how new a product must be for the recency bonus.
	// Default: 30 days.
	RecencyWindow time.Duration `json:"recency_window"`

	// TopCategories, TopBrands and TopVehicles bound the profile preferences
	// used as the scoring source.
	// Defaults: 3, 3, 2.
	TopCategories int `json:"top_categories"`
	TopBrands     int `json:"top_brands"`
	TopVehicles   int `json:"top_vehicles"`

	// PopularCategories is how many categories stand in for an empty
	// category request.
	// Default: 5.
	PopularCategories int `json:"popular_categories"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:           DefaultWeights(),
		LookbackDays:      30,
		RequestTimeout:    300 * time.Millisecond,
		FallbackTimeout:   200 * time.Millisecond,
		CacheTTL:          24 * time.Hour,
		CandidateLimit:    500,
		ParallelThreshold: 256,
		HierarchyDepth:    1,
		DefaultLimit:      10,
		MaxLimit:          100,
		MaxReasonSignals:  2,
		PriceTolerance:    0.3,
		RecencyWindow:     30 * 24 * time.Hour,
		TopCategories:     3,
		TopBrands:         3,
		TopVehicles:       2,
		PopularCategories: 5,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if c.LookbackDays < 1 {
		return fmt.Errorf("lookback_days must be positive, got %d", c.LookbackDays)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.FallbackTimeout <= 0 {
		return fmt.Errorf("fallback_timeout must be positive, got %v", c.FallbackTimeout)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}
	if c.CandidateLimit < 1 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.CandidateLimit)
	}
	if c.ParallelThreshold < 1 {
		return fmt.Errorf("parallel_threshold must be positive, got %d", c.ParallelThreshold)
	}
	if c.HierarchyDepth < 1 || c.HierarchyDepth > MaxHierarchyDepth {
		return fmt.Errorf("hierarchy_depth must be in [1, %d], got %d", MaxHierarchyDepth, c.HierarchyDepth)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.MaxReasonSignals < 1 {
		return fmt.Errorf("max_reason_signals must be positive, got %d", c.MaxReasonSignals)
	}
	if c.PriceTolerance < 0 || c.PriceTolerance > 1 {
		return fmt.Errorf("price_tolerance must be in [0, 1], got %f", c.PriceTolerance)
	}
	if c.RecencyWindow < 0 {
		return fmt.Errorf("recency_window must be non-negative, got %v", c.RecencyWindow)
	}
	if c.TopCategories < 1 || c.TopBrands < 1 || c.TopVehicles < 1 {
		return fmt.Errorf("top_categories, top_brands and top_vehicles must be positive")
	}
	if c.PopularCategories < 1 {
		return fmt.Errorf("popular_categories must be positive, got %d", c.PopularCategories)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Weights = c.Weights.Clone()
	return &out
}
