// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/partwise/internal/models"
)

func newTestScorer(cfg *Config) *Scorer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewScorer(cfg, testHierarchy(), brandMap(), testNow)
}

func TestScorer_BrakePadScenario(t *testing.T) {
	s := newTestScorer(nil)
	src := product("P1", "c-pads", "b-bosch", 500000, "V1")
	c1 := product("C1", "c-pads", "b-bosch", 520000, "V1")
	c2 := product("C2", "c-discs", "b-brembo", 100000)

	source := NewProductSource(&src, testHierarchy(), brandMap())

	s1, err := s.Score(source, &c1)
	if err != nil {
		t.Fatalf("Score(C1) error = %v", err)
	}
	if s1.Total < 32 {
		t.Errorf("Score(C1) = %v, want >= 32", s1.Total)
	}

	s2, err := s.Score(source, &c2)
	if err != nil {
		t.Fatalf("Score(C2) error = %v", err)
	}
	if s2.Total != DefaultWeightComplementary {
		t.Errorf("Score(C2) = %v, want %v", s2.Total, DefaultWeightComplementary)
	}
	if s1.Total <= s2.Total {
		t.Errorf("C1 (%v) should outrank C2 (%v)", s1.Total, s2.Total)
	}
}

func TestScorer_Signals(t *testing.T) {
	h := testHierarchy()
	srcProduct := product("src", "c-oilf", "b-mann", 100, "V2")
	srcProduct.Tags = []string{"synthetic", "5w30"}
	src := NewProductSource(&srcProduct, h, brandMap())

	fresh := product("fresh", "c-wipers", "b-valeo", 1000)
	fresh.CreatedAt = testNow.Add(-48 * time.Hour)

	tagged := product("tagged", "c-wipers", "b-valeo", 1000)
	tagged.Tags = []string{"synthetic", "5w30", "5w30", "other"}

	tests := []struct {
		name      string
		candidate models.Product
		want      map[Signal]float64
	}{
		{
			name:      "exact category only",
			candidate: product("a", "c-oilf", "b-valeo", 1000),
			want:      map[Signal]float64{SignalCategoryExact: 10},
		},
		{
			name:      "parent category is related and complementary",
			candidate: product("b", "c-engine", "b-valeo", 1000),
			want:      map[Signal]float64{SignalCategoryHierarchy: 7, SignalComplementary: 6},
		},
		{
			name:      "consumable pair",
			candidate: product("c", "c-oil", "b-valeo", 1000),
			want:      map[Signal]float64{SignalComplementary: 6},
		},
		{
			name:      "same brand beats same country",
			candidate: product("d", "c-wipers", "b-mann", 1000),
			want:      map[Signal]float64{SignalBrandExact: 8},
		},
		{
			name:      "same country",
			candidate: product("e", "c-wipers", "b-mahle", 1000),
			want:      map[Signal]float64{SignalBrandCountry: 2},
		},
		{
			name:      "price within tolerance",
			candidate: product("f", "c-wipers", "b-valeo", 125),
			want:      map[Signal]float64{SignalPriceProximity: 2},
		},
		{
			name:      "price just outside tolerance",
			candidate: product("g", "c-wipers", "b-valeo", 140),
			want:      map[Signal]float64{},
		},
		{
			name:      "shared vehicle",
			candidate: product("h", "c-wipers", "b-valeo", 1000, "V9", "V2"),
			want:      map[Signal]float64{SignalVehicleExact: 12},
		},
		{
			name:      "distinct tag overlap",
			candidate: tagged,
			want:      map[Signal]float64{SignalTagOverlap: 2},
		},
		{
			name:      "new arrival",
			candidate: fresh,
			want:      map[Signal]float64{SignalRecency: 1},
		},
	}

	s := newTestScorer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := s.Score(src, &tt.candidate)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}

			var total float64
			for sig, v := range tt.want {
				total += v
				if sc.Breakdown[sig] != v {
					t.Errorf("Breakdown[%s] = %v, want %v", sig, sc.Breakdown[sig], v)
				}
			}
			if len(sc.Breakdown) != len(tt.want) {
				t.Errorf("Breakdown = %v, want %v", sc.Breakdown, tt.want)
			}
			if sc.Total != total {
				t.Errorf("Total = %v, want %v", sc.Total, total)
			}
		})
	}
}

func TestScorer_Monotonic(t *testing.T) {
	src := product("src", "c-pads", "b-bosch", 500000, "V1")
	candidate := product("c", "c-pads", "b-bosch", 520000, "V1")
	source := NewProductSource(&src, testHierarchy(), brandMap())

	base, err := newTestScorer(nil).Score(source, &candidate)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	for _, sig := range AllSignals {
		t.Run(sig.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Weights[sig] += 5

			raised, err := newTestScorer(cfg).Score(source, &candidate)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if raised.Total < base.Total {
				t.Errorf("raising %s lowered the score: %v -> %v", sig, base.Total, raised.Total)
			}
		})
	}
}

func TestScorer_InvalidCandidate(t *testing.T) {
	src := product("src", "c-pads", "b-bosch", 1)
	source := NewProductSource(&src, testHierarchy(), brandMap())
	s := newTestScorer(nil)

	tests := []struct {
		name      string
		candidate models.Product
	}{
		{"empty id", product("", "c-pads", "b-bosch", 1)},
		{"no category", product("x", "", "b-bosch", 1)},
		{"unknown category", product("x", "c-missing", "b-bosch", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Score(source, &tt.candidate)
			if !errors.Is(err, ErrInvalidCandidate) {
				t.Errorf("Score() error = %v, want ErrInvalidCandidate", err)
			}
		})
	}
}

func TestSource_Excludes(t *testing.T) {
	src := product("p-pads-1", "c-pads", "b-bosch", 1)
	s := NewProductSource(&src, testHierarchy(), brandMap())
	if !s.Excludes("p-pads-1") {
		t.Error("product source must exclude itself")
	}
	if s.Excludes("p-pads-2") {
		t.Error("unexpected exclusion")
	}

	filter := s.Filter(50)
	if !equalIDs(filter.CategoryIDs, []string{"c-brakes", "c-discs", "c-pads"}) {
		t.Errorf("Filter().CategoryIDs = %v", filter.CategoryIDs)
	}
	if filter.Limit != 50 {
		t.Errorf("Filter().Limit = %d", filter.Limit)
	}
}
