// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"fmt"
	"sort"
)

// Signal identifies one independent scoring criterion.
type Signal int

const (
	// SignalCategoryExact: candidate category is one of the source categories.
	SignalCategoryExact Signal = iota
	// SignalCategoryHierarchy: candidate category is a parent or child of a source category.
	SignalCategoryHierarchy
	// SignalComplementary: candidate category is complementary or a consumable pair.
	// Stacks with the category signals above.
	SignalComplementary
	// SignalBrandExact: candidate brand is one of the source brands.
	SignalBrandExact
	// SignalBrandCountry: different brand from the same country.
	SignalBrandCountry
	// SignalPriceProximity: candidate price within the price tolerance of the source.
	SignalPriceProximity
	// SignalTagOverlap: weight applied per shared tag.
	SignalTagOverlap
	// SignalVehicleExact: candidate fits at least one source vehicle.
	SignalVehicleExact
	// SignalRecency: candidate created within the recency window.
	SignalRecency
)

// AllSignals lists every signal in declaration order. Reason ranking uses this
// order to break ties between equal contributions.
var AllSignals = []Signal{
	SignalCategoryExact,
	SignalCategoryHierarchy,
	SignalComplementary,
	SignalBrandExact,
	SignalBrandCountry,
	SignalPriceProximity,
	SignalTagOverlap,
	SignalVehicleExact,
	SignalRecency,
}

var signalNames = map[Signal]string{
	SignalCategoryExact:     "category_exact",
	SignalCategoryHierarchy: "category_hierarchy",
	SignalComplementary:     "complementary",
	SignalBrandExact:        "brand_exact",
	SignalBrandCountry:      "brand_country",
	SignalPriceProximity:    "price_proximity",
	SignalTagOverlap:        "tag_overlap",
	SignalVehicleExact:      "vehicle_exact",
	SignalRecency:           "recency",
}

// String returns the config key of the signal.
func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

// ParseSignal converts a config key back into a Signal.
func ParseSignal(name string) (Signal, error) {
	for sig, n := range signalNames {
		if n == name {
			return sig, nil
		}
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}

// Default signal weights.
const (
	DefaultWeightCategoryExact     = 10.0
	DefaultWeightCategoryHierarchy = 7.0
	DefaultWeightComplementary     = 6.0
	DefaultWeightBrandExact        = 8.0
	DefaultWeightBrandCountry      = 2.0
	DefaultWeightPriceProximity    = 2.0
	DefaultWeightTagOverlap        = 1.0
	DefaultWeightVehicleExact      = 12.0
	DefaultWeightRecency           = 1.0
)

// Weights is the policy table mapping each signal to its weight.
// Missing signals weigh zero.
type Weights map[Signal]float64

// DefaultWeights returns the documented default table.
func DefaultWeights() Weights {
	return Weights{
		SignalCategoryExact:     DefaultWeightCategoryExact,
		SignalCategoryHierarchy: DefaultWeightCategoryHierarchy,
		SignalComplementary:     DefaultWeightComplementary,
		SignalBrandExact:        DefaultWeightBrandExact,
		SignalBrandCountry:      DefaultWeightBrandCountry,
		SignalPriceProximity:    DefaultWeightPriceProximity,
		SignalTagOverlap:        DefaultWeightTagOverlap,
		SignalVehicleExact:      DefaultWeightVehicleExact,
		SignalRecency:           DefaultWeightRecency,
	}
}

// Get returns the weight of a signal.
func (w Weights) Get(s Signal) float64 {
	return w[s]
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Validate rejects negative weights and unknown signals.
func (w Weights) Validate() error {
	keys := make([]Signal, 0, len(w))
	for s := range w {
		keys = append(keys, s)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, s := range keys {
		if _, ok := signalNames[s]; !ok {
			return fmt.Errorf("unknown signal %d", int(s))
		}
		if w[s] < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %f", s, w[s])
		}
	}
	return nil
}

// WeightsFromMap builds a table from config keys, starting from the defaults
// so a partial override only changes the listed signals.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	w := DefaultWeights()
	for name, v := range m {
		sig, err := ParseSignal(name)
		if err != nil {
			return nil, err
		}
		w[sig] = v
	}
	return w, w.Validate()
}

// ToMap returns the weights keyed by config name.
func (w Weights) ToMap() map[string]float64 {
	out := make(map[string]float64, len(w))
	for s, v := range w {
		out[s.String()] = v
	}
	return out
}
