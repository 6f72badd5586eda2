// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import "testing"

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	want := map[Signal]float64{
		SignalCategoryExact:     10,
		SignalCategoryHierarchy: 7,
		SignalComplementary:     6,
		SignalBrandExact:        8,
		SignalBrandCountry:      2,
		SignalPriceProximity:    2,
		SignalTagOverlap:        1,
		SignalVehicleExact:      12,
		SignalRecency:           1,
	}
	if len(w) != len(AllSignals) {
		t.Errorf("DefaultWeights() has %d entries, want %d", len(w), len(AllSignals))
	}
	for sig, v := range want {
		if w.Get(sig) != v {
			t.Errorf("weight %s = %v, want %v", sig, w.Get(sig), v)
		}
	}
}

func TestParseSignal(t *testing.T) {
	for _, sig := range AllSignals {
		got, err := ParseSignal(sig.String())
		if err != nil || got != sig {
			t.Errorf("ParseSignal(%q) = %v, %v", sig.String(), got, err)
		}
	}
	if _, err := ParseSignal("popularity"); err == nil {
		t.Error("ParseSignal(popularity) should fail")
	}
}

func TestWeightsFromMap(t *testing.T) {
	w, err := WeightsFromMap(map[string]float64{"vehicle_exact": 20, "recency": 0})
	if err != nil {
		t.Fatalf("WeightsFromMap() error = %v", err)
	}
	if w.Get(SignalVehicleExact) != 20 || w.Get(SignalRecency) != 0 {
		t.Errorf("overrides not applied: %v", w.ToMap())
	}
	if w.Get(SignalCategoryExact) != DefaultWeightCategoryExact {
		t.Error("unlisted signals should keep their defaults")
	}

	if _, err := WeightsFromMap(map[string]float64{"brand_exact": -1}); err == nil {
		t.Error("negative weight accepted")
	}
	if _, err := WeightsFromMap(map[string]float64{"bogus": 1}); err == nil {
		t.Error("unknown signal accepted")
	}
}
