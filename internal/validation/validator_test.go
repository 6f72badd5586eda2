// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

type lookupRequest struct {
	ProductID string `validate:"required,entityid"`
	Limit     int    `validate:"gte=1,lte=100"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input lookupRequest
	}{
		{"simple id", lookupRequest{ProductID: "p-1", Limit: 10}},
		{"uuid id", lookupRequest{ProductID: "0b6f2c1e-8a53-4b7b-9f6e-0d0b4f4a9c11", Limit: 1}},
		{"namespaced id", lookupRequest{ProductID: "sku:BOSCH.0986", Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     lookupRequest
		wantField string
		wantTag   string
	}{
		{"missing id", lookupRequest{Limit: 10}, "ProductID", "required"},
		{"id with spaces", lookupRequest{ProductID: "brake pads", Limit: 10}, "ProductID", "entityid"},
		{"id with slash", lookupRequest{ProductID: "../etc", Limit: 10}, "ProductID", "entityid"},
		{"id too long", lookupRequest{ProductID: strings.Repeat("a", 65), Limit: 10}, "ProductID", "entityid"},
		{"zero limit", lookupRequest{ProductID: "p-1", Limit: 0}, "Limit", "gte"},
		{"negative limit", lookupRequest{ProductID: "p-1", Limit: -5}, "Limit", "gte"},
		{"limit too high", lookupRequest{ProductID: "p-1", Limit: 101}, "Limit", "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			found := false
			for _, fe := range err.Fields {
				if fe.Field == tt.wantField && fe.Tag == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected %s/%s failure, got %v", tt.wantField, tt.wantTag, err)
			}
		})
	}
}

// ===================================================================================================
// Event Type Tests
// ===================================================================================================

type eventPayload struct {
	UserID    string   `validate:"required,entityid"`
	EventType string   `validate:"required,eventtype"`
	Tags      []string `validate:"omitempty,dive,entityid"`
}

func TestEventTypeValidation(t *testing.T) {
	tests := []struct {
		eventType string
		wantErr   bool
	}{
		{"view", false},
		{"add-to-cart", false},
		{"purchase", false},
		{"wishlist", true},
		{"VIEW", true},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			err := ValidateStruct(&eventPayload{UserID: "u-1", EventType: tt.eventType})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(%q) error = %v, wantErr %v", tt.eventType, err, tt.wantErr)
			}
		})
	}
}

func TestDiveValidation(t *testing.T) {
	err := ValidateStruct(&eventPayload{UserID: "u-1", EventType: "view", Tags: []string{"ok", "not ok"}})
	if err == nil {
		t.Fatal("expected dive failure for invalid element")
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	type note struct {
		Body  string `validate:"max=5"`
		Count int    `validate:"min=2"`
		Kind  string `validate:"omitempty,oneof=a b"`
	}

	err := ValidateStruct(&note{Body: "too long", Count: 1, Kind: "c"})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	want := map[string]string{
		"Body":  "Body must be at most 5 characters",
		"Count": "Count must be at least 2",
		"Kind":  "Kind must be one of: a b",
	}
	if len(err.Fields) != len(want) {
		t.Fatalf("got %d failures, want %d: %v", len(err.Fields), len(want), err)
	}
	for _, fe := range err.Fields {
		if fe.Message != want[fe.Field] {
			t.Errorf("%s: message = %q, want %q", fe.Field, fe.Message, want[fe.Field])
		}
		if fe.Error() != fe.Message {
			t.Errorf("%s: Error() = %q", fe.Field, fe.Error())
		}
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&lookupRequest{Limit: 10})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Message != "ProductID is required" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "ProductID is required")
	}
	if apiErr.Details["field"] != "ProductID" {
		t.Errorf("Details[field] = %v, want ProductID", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&lookupRequest{ProductID: "bad id", Limit: 0})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Expected details to contain 'fields' key")
	}
	if !strings.Contains(apiErr.Message, "ProductID: ProductID must be a valid identifier") {
		t.Errorf("Message = %q, missing identifier failure", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "Limit: Limit must be greater than or equal to 1") {
		t.Errorf("Message = %q, missing limit failure", apiErr.Message)
	}
}

func TestRequestValidationError_EmptyMessage(t *testing.T) {
	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q, want %q", ve.Error(), "validation failed")
	}
	if ve.ToAPIError().Message != "Validation failed" {
		t.Errorf("ToAPIError().Message = %q", ve.ToAPIError().Message)
	}
}
