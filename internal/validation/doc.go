// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator with the custom tags the
// recommendation requests and ingested events need, and translates failures
// into the VALIDATION_ERROR format used by the HTTP layer.
//
// # Custom Tags
//
//   - entityid: catalog or user identifier (1-64 chars of letters, digits, '-', '_', '.', ':')
//   - eventtype: one of view, add-to-cart, purchase
//
// # Quick Start
//
//	type SimilarRequest struct {
//	    ProductID string `validate:"required,entityid"`
//	    Limit     int    `validate:"gte=1,lte=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return fmt.Errorf("%w: %w", recommend.ErrInvalidInput, verr)
//	}
//
// # Error Types
//
// FieldError is one failed constraint. RequestValidationError collects them
// for a struct; the HTTP layer renders it with ToAPIError.
package validation
