// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/partwise/internal/recommend"
)

var (
	_ recommend.ProductStore  = (*DB)(nil)
	_ recommend.EventStore    = (*DB)(nil)
	_ recommend.UserDirectory = (*DB)(nil)
)

// storeError maps a driver error onto the recommend error taxonomy.
// sql.ErrNoRows becomes ErrNotFound, context errors pass through unchanged
// and everything else is ErrUpstreamUnavailable.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, recommend.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, recommend.ErrUpstreamUnavailable, err)
	}
}
