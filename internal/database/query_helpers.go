// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/partwise/internal/logging"
	"github.com/tomtom215/partwise/internal/metrics"
)

// queryBuilder helps construct SQL queries with filters. Filters added with
// addFilter are ANDed; those added with addAnyOf form one ORed group.
type queryBuilder struct {
	baseQuery string
	args      []interface{}
	filters   []string
	anyOf     []string
}

// newQueryBuilder creates a new query builder with a base query.
func newQueryBuilder(baseQuery string) *queryBuilder {
	return &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]interface{}, 0, 8),
		filters:   make([]string, 0, 4),
	}
}

// addFilter adds a custom filter condition
func (qb *queryBuilder) addFilter(condition string, args ...interface{}) *queryBuilder {
	qb.filters = append(qb.filters, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// addAnyOf adds "column IN (...)" to the ORed group. Empty values add nothing.
func (qb *queryBuilder) addAnyOf(condition string, values []string) *queryBuilder {
	if len(values) == 0 {
		return qb
	}
	qb.anyOf = append(qb.anyOf, fmt.Sprintf(condition, placeholders(len(values))))
	for _, v := range values {
		qb.args = append(qb.args, v)
	}
	return qb
}

// addArgs appends args for placeholders in the suffix, in order.
func (qb *queryBuilder) addArgs(args ...interface{}) *queryBuilder {
	qb.args = append(qb.args, args...)
	return qb
}

// addLimit appends the LIMIT argument (does not use filters slice)
func (qb *queryBuilder) addLimit(limit int) *queryBuilder {
	qb.args = append(qb.args, limit)
	return qb
}

// build constructs the final query and returns it with args. The base query
// must end in a WHERE clause.
func (qb *queryBuilder) build(suffix string) (string, []interface{}) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " AND " + strings.Join(qb.filters, " AND ")
	}
	if len(qb.anyOf) > 0 {
		query += " AND (" + strings.Join(qb.anyOf, " OR ") + ")"
	}
	if suffix != "" {
		query += " " + suffix
	}
	return query, qb.args
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs converts ids into query arguments.
func stringArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// observe records the duration and outcome of a named query.
func observe(name string, start time.Time, err error) {
	metrics.RecordDBQuery(name, time.Since(start), err)
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackQuietly rolls back a transaction that may already be committed.
func rollbackQuietly(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logging.Warn().Err(err).Msg("Transaction rollback failed")
	}
}
