// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/partwise/internal/models"
	"github.com/tomtom215/partwise/internal/recommend"
)

// UserEvents returns a user's events with from <= occurred_at <= to, oldest
// first.
func (db *DB) UserEvents(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	events, err := queryAndScan(ctx, db.conn,
		`SELECT user_id, product_id, event_type, occurred_at
		FROM events
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at, id`,
		[]interface{}{userID, from.UTC(), to.UTC()},
		func(rows *sql.Rows) (models.Event, error) {
			var e models.Event
			var eventType string
			err := rows.Scan(&e.UserID, &e.ProductID, &eventType, &e.Timestamp)
			e.Type = models.EventType(eventType)
			return e, err
		})
	observe("user_events", start, err)
	if err != nil {
		return nil, storeError(fmt.Sprintf("events for user %s", userID), err)
	}
	return events, nil
}

// PopularCategories returns category ids ordered by weighted event volume
// since a time. Ties break on category id.
func (db *DB) PopularCategories(ctx context.Context, since time.Time, limit int) ([]string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	args := []interface{}{
		since.UTC(),
		string(models.EventPurchase), recommend.EventWeight(models.EventPurchase),
		string(models.EventAddToCart), recommend.EventWeight(models.EventAddToCart),
		string(models.EventView), recommend.EventWeight(models.EventView),
		limit,
	}

	start := time.Now()
	ids, err := queryAndScan(ctx, db.conn,
		`SELECT p.category_id
		FROM events e
		JOIN products p ON p.id = e.product_id
		WHERE e.occurred_at >= ? AND p.category_id IS NOT NULL AND p.category_id <> ''
		GROUP BY p.category_id
		ORDER BY SUM(CASE e.event_type
			WHEN ? THEN CAST(? AS DOUBLE)
			WHEN ? THEN CAST(? AS DOUBLE)
			WHEN ? THEN CAST(? AS DOUBLE)
			ELSE 0 END) DESC,
			p.category_id ASC
		LIMIT ?`,
		args,
		func(rows *sql.Rows) (string, error) {
			var id string
			err := rows.Scan(&id)
			return id, err
		})
	observe("popular_categories", start, err)
	if err != nil {
		return nil, storeError("popular categories", err)
	}
	return ids, nil
}

// UserExists reports whether the user is known.
func (db *DB) UserExists(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, userID,
	).Scan(&exists)
	observe("user_exists", start, err)
	if err != nil {
		return false, storeError(fmt.Sprintf("user %s", userID), err)
	}
	return exists, nil
}

// SaveUser registers a user id. Existing users are left unchanged.
func (db *DB) SaveUser(ctx context.Context, userID string, createdAt time.Time) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		userID, createdAt.UTC())
	return storeError(fmt.Sprintf("save user %s", userID), err)
}

// AppendEvent records one interaction under a unique id and registers its
// user. Replaying an id is a no-op and reports false.
func (db *DB) AppendEvent(ctx context.Context, id string, e models.Event) (bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	inserted, err := db.appendEvent(ctx, id, e)
	observe("append_event", start, err)
	if err != nil {
		return false, storeError(fmt.Sprintf("append event %s", id), err)
	}
	return inserted, nil
}

func (db *DB) appendEvent(ctx context.Context, id string, e models.Event) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer rollbackQuietly(tx)

	ts := e.Timestamp.UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		e.UserID, ts,
	); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, user_id, product_id, event_type, occurred_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		id, e.UserID, e.ProductID, string(e.Type), ts)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}
