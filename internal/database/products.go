// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/partwise/internal/models"
)

const productColumns = `id, name, price, COALESCE(category_id, ''), COALESCE(brand_id, ''), created_at`

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var p models.Product
	err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.BrandID, &p.CreatedAt)
	return p, err
}

// GetProduct returns one product with its tags, fitment and images.
// A missing product is ErrNotFound.
func (db *DB) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var p models.Product
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.BrandID, &p.CreatedAt)
	observe("get_product", start, err)
	if err != nil {
		return nil, storeError(fmt.Sprintf("get product %s", id), err)
	}

	list := []models.Product{p}
	if err := db.attachDetails(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// GetProducts returns the products that exist among ids, keyed by id.
// Unknown ids are omitted.
func (db *DB) GetProducts(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + placeholders(len(ids)) + `)`
	list, err := queryAndScan(ctx, db.conn, query, stringArgs(ids), scanProduct)
	observe("get_products", start, err)
	if err != nil {
		return nil, storeError("get products", err)
	}

	if err := db.attachDetails(ctx, list); err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

// FindProducts returns products whose category, brand or any fitted vehicle
// matches the filter. Category matches come first, then newest first, so a
// limit never drops an exact category match in favor of a brand or vehicle
// match. An empty filter returns the newest products. A non-positive limit
// returns every match.
func (db *DB) FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	qb := newQueryBuilder(`SELECT ` + productColumns + ` FROM products WHERE 1=1`).
		addAnyOf("category_id IN (%s)", filter.CategoryIDs).
		addAnyOf("brand_id IN (%s)", filter.BrandIDs).
		addAnyOf("id IN (SELECT product_id FROM product_vehicles WHERE vehicle_model_id IN (%s))", filter.VehicleIDs)

	suffix := "ORDER BY created_at DESC, id ASC"
	if len(filter.CategoryIDs) > 0 && (len(filter.BrandIDs) > 0 || len(filter.VehicleIDs) > 0) {
		suffix = "ORDER BY (category_id IN (" + placeholders(len(filter.CategoryIDs)) + ")) DESC, created_at DESC, id ASC"
		qb.addArgs(stringArgs(filter.CategoryIDs)...)
	}
	if filter.Limit > 0 {
		qb.addLimit(filter.Limit)
		suffix += " LIMIT ?"
	}
	query, args := qb.build(suffix)

	start := time.Now()
	list, err := queryAndScan(ctx, db.conn, query, args, scanProduct)
	observe("find_products", start, err)
	if err != nil {
		return nil, storeError("find products", err)
	}

	if err := db.attachDetails(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachDetails loads tags, fitment and images for the listed products.
func (db *DB) attachDetails(ctx context.Context, list []models.Product) error {
	if len(list) == 0 {
		return nil
	}

	index := make(map[string]int, len(list))
	ids := make([]string, len(list))
	for i := range list {
		index[list[i].ID] = i
		ids[i] = list[i].ID
	}
	in := placeholders(len(ids))
	args := stringArgs(ids)

	start := time.Now()
	err := db.forEachRow(ctx,
		`SELECT product_id, tag FROM product_tags WHERE product_id IN (`+in+`) ORDER BY product_id, tag`,
		args, func(rows *sql.Rows) error {
			var productID, tag string
			if err := rows.Scan(&productID, &tag); err != nil {
				return err
			}
			p := &list[index[productID]]
			p.Tags = append(p.Tags, tag)
			return nil
		})
	if err == nil {
		err = db.forEachRow(ctx,
			`SELECT product_id, vehicle_model_id, manufacturer_id FROM product_vehicles WHERE product_id IN (`+in+`) ORDER BY product_id, vehicle_model_id`,
			args, func(rows *sql.Rows) error {
				var productID string
				var v models.VehicleRef
				if err := rows.Scan(&productID, &v.VehicleModelID, &v.ManufacturerID); err != nil {
					return err
				}
				p := &list[index[productID]]
				p.CompatibleVehicles = append(p.CompatibleVehicles, v)
				return nil
			})
	}
	if err == nil {
		err = db.forEachRow(ctx,
			`SELECT product_id, url FROM product_images WHERE product_id IN (`+in+`) ORDER BY product_id, position`,
			args, func(rows *sql.Rows) error {
				var productID, url string
				if err := rows.Scan(&productID, &url); err != nil {
					return err
				}
				p := &list[index[productID]]
				p.Images = append(p.Images, url)
				return nil
			})
	}
	observe("product_details", start, err)
	return storeError("load product details", err)
}

// forEachRow runs a query and calls fn for each row.
func (db *DB) forEachRow(ctx context.Context, query string, args []interface{}, fn func(*sql.Rows) error) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListCategories returns every category as flat records ordered by id.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	list, err := queryAndScan(ctx, db.conn,
		`SELECT id, name, slug, COALESCE(parent_id, '') FROM categories ORDER BY id`, nil,
		func(rows *sql.Rows) (models.Category, error) {
			var c models.Category
			err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID)
			return c, err
		})
	observe("list_categories", start, err)
	if err != nil {
		return nil, storeError("list categories", err)
	}
	return list, nil
}

// ListBrands returns every brand ordered by id.
func (db *DB) ListBrands(ctx context.Context) ([]models.Brand, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	list, err := queryAndScan(ctx, db.conn,
		`SELECT id, name, country FROM brands ORDER BY id`, nil,
		func(rows *sql.Rows) (models.Brand, error) {
			var b models.Brand
			err := rows.Scan(&b.ID, &b.Name, &b.Country)
			return b, err
		})
	observe("list_brands", start, err)
	if err != nil {
		return nil, storeError("list brands", err)
	}
	return list, nil
}

// SaveCategory inserts or replaces a category.
func (db *DB) SaveCategory(ctx context.Context, c models.Category) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var parent interface{}
	if c.ParentID != "" {
		parent = c.ParentID
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO categories (id, name, slug, parent_id) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, parent)
	return storeError(fmt.Sprintf("save category %s", c.ID), err)
}

// SaveBrand inserts or replaces a brand.
func (db *DB) SaveBrand(ctx context.Context, b models.Brand) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO brands (id, name, country) VALUES (?, ?, ?)`,
		b.ID, b.Name, b.Country)
	return storeError(fmt.Sprintf("save brand %s", b.ID), err)
}

// SaveVehicleModel inserts or replaces a vehicle model.
func (db *DB) SaveVehicleModel(ctx context.Context, v models.VehicleModel) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO vehicle_models (id, manufacturer_id, body_type) VALUES (?, ?, ?)`,
		v.ID, v.ManufacturerID, v.BodyType)
	return storeError(fmt.Sprintf("save vehicle model %s", v.ID), err)
}

// SaveProduct writes a product and replaces its tags, fitment and images in
// one transaction.
func (db *DB) SaveProduct(ctx context.Context, p *models.Product) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin save product", err)
	}
	defer rollbackQuietly(tx)

	if err := saveProductTx(ctx, tx, p); err != nil {
		return storeError(fmt.Sprintf("save product %s", p.ID), err)
	}
	return storeError("commit save product", tx.Commit())
}

func saveProductTx(ctx context.Context, tx *sql.Tx, p *models.Product) error {
	for _, table := range []string{"product_tags", "product_vehicles", "product_images", "products"} {
		column := "product_id"
		if table == "products" {
			column = "id"
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, p.ID); err != nil {
			return err
		}
	}

	var category, brand interface{}
	if p.CategoryID != "" {
		category = p.CategoryID
	}
	if p.BrandID != "" {
		brand = p.BrandID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, name, price, category_id, brand_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, category, brand, p.CreatedAt.UTC(),
	); err != nil {
		return err
	}

	tags := append([]string(nil), p.Tags...)
	sort.Strings(tags)
	for i, tag := range tags {
		if i > 0 && tags[i-1] == tag {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_tags (product_id, tag) VALUES (?, ?)`, p.ID, tag,
		); err != nil {
			return err
		}
	}

	seen := make(map[string]struct{}, len(p.CompatibleVehicles))
	for _, v := range p.CompatibleVehicles {
		if _, dup := seen[v.VehicleModelID]; dup {
			continue
		}
		seen[v.VehicleModelID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_vehicles (product_id, vehicle_model_id, manufacturer_id) VALUES (?, ?, ?)`,
			p.ID, v.VehicleModelID, v.ManufacturerID,
		); err != nil {
			return err
		}
	}

	for i, url := range p.Images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_images (product_id, position, url) VALUES (?, ?, ?)`, p.ID, i, url,
		); err != nil {
			return err
		}
	}
	return nil
}

// CountProducts returns the number of catalog products.
func (db *DB) CountProducts(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, storeError("count products", err)
}
