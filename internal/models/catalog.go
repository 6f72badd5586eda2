// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package models

import "time"

// Product is a catalog item. Identity is immutable; price and stock are
// owned by inventory and may change between reads.
type Product struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Price              float64      `json:"price"`
	CategoryID         string       `json:"category_id"`
	BrandID            string       `json:"brand_id"`
	Tags               []string     `json:"tags,omitempty"`
	CompatibleVehicles []VehicleRef `json:"compatible_vehicles,omitempty"`
	Images             []string     `json:"images,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

// VehicleRef is one fitment entry of a product.
type VehicleRef struct {
	VehicleModelID string `json:"vehicle_model_id"`
	ManufacturerID string `json:"manufacturer_id"`
}

// VehicleIDs returns the vehicle model ids the product fits.
func (p *Product) VehicleIDs() []string {
	ids := make([]string, 0, len(p.CompatibleVehicles))
	for _, v := range p.CompatibleVehicles {
		ids = append(ids, v.VehicleModelID)
	}
	return ids
}

// PrimaryImage returns the first image URL or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is a node of the category tree.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID string `json:"parent_id,omitempty"`
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == ""
}

// Brand is a flat manufacturer brand.
type Brand struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// VehicleModel is only used as a join key for compatibility overlap.
type VehicleModel struct {
	ID             string `json:"id"`
	ManufacturerID string `json:"manufacturer_id"`
	BodyType       string `json:"body_type"` // sedan, hatchback, crossover, ...
}

// ProductFilter is a multi-criteria OR filter: a product matches when its
// category, brand or any fitted vehicle is listed. An empty filter matches
// the newest products.
type ProductFilter struct {
	CategoryIDs []string
	BrandIDs    []string
	VehicleIDs  []string
	Limit       int
}

// IsEmpty reports whether no criteria are set.
func (f *ProductFilter) IsEmpty() bool {
	return len(f.CategoryIDs) == 0 && len(f.BrandIDs) == 0 && len(f.VehicleIDs) == 0
}
