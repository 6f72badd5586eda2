// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/partwise/internal/config"
	"github.com/tomtom215/partwise/internal/models"
	"github.com/tomtom215/partwise/internal/recommend"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB opens an empty in-memory database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	db.now = func() time.Time { return testNow }
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

// loadFixtures writes a small brake and filter catalog.
func loadFixtures(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	for _, c := range []models.Category{
		{ID: "c-brakes", Name: "Brakes", Slug: "brakes"},
		{ID: "c-pads", Name: "Brake Pads", Slug: "brake-pads", ParentID: "c-brakes"},
		{ID: "c-oilf", Name: "Oil Filters", Slug: "oil-filters"},
	} {
		if err := db.SaveCategory(ctx, c); err != nil {
			t.Fatalf("SaveCategory(%s) error = %v", c.ID, err)
		}
	}
	for _, b := range []models.Brand{
		{ID: "b-bosch", Name: "Bosch", Country: "Germany"},
		{ID: "b-mann", Name: "MANN-FILTER", Country: "Germany"},
	} {
		if err := db.SaveBrand(ctx, b); err != nil {
			t.Fatalf("SaveBrand(%s) error = %v", b.ID, err)
		}
	}

	products := []models.Product{
		{
			ID: "p-pads", Name: "Pads", Price: 45, CategoryID: "c-pads", BrandID: "b-bosch",
			Tags:               []string{"front", "ceramic", "front"},
			CompatibleVehicles: []models.VehicleRef{{VehicleModelID: "V1", ManufacturerID: "M1"}},
			Images:             []string{"https://img/2.jpg", "https://img/1.jpg"},
			CreatedAt:          testNow.Add(-72 * time.Hour),
		},
		{
			ID: "p-oilf", Name: "Oil filter", Price: 11, CategoryID: "c-oilf", BrandID: "b-mann",
			CompatibleVehicles: []models.VehicleRef{{VehicleModelID: "V2", ManufacturerID: "M2"}},
			CreatedAt:          testNow.Add(-48 * time.Hour),
		},
		{
			ID: "p-oilf-bosch", Name: "Bosch oil filter", Price: 12, CategoryID: "c-oilf", BrandID: "b-bosch",
			CreatedAt: testNow.Add(-24 * time.Hour),
		},
		{
			ID: "p-orphan", Name: "Uncategorized", Price: 5,
			CreatedAt: testNow.Add(-time.Hour),
		},
	}
	for i := range products {
		if err := db.SaveProduct(ctx, &products[i]); err != nil {
			t.Fatalf("SaveProduct(%s) error = %v", products[i].ID, err)
		}
	}
}

func productIDs(list []models.Product) []string {
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_InMemory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	n, err := db.CountProducts(ctx)
	if err != nil {
		t.Fatalf("CountProducts() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountProducts() = %d, want 0", n)
	}
}

func TestNew_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "partwise.duckdb")
	cfg := &config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 1}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.SaveBrand(context.Background(), models.Brand{ID: "b-1", Name: "One"}); err != nil {
		t.Fatalf("SaveBrand() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err = New(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	brands, err := db.ListBrands(context.Background())
	if err != nil {
		t.Fatalf("ListBrands() error = %v", err)
	}
	if len(brands) != 1 || brands[0].ID != "b-1" {
		t.Errorf("ListBrands() after reopen = %+v", brands)
	}
}

func TestGetProduct(t *testing.T) {
	db := setupTestDB(t)
	loadFixtures(t, db)

	p, err := db.GetProduct(context.Background(), "p-pads")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p.Name != "Pads" || p.Price != 45 || p.CategoryID != "c-pads" || p.BrandID != "b-bosch" {
		t.Errorf("GetProduct() = %+v", p)
	}
	if !equalStrings(p.Tags, []string{"ceramic", "front"}) {
		t.Errorf("Tags = %v, want sorted and deduplicated", p.Tags)
	}
	if len(p.CompatibleVehicles) != 1 || p.CompatibleVehicles[0] != (models.VehicleRef{VehicleModelID: "V1", ManufacturerID: "M1"}) {
		t.Errorf("CompatibleVehicles = %+v", p.CompatibleVehicles)
	}
	if !equalStrings(p.Images, []string{"https://img/2.jpg", "https://img/1.jpg"}) {
		t.Errorf("Images = %v, want insertion order", p.Images)
	}
	if !p.CreatedAt.Equal(testNow.Add(-72 * time.Hour)) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, testNow.Add(-72*time.Hour))
	}

	orphan, err := db.GetProduct(context.Background(), "p-orphan")
	if err != nil {
		t.Fatalf("GetProduct(orphan) error = %v", err)
	}
	if orphan.CategoryID != "" || orphan.BrandID != "" {
		t.Errorf("orphan refs = %q/%q, want empty", orphan.CategoryID, orphan.BrandID)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetProduct(context.Background(), "missing")
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("GetProduct(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetProducts(t *testing.T) {
	db := setupTestDB(t)
	loadFixtures(t, db)
	ctx := context.Background()

	got, err := db.GetProducts(ctx, []string{"p-pads", "p-oilf", "missing"})
	if err != nil {
		t.Fatalf("GetProducts() error = %v", err)
	}
	if len(got) != 2 || got["p-pads"] == nil || got["p-oilf"] == nil {
		t.Errorf("GetProducts() = %v, want p-pads and p-oilf", got)
	}
	if len(got["p-pads"].Tags) != 2 {
		t.Errorf("details not attached: %+v", got["p-pads"])
	}

	empty, err := db.GetProducts(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetProducts(nil) = %v, %v; want empty", empty, err)
	}
}

func TestFindProducts(t *testing.T) {
	db := setupTestDB(t)
	loadFixtures(t, db)

	tests := []struct {
		name   string
		filter models.ProductFilter
		want   []string
	}{
		{
			name:   "category",
			filter: models.ProductFilter{CategoryIDs: []string{"c-oilf"}},
			want:   []string{"p-oilf-bosch", "p-oilf"},
		},
		{
			name:   "brand",
			filter: models.ProductFilter{BrandIDs: []string{"b-bosch"}},
			want:   []string{"p-oilf-bosch", "p-pads"},
		},
		{
			name:   "vehicle",
			filter: models.ProductFilter{VehicleIDs: []string{"V2"}},
			want:   []string{"p-oilf"},
		},
		{
			name: "criteria are ORed, category matches first",
			filter: models.ProductFilter{
				CategoryIDs: []string{"c-pads"},
				VehicleIDs:  []string{"V2"},
			},
			want: []string{"p-pads", "p-oilf"},
		},
		{
			name: "category matches survive the limit",
			filter: models.ProductFilter{
				CategoryIDs: []string{"c-pads"},
				BrandIDs:    []string{"b-bosch"},
				Limit:       1,
			},
			want: []string{"p-pads"},
		},
		{
			name:   "empty filter returns newest",
			filter: models.ProductFilter{Limit: 2},
			want:   []string{"p-orphan", "p-oilf-bosch"},
		},
		{
			name:   "limit",
			filter: models.ProductFilter{BrandIDs: []string{"b-bosch", "b-mann"}, Limit: 1},
			want:   []string{"p-oilf-bosch"},
		},
		{
			name:   "no match",
			filter: models.ProductFilter{CategoryIDs: []string{"c-none"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FindProducts(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("FindProducts() error = %v", err)
			}
			if ids := productIDs(got); !equalStrings(ids, tt.want) {
				t.Errorf("FindProducts() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestListCategoriesAndBrands(t *testing.T) {
	db := setupTestDB(t)
	loadFixtures(t, db)
	ctx := context.Background()

	cats, err := db.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("ListCategories() = %d categories, want 3", len(cats))
	}
	byID := make(map[string]models.Category)
	for _, c := range cats {
		byID[c.ID] = c
	}
	if brakes := byID["c-brakes"]; brakes.ParentID != "" || !brakes.IsRoot() {
		t.Errorf("c-brakes parent = %q, want root", brakes.ParentID)
	}
	if byID["c-pads"].ParentID != "c-brakes" {
		t.Errorf("c-pads parent = %q, want c-brakes", byID["c-pads"].ParentID)
	}

	brands, err := db.ListBrands(ctx)
	if err != nil {
		t.Fatalf("ListBrands() error = %v", err)
	}
	if len(brands) != 2 || brands[0].ID != "b-bosch" || brands[0].Country != "Germany" {
		t.Errorf("ListBrands() = %+v", brands)
	}
}

func TestSaveProduct_Replaces(t *testing.T) {
	db := setupTestDB(t)
	loadFixtures(t, db)
	ctx := context.Background()

	updated := models.Product{
		ID: "p-pads", Name: "Pads v2", Price: 50, CategoryID: "c-pads", BrandID: "b-bosch",
		Tags:      []string{"rear"},
		CreatedAt: testNow.Add(-72 * time.Hour),
	}
	if err := db.SaveProduct(ctx, &updated); err != nil {
		t.Fatalf("SaveProduct() error = %v", err)
	}

	p, err := db.GetProduct(ctx, "p-pads")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p.Name != "Pads v2" || !equalStrings(p.Tags, []string{"rear"}) {
		t.Errorf("GetProduct() = %+v, want replaced row", p)
	}
	if len(p.CompatibleVehicles) != 0 || len(p.Images) != 0 {
		t.Errorf("child rows not replaced: %+v", p)
	}
}
