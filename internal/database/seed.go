// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/partwise/internal/models"
)

// seedNamespace derives stable event ids for the demo data.
var seedNamespace = uuid.MustParse("5b1c0a4e-8f3d-4a57-9f1e-2d7c6b8a9e01")

// DemoCatalog is a small auto parts catalog used for local runs and tests.
type DemoCatalog struct {
	Categories []models.Category
	Brands     []models.Brand
	Vehicles   []models.VehicleModel
	Products   []models.Product
	Users      []string
	Events     []models.Event
}

// NewDemoCatalog builds the demo catalog with timestamps relative to now.
func NewDemoCatalog(now time.Time) *DemoCatalog {
	day := 24 * time.Hour
	fits := func(ids ...string) []models.VehicleRef {
		refs := make([]models.VehicleRef, 0, len(ids))
		for _, id := range ids {
			refs = append(refs, models.VehicleRef{VehicleModelID: id, ManufacturerID: manufacturerOf[id]})
		}
		return refs
	}
	img := func(id string) []string {
		return []string{fmt.Sprintf("https://img.partwise.dev/%s/1.jpg", id), fmt.Sprintf("https://img.partwise.dev/%s/2.jpg", id)}
	}

	c := &DemoCatalog{
		Categories: []models.Category{
			{ID: "cat-engine", Name: "Engine", Slug: "engine"},
			{ID: "cat-engine-oil", Name: "Engine Oil", Slug: "engine-oil", ParentID: "cat-engine"},
			{ID: "cat-oil-filters", Name: "Oil Filters", Slug: "oil-filters", ParentID: "cat-engine"},
			{ID: "cat-air-filters", Name: "Air Filters", Slug: "air-filters", ParentID: "cat-engine"},
			{ID: "cat-spark-plugs", Name: "Spark Plugs", Slug: "spark-plugs", ParentID: "cat-engine"},
			{ID: "cat-brakes", Name: "Brakes", Slug: "brakes"},
			{ID: "cat-brake-pads", Name: "Brake Pads", Slug: "brake-pads", ParentID: "cat-brakes"},
			{ID: "cat-brake-discs", Name: "Brake Discs", Slug: "brake-discs", ParentID: "cat-brakes"},
			{ID: "cat-brake-fluid", Name: "Brake Fluid", Slug: "brake-fluid", ParentID: "cat-brakes"},
			{ID: "cat-visibility", Name: "Visibility", Slug: "visibility"},
			{ID: "cat-wiper-blades", Name: "Wiper Blades", Slug: "wiper-blades", ParentID: "cat-visibility"},
			{ID: "cat-washer-fluid", Name: "Washer Fluid", Slug: "washer-fluid", ParentID: "cat-visibility"},
		},
		Brands: []models.Brand{
			{ID: "brand-bosch", Name: "Bosch", Country: "Germany"},
			{ID: "brand-mann", Name: "MANN-FILTER", Country: "Germany"},
			{ID: "brand-mahle", Name: "MAHLE", Country: "Germany"},
			{ID: "brand-brembo", Name: "Brembo", Country: "Italy"},
			{ID: "brand-valeo", Name: "Valeo", Country: "France"},
			{ID: "brand-castrol", Name: "Castrol", Country: "United Kingdom"},
			{ID: "brand-ngk", Name: "NGK", Country: "Japan"},
			{ID: "brand-denso", Name: "Denso", Country: "Japan"},
		},
		Vehicles: []models.VehicleModel{
			{ID: "veh-golf-7", ManufacturerID: "mfr-volkswagen", BodyType: "hatchback"},
			{ID: "veh-octavia-3", ManufacturerID: "mfr-skoda", BodyType: "sedan"},
			{ID: "veh-corolla-12", ManufacturerID: "mfr-toyota", BodyType: "sedan"},
			{ID: "veh-rav4-5", ManufacturerID: "mfr-toyota", BodyType: "crossover"},
			{ID: "veh-focus-4", ManufacturerID: "mfr-ford", BodyType: "hatchback"},
		},
		Users: []string{"user-demo-1", "user-demo-2", "user-new"},
	}

	products := []struct {
		id, name, category, brand string
		price                     float64
		tags                      []string
		vehicles                  []string
		age                       time.Duration
	}{
		{"prd-pads-bosch-golf", "Bosch QuietCast Brake Pads Front", "cat-brake-pads", "brand-bosch", 4500, []string{"front", "ceramic"}, []string{"veh-golf-7", "veh-octavia-3"}, 120 * day},
		{"prd-pads-brembo-golf", "Brembo Xtra Brake Pads Front", "cat-brake-pads", "brand-brembo", 6200, []string{"front", "performance"}, []string{"veh-golf-7", "veh-octavia-3"}, 90 * day},
		{"prd-pads-denso-corolla", "Denso Brake Pads Front", "cat-brake-pads", "brand-denso", 3900, []string{"front", "ceramic"}, []string{"veh-corolla-12", "veh-rav4-5"}, 200 * day},
		{"prd-discs-brembo-golf", "Brembo Coated Brake Disc Pair", "cat-brake-discs", "brand-brembo", 11900, []string{"front", "coated"}, []string{"veh-golf-7", "veh-octavia-3"}, 60 * day},
		{"prd-discs-bosch-focus", "Bosch Brake Disc Pair", "cat-brake-discs", "brand-bosch", 8900, []string{"front"}, []string{"veh-focus-4"}, 300 * day},
		{"prd-fluid-bosch-dot4", "Bosch DOT 4 Brake Fluid 1L", "cat-brake-fluid", "brand-bosch", 1400, []string{"dot4"}, nil, 400 * day},
		{"prd-oilf-mann-golf", "MANN-FILTER Oil Filter HU 7020 z", "cat-oil-filters", "brand-mann", 1100, []string{"cartridge"}, []string{"veh-golf-7", "veh-octavia-3"}, 150 * day},
		{"prd-oilf-mahle-golf", "MAHLE Oil Filter OX 388D", "cat-oil-filters", "brand-mahle", 1250, []string{"cartridge"}, []string{"veh-golf-7", "veh-octavia-3"}, 20 * day},
		{"prd-oilf-denso-corolla", "Denso Oil Filter", "cat-oil-filters", "brand-denso", 900, []string{"spin-on"}, []string{"veh-corolla-12", "veh-rav4-5"}, 250 * day},
		{"prd-oil-castrol-5w30", "Castrol EDGE 5W-30 5L", "cat-engine-oil", "brand-castrol", 4800, []string{"5w-30", "synthetic"}, nil, 180 * day},
		{"prd-oil-castrol-0w20", "Castrol EDGE 0W-20 4L", "cat-engine-oil", "brand-castrol", 4300, []string{"0w-20", "synthetic"}, nil, 10 * day},
		{"prd-oil-mahle-5w30", "MAHLE 5W-30 Engine Oil 5L", "cat-engine-oil", "brand-mahle", 3600, []string{"5w-30"}, nil, 365 * day},
		{"prd-airf-mann-golf", "MANN-FILTER Air Filter C 27 009", "cat-air-filters", "brand-mann", 1700, []string{"panel"}, []string{"veh-golf-7"}, 100 * day},
		{"prd-airf-bosch-corolla", "Bosch Air Filter", "cat-air-filters", "brand-bosch", 1500, []string{"panel"}, []string{"veh-corolla-12"}, 140 * day},
		{"prd-plugs-ngk-golf", "NGK Iridium Spark Plug Set", "cat-spark-plugs", "brand-ngk", 3200, []string{"iridium"}, []string{"veh-golf-7", "veh-focus-4"}, 75 * day},
		{"prd-plugs-denso-corolla", "Denso Iridium TT Spark Plug Set", "cat-spark-plugs", "brand-denso", 2900, []string{"iridium"}, []string{"veh-corolla-12"}, 5 * day},
		{"prd-wiper-bosch-aero", "Bosch Aerotwin Wiper Set", "cat-wiper-blades", "brand-bosch", 2600, []string{"flat-blade"}, []string{"veh-golf-7", "veh-octavia-3", "veh-focus-4"}, 45 * day},
		{"prd-wiper-valeo-silencio", "Valeo Silencio Wiper Set", "cat-wiper-blades", "brand-valeo", 2300, []string{"flat-blade"}, []string{"veh-corolla-12", "veh-rav4-5"}, 160 * day},
		{"prd-washer-valeo-winter", "Valeo Winter Washer Fluid 5L", "cat-washer-fluid", "brand-valeo", 700, []string{"winter"}, nil, 30 * day},
	}
	for _, p := range products {
		c.Products = append(c.Products, models.Product{
			ID:                 p.id,
			Name:               p.name,
			Price:              p.price,
			CategoryID:         p.category,
			BrandID:            p.brand,
			Tags:               p.tags,
			CompatibleVehicles: fits(p.vehicles...),
			Images:             img(p.id),
			CreatedAt:          now.Add(-p.age).Truncate(time.Second),
		})
	}

	events := []struct {
		user, product string
		typ           models.EventType
		ago           time.Duration
	}{
		{"user-demo-1", "prd-oilf-mann-golf", models.EventView, 3 * day},
		{"user-demo-1", "prd-oilf-mahle-golf", models.EventView, 3 * day},
		{"user-demo-1", "prd-oilf-mahle-golf", models.EventAddToCart, 2 * day},
		{"user-demo-1", "prd-oil-castrol-5w30", models.EventView, 2 * day},
		{"user-demo-2", "prd-pads-bosch-golf", models.EventView, 5 * day},
		{"user-demo-2", "prd-pads-bosch-golf", models.EventPurchase, 4 * day},
		{"user-demo-2", "prd-discs-brembo-golf", models.EventView, day},
	}
	for _, e := range events {
		c.Events = append(c.Events, models.Event{
			UserID:    e.user,
			ProductID: e.product,
			Type:      e.typ,
			Timestamp: now.Add(-e.ago).Truncate(time.Second),
		})
	}
	return c
}

var manufacturerOf = map[string]string{
	"veh-golf-7":     "mfr-volkswagen",
	"veh-octavia-3":  "mfr-skoda",
	"veh-corolla-12": "mfr-toyota",
	"veh-rav4-5":     "mfr-toyota",
	"veh-focus-4":    "mfr-ford",
}

// SeedCatalog loads the demo catalog when the products table is empty.
// It reports whether anything was written.
func (db *DB) SeedCatalog(ctx context.Context) (bool, error) {
	n, err := db.CountProducts(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, db.Load(ctx, NewDemoCatalog(db.now()))
}

// Load writes a catalog. Event ids derive from the event fields, so loading
// the same catalog twice does not duplicate events.
func (db *DB) Load(ctx context.Context, c *DemoCatalog) error {
	for _, cat := range c.Categories {
		if err := db.SaveCategory(ctx, cat); err != nil {
			return err
		}
	}
	for _, b := range c.Brands {
		if err := db.SaveBrand(ctx, b); err != nil {
			return err
		}
	}
	for _, v := range c.Vehicles {
		if err := db.SaveVehicleModel(ctx, v); err != nil {
			return err
		}
	}
	for i := range c.Products {
		if err := db.SaveProduct(ctx, &c.Products[i]); err != nil {
			return err
		}
	}
	for _, u := range c.Users {
		if err := db.SaveUser(ctx, u, db.now()); err != nil {
			return err
		}
	}
	for _, e := range c.Events {
		if _, err := db.AppendEvent(ctx, seedEventID(e), e); err != nil {
			return err
		}
	}
	return nil
}

func seedEventID(e models.Event) string {
	key := fmt.Sprintf("%s|%s|%s|%d", e.UserID, e.ProductID, e.Type, e.Timestamp.UnixNano())
	return uuid.NewSHA1(seedNamespace, []byte(key)).String()
}
