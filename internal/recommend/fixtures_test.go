// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/partwise/internal/models"
)

var (
	testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	oldDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	errStoreDown = errors.New("connection refused")
)

func testCategories() []models.Category {
	return []models.Category{
		{ID: "c-engine", Name: "Engine", Slug: "engine"},
		{ID: "c-oil", Name: "Engine Oil", Slug: "engine-oil", ParentID: "c-engine"},
		{ID: "c-oilf", Name: "Oil Filters", Slug: "oil-filters", ParentID: "c-engine"},
		{ID: "c-airf", Name: "Air Filters", Slug: "air-filters", ParentID: "c-engine"},
		{ID: "c-brakes", Name: "Brakes", Slug: "brakes"},
		{ID: "c-pads", Name: "Brake Pads", Slug: "brake-pads", ParentID: "c-brakes"},
		{ID: "c-discs", Name: "Brake Discs", Slug: "brake-discs", ParentID: "c-brakes"},
		{ID: "c-wipers", Name: "Wiper Blades", Slug: "wiper-blades"},
	}
}

func testBrands() []models.Brand {
	return []models.Brand{
		{ID: "b-bosch", Name: "Bosch", Country: "Germany"},
		{ID: "b-brembo", Name: "Brembo", Country: "Italy"},
		{ID: "b-mann", Name: "Mann", Country: "Germany"},
		{ID: "b-mahle", Name: "Mahle", Country: "Germany"},
		{ID: "b-valeo", Name: "Valeo", Country: "France"},
	}
}

func brandMap() map[string]models.Brand {
	out := make(map[string]models.Brand)
	for _, b := range testBrands() {
		out[b.ID] = b
	}
	return out
}

func vehicles(ids ...string) []models.VehicleRef {
	out := make([]models.VehicleRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.VehicleRef{VehicleModelID: id, ManufacturerID: "m-" + id})
	}
	return out
}

func product(id, category, brand string, price float64, vehicleIDs ...string) models.Product {
	return models.Product{
		ID:                 id,
		Name:               "Product " + id,
		Price:              price,
		CategoryID:         category,
		BrandID:            brand,
		CompatibleVehicles: vehicles(vehicleIDs...),
		Images:             []string{"https://img.example.com/" + id + ".jpg"},
		CreatedAt:          oldDate,
	}
}

func testProducts() []models.Product {
	return []models.Product{
		product("p-pads-1", "c-pads", "b-bosch", 500000, "V1"),
		product("p-pads-2", "c-pads", "b-bosch", 520000, "V1"),
		product("p-discs-1", "c-discs", "b-brembo", 100000),
		product("p-oilf-1", "c-oilf", "b-mann", 150000, "V2"),
		product("p-oilf-2", "c-oilf", "b-mahle", 160000, "V2"),
		product("p-oil-1", "c-oil", "b-mahle", 400000),
		product("p-oil-2", "c-oil", "b-mann", 150000),
		product("p-wiper-1", "c-wipers", "b-valeo", 150000),
		product("p-wiper-2", "c-wipers", "b-mann", 900000),
	}
}

func testHierarchy() *Hierarchy {
	return NewHierarchy(testCategories(), 1)
}

// fakeProducts is an in-memory ProductStore.
type fakeProducts struct {
	mu         sync.Mutex
	products   map[string]models.Product
	categories []models.Category
	brands     []models.Brand
	err        error

	// brandedDelay blocks FindProducts calls that filter on brands, which
	// only user and product sources do.
	brandedDelay time.Duration
	findCalls    atomic.Int32

	// The next slowLists ListCategories calls block for listDelay.
	listDelay time.Duration
	slowLists atomic.Int32
}

func newFakeProducts() *fakeProducts {
	f := &fakeProducts{
		products:   make(map[string]models.Product),
		categories: testCategories(),
		brands:     testBrands(),
	}
	for _, p := range testProducts() {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) add(p models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (f *fakeProducts) GetProducts(_ context.Context, ids []string) (map[string]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (f *fakeProducts) FindProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.findCalls.Add(1)
	if f.brandedDelay > 0 && len(filter.BrandIDs) > 0 {
		select {
		case <-time.After(f.brandedDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	cats := toSet(filter.CategoryIDs)
	brands := toSet(filter.BrandIDs)
	vehicleSet := toSet(filter.VehicleIDs)

	var out []models.Product
	for _, p := range f.products {
		if filter.IsEmpty() || matches(&p, cats, brands, vehicleSet) {
			out = append(out, p)
		}
	}
	rankCategory := len(cats) > 0 && (len(brands) > 0 || len(vehicleSet) > 0)
	sort.Slice(out, func(i, j int) bool {
		if rankCategory {
			_, ci := cats[out[i].CategoryID]
			_, cj := cats[out[j].CategoryID]
			if ci != cj {
				return ci
			}
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(p *models.Product, cats, brands, vehicleSet map[string]struct{}) bool {
	if _, ok := cats[p.CategoryID]; ok {
		return true
	}
	if _, ok := brands[p.BrandID]; ok {
		return true
	}
	for _, v := range p.VehicleIDs() {
		if _, ok := vehicleSet[v]; ok {
			return true
		}
	}
	return false
}

func (f *fakeProducts) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := stall(ctx, &f.slowLists, f.listDelay); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Category(nil), f.categories...), nil
}

func (f *fakeProducts) ListBrands(_ context.Context) ([]models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Brand(nil), f.brands...), nil
}

// stall blocks for d while *budget is positive, consuming one unit.
func stall(ctx context.Context, budget *atomic.Int32, d time.Duration) error {
	if d <= 0 || budget.Add(-1) < 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fakeEvents is an in-memory EventStore.
type fakeEvents struct {
	events  map[string][]models.Event
	popular []string
	err     error

	// The next slowReads UserEvents calls block for readDelay.
	readDelay time.Duration
	slowReads atomic.Int32
	reads     atomic.Int32
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: make(map[string][]models.Event)}
}

func (f *fakeEvents) record(userID, productID string, t models.EventType, at time.Time) {
	f.events[userID] = append(f.events[userID], models.Event{
		UserID:    userID,
		ProductID: productID,
		Type:      t,
		Timestamp: at,
	})
}

func (f *fakeEvents) UserEvents(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	f.reads.Add(1)
	if err := stall(ctx, &f.slowReads, f.readDelay); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Event
	for _, ev := range f.events[userID] {
		if ev.Timestamp.Before(from) || ev.Timestamp.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEvents) PopularCategories(_ context.Context, _ time.Time, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.popular) > limit {
		return f.popular[:limit], nil
	}
	return f.popular, nil
}

// fakeUsers is a UserDirectory backed by a set.
type fakeUsers map[string]bool

func (f fakeUsers) UserExists(_ context.Context, userID string) (bool, error) {
	return f[userID], nil
}

// fakeKV is an in-memory KVStore that ignores ttl; expiry is enforced by
// StoreCache.
type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
	sets int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	f.ttls[key] = ttl
	f.sets++
	return nil
}

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *fakeKV) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, cfg *Config, products *fakeProducts, events *fakeEvents, opts ...Option) *Engine {
	t.Helper()
	all := append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	e, err := NewEngine(cfg, products, events, zerolog.Nop(), all...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func productIDs(items []Recommendation) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductID)
	}
	return out
}

func equalIDs(a, b []string) bool {
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
