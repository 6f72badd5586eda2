// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"sort"

	"github.com/tomtom215/partwise/internal/models"
)

// ConsumablePairs maps a category slug to the slugs of categories whose
// products are usually bought with it.
var ConsumablePairs = map[string][]string{
	"engine-oil":   {"oil-filters", "air-filters", "spark-plugs"},
	"oil-filters":  {"engine-oil", "air-filters"},
	"brake-pads":   {"brake-discs", "brake-fluid"},
	"brake-discs":  {"brake-pads", "brake-fluid"},
	"spark-plugs":  {"ignition-coils", "engine-oil"},
	"air-filters":  {"cabin-filters", "engine-oil"},
	"wiper-blades": {"washer-fluid"},
	"coolant":      {"thermostats", "radiator-hoses"},
}

// categoryNode is one entry of the adjacency map.
type categoryNode struct {
	category models.Category
	children []string
}

// Hierarchy is an adjacency view (id -> parent, children) of the category
// tree, built once per request from flat records.
//
// Resolve expands a set of categories into the related, complementary and
// consumable sets the scorer rewards. The walk goes at most depth levels up
// and down from each input and keeps a visited set, so a corrupted tree
// with a parent cycle still terminates.
//
// Example:
//
//	h := recommend.NewHierarchy(categories, 1)
//	res := h.Resolve("c-brake-pads")
//	res.IsRelated("c-brakes")       // parent
//	res.IsComplementary("c-brakes") // parents earn the complementary bonus
//
// Thread Safety: immutable after NewHierarchy; safe for concurrent reads.
type Hierarchy struct {
	nodes  map[string]*categoryNode
	bySlug map[string]string
	depth  int
	pairs  map[string][]string
}

// Resolution is the expansion of a set of categories.
type Resolution struct {
	// All holds the related categories reached by the tree walk.
	All map[string]struct{}
	// Complementary holds parents of the inputs and inputs that have children.
	Complementary map[string]struct{}
	// Consumable holds categories reached through ConsumablePairs.
	Consumable map[string]struct{}
}

// IsRelated reports whether id was reached by the tree walk.
func (r *Resolution) IsRelated(id string) bool {
	_, ok := r.All[id]
	return ok
}

// IsComplementary reports whether id earns the complementary bonus.
func (r *Resolution) IsComplementary(id string) bool {
	if _, ok := r.Complementary[id]; ok {
		return true
	}
	_, ok := r.Consumable[id]
	return ok
}

// categoryIDs returns every category the resolution touches, sorted.
func (r *Resolution) categoryIDs() []string {
	set := make(map[string]struct{}, len(r.All)+len(r.Complementary)+len(r.Consumable))
	for _, m := range []map[string]struct{}{r.All, r.Complementary, r.Consumable} {
		for id := range m {
			set[id] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// NewHierarchy builds the adjacency map. depth is clamped to
// [1, MaxHierarchyDepth]. Self-parented records are treated as roots.
func NewHierarchy(categories []models.Category, depth int) *Hierarchy {
	if depth < 1 {
		depth = 1
	}
	if depth > MaxHierarchyDepth {
		depth = MaxHierarchyDepth
	}

	h := &Hierarchy{
		nodes:  make(map[string]*categoryNode, len(categories)),
		bySlug: make(map[string]string, len(categories)),
		depth:  depth,
		pairs:  ConsumablePairs,
	}

	for i := range categories {
		c := categories[i]
		if c.ID == "" {
			continue
		}
		if c.ParentID == c.ID {
			c.ParentID = ""
		}
		h.nodes[c.ID] = &categoryNode{category: c}
		if c.Slug != "" {
			h.bySlug[c.Slug] = c.ID
		}
	}

	for id, n := range h.nodes {
		if parent, ok := h.nodes[n.category.ParentID]; ok {
			parent.children = append(parent.children, id)
		}
	}
	for _, n := range h.nodes {
		sort.Strings(n.children)
	}

	return h
}

// Has reports whether the category exists.
func (h *Hierarchy) Has(id string) bool {
	_, ok := h.nodes[id]
	return ok
}

// Category returns the category record.
func (h *Hierarchy) Category(id string) (models.Category, bool) {
	n, ok := h.nodes[id]
	if !ok {
		return models.Category{}, false
	}
	return n.category, true
}

// Name returns the display name of a category, or its id when unknown.
func (h *Hierarchy) Name(id string) string {
	if n, ok := h.nodes[id]; ok && n.category.Name != "" {
		return n.category.Name
	}
	return id
}

// IDBySlug resolves a slug.
func (h *Hierarchy) IDBySlug(slug string) (string, bool) {
	id, ok := h.bySlug[slug]
	return id, ok
}

// Resolve expands the given categories. Unknown ids are ignored.
func (h *Hierarchy) Resolve(ids ...string) Resolution {
	res := Resolution{
		All:           make(map[string]struct{}),
		Complementary: make(map[string]struct{}),
		Consumable:    make(map[string]struct{}),
	}

	for _, id := range ids {
		node, ok := h.nodes[id]
		if !ok {
			continue
		}

		h.walkUp(id, res.All)
		if node.category.ParentID != "" && h.Has(node.category.ParentID) {
			res.Complementary[node.category.ParentID] = struct{}{}
		}

		h.walkDown(id, res.All)
		if len(node.children) > 0 {
			res.Complementary[id] = struct{}{}
		}

		for _, slug := range h.pairs[node.category.Slug] {
			if pairID, ok := h.bySlug[slug]; ok && pairID != id {
				res.Consumable[pairID] = struct{}{}
			}
		}
	}

	return res
}

// walkUp adds up to depth ancestors of id. The visited set stops cycles.
func (h *Hierarchy) walkUp(id string, into map[string]struct{}) {
	visited := map[string]struct{}{id: {}}
	current := h.nodes[id]
	for level := 0; level < h.depth && current != nil; level++ {
		parentID := current.category.ParentID
		if parentID == "" {
			return
		}
		if _, seen := visited[parentID]; seen {
			return
		}
		parent, ok := h.nodes[parentID]
		if !ok {
			return
		}
		visited[parentID] = struct{}{}
		into[parentID] = struct{}{}
		current = parent
	}
}

// walkDown adds descendants of id up to depth levels, breadth first.
func (h *Hierarchy) walkDown(id string, into map[string]struct{}) {
	visited := map[string]struct{}{id: {}}
	frontier := []string{id}
	for level := 0; level < h.depth && len(frontier) > 0; level++ {
		var next []string
		for _, nodeID := range frontier {
			for _, child := range h.nodes[nodeID].children {
				if _, seen := visited[child]; seen {
					continue
				}
				visited[child] = struct{}{}
				into[child] = struct{}{}
				next = append(next, child)
			}
		}
		frontier = next
	}
}
