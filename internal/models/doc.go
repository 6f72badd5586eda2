// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
Package models defines the catalog and interaction records shared by the
stores, the recommendation engine and the HTTP layer.

Catalog records:

  - Product: a sellable part with category, brand, tags and vehicle fitment
  - Category: a node in the category tree (ParentID empty for roots)
  - Brand: a manufacturer brand with its country of origin
  - VehicleModel: a vehicle used as the join key for fitment overlap

Interaction records:

  - Event: an append-only view, add-to-cart or purchase record

API envelope:

  - APIResponse, APIError and Metadata wrap every HTTP response
*/
package models
