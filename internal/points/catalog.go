// Package points holds the compiled-in catalog of sunrise vantage
// points. The catalog is deliberately static: each point is a curated
// east-facing spot with verified coordinates, not user input.
package points

import (
	"fmt"
	"sort"

	"firstlight/internal/types"
)

const sydneyTZ = "Australia/Sydney"

// catalog lists the Sydney east-facing beaches the service predicts for.
// Coordinates are the sand, not the suburb centroid; most share one
// half-degree forecast cell, so their upstream fetches coalesce.
var catalog = []types.Point{
	{
		ID:       "bondi",
		Name:     "Bondi Beach",
		Location: types.Location{Lat: -33.8915, Lon: 151.2767, DisplayName: "Bondi Beach, north end"},
		Timezone: sydneyTZ,
		Region:   "eastern-beaches",
	},
	{
		ID:       "tamarama",
		Name:     "Tamarama Beach",
		Location: types.Location{Lat: -33.8980, Lon: 151.2702, DisplayName: "Tamarama Beach"},
		Timezone: sydneyTZ,
		Region:   "eastern-beaches",
	},
	{
		ID:       "bronte",
		Name:     "Bronte Beach",
		Location: types.Location{Lat: -33.9036, Lon: 151.2684, DisplayName: "Bronte Beach"},
		Timezone: sydneyTZ,
		Region:   "eastern-beaches",
	},
	{
		ID:       "clovelly",
		Name:     "Clovelly Beach",
		Location: types.Location{Lat: -33.9122, Lon: 151.2687, DisplayName: "Clovelly Bay"},
		Timezone: sydneyTZ,
		Region:   "eastern-beaches",
	},
	{
		ID:       "coogee",
		Name:     "Coogee Beach",
		Location: types.Location{Lat: -33.9205, Lon: 151.2566, DisplayName: "Coogee Beach"},
		Timezone: sydneyTZ,
		Region:   "eastern-beaches",
	},
	{
		ID:       "maroubra",
		Name:     "Maroubra Beach",
		Location: types.Location{Lat: -33.9500, Lon: 151.2567, DisplayName: "Maroubra Beach"},
		Timezone: sydneyTZ,
		Region:   "eastern-beaches",
	},
	{
		ID:       "manly",
		Name:     "Manly Beach",
		Location: types.Location{Lat: -33.7971, Lon: 151.2878, DisplayName: "Manly Ocean Beach"},
		Timezone: sydneyTZ,
		Region:   "northern-beaches",
	},
	{
		ID:       "curl-curl",
		Name:     "Curl Curl Beach",
		Location: types.Location{Lat: -33.7680, Lon: 151.2956, DisplayName: "North Curl Curl"},
		Timezone: sydneyTZ,
		Region:   "northern-beaches",
	},
	{
		ID:       "palm-beach",
		Name:     "Palm Beach",
		Location: types.Location{Lat: -33.5983, Lon: 151.3237, DisplayName: "Palm Beach, Barrenjoey end"},
		Timezone: sydneyTZ,
		Region:   "northern-beaches",
	},
	{
		ID:       "cronulla",
		Name:     "Cronulla Beach",
		Location: types.Location{Lat: -34.0510, Lon: 151.1532, DisplayName: "North Cronulla"},
		Timezone: sydneyTZ,
		Region:   "sutherland",
	},
}

// Catalog resolves point IDs and lists the known points.
type Catalog struct {
	byID    map[string]types.Point
	ordered []types.Point
}

// NewCatalog builds the catalog from the compiled-in point set.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:    make(map[string]types.Point, len(catalog)),
		ordered: make([]types.Point, len(catalog)),
	}
	copy(c.ordered, catalog)
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })
	for _, p := range c.ordered {
		c.byID[p.ID] = p
	}
	return c
}

// List returns all points ordered by ID. The slice is a copy; callers
// may not mutate the catalog.
func (c *Catalog) List() []types.Point {
	out := make([]types.Point, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Get resolves a point by ID.
func (c *Catalog) Get(id string) (types.Point, error) {
	p, ok := c.byID[id]
	if !ok {
		return types.Point{}, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundPoint,
			fmt.Sprintf("unknown point %q", id),
			nil,
			map[string]any{"point_id": id},
		)
	}
	return p, nil
}

// Len reports the catalog size.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
