package upstream

import (
	"fmt"
	"math"
)

// Grid cell dimensions in degrees. Half-degree cells keep nearby vantage
// points on the same upstream fetch: at Sydney's latitude a cell spans
// roughly 46 x 55 km, comfortably inside one forecast model grid box.
const (
	CellLatDeg = 0.5
	CellLonDeg = 0.5
)

// CellKey reduces a coordinate pair to its grid cell identifier. Points
// within the same cell produce identical keys and therefore share cache
// entries and in-flight fetches.
//
// The cell is the half-degree-aligned floor of the coordinates, rendered
// with one decimal so the key is stable across float formatting:
//
//	lat_cell = FLOOR(lat / 0.5) * 0.5
//	lon_cell = FLOOR(lon / 0.5) * 0.5
//	key      = "{lat_cell:.1f}:{lon_cell:.1f}"
func CellKey(lat, lon float64) string {
	latCell := math.Floor(lat/CellLatDeg) * CellLatDeg
	lonCell := math.Floor(lon/CellLonDeg) * CellLonDeg
	return fmt.Sprintf("%.1f:%.1f", latCell, lonCell)
}

// CellCenter returns the midpoint of the cell containing the coordinates.
// Upstream fetches use the center so every point in the cell receives the
// same payload regardless of which point triggered the fetch.
func CellCenter(lat, lon float64) (float64, float64) {
	latCell := math.Floor(lat/CellLatDeg) * CellLatDeg
	lonCell := math.Floor(lon/CellLonDeg) * CellLonDeg
	return latCell + CellLatDeg/2, lonCell + CellLonDeg/2
}
