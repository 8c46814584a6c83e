package upstream

import "testing"

func TestCellKey(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want string
	}{
		{"bondi", -33.8915, 151.2767, "-34.0:151.0"},
		{"origin", 0, 0, "0.0:0.0"},
		{"exact cell boundary", -34.0, 151.5, "-34.0:151.5"},
		{"negative rounds away from zero", -0.2, 0.3, "-0.5:0.0"},
		{"just below boundary", -33.5001, 151.4999, "-34.0:151.0"},
		{"just above boundary", -33.4999, 151.5001, "-33.5:151.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellKey(tt.lat, tt.lon); got != tt.want {
				t.Errorf("CellKey(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestCellKey_NearbyBeachesShareCell(t *testing.T) {
	// Bondi, Bronte and Maroubra all sit in the same half-degree cell, so
	// scoring any of them reuses one upstream fetch.
	bondi := CellKey(-33.8915, 151.2767)
	bronte := CellKey(-33.9036, 151.2684)
	maroubra := CellKey(-33.9500, 151.2567)

	if bondi != bronte || bronte != maroubra {
		t.Errorf("expected shared cell, got %q, %q, %q", bondi, bronte, maroubra)
	}
}

func TestCellCenter(t *testing.T) {
	lat, lon := CellCenter(-33.8915, 151.2767)
	if lat != -33.75 {
		t.Errorf("expected center latitude -33.75, got %v", lat)
	}
	if lon != 151.25 {
		t.Errorf("expected center longitude 151.25, got %v", lon)
	}

	// Every coordinate in a cell maps to the same center.
	lat2, lon2 := CellCenter(-33.9500, 151.2567)
	if lat != lat2 || lon != lon2 {
		t.Errorf("expected identical centers, got (%v,%v) and (%v,%v)", lat, lon, lat2, lon2)
	}
}
