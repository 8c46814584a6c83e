package types

import (
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func TestEndpointProvider(t *testing.T) {
	tests := []struct {
		endpoint Endpoint
		want     ProviderName
	}{
		{EndpointOWHourly, ProviderOpenWeather},
		{EndpointOWDaily, ProviderOpenWeather},
		{EndpointOMForecast, ProviderOpenMeteo},
		{EndpointOMAirQuality, ProviderOpenMeteo},
	}
	for _, tt := range tests {
		if got := tt.endpoint.Provider(); got != tt.want {
			t.Errorf("%s.Provider() = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestPressureDeltaHPa(t *testing.T) {
	base := time.Date(2025, 6, 14, 1, 0, 0, 0, time.UTC)

	t.Run("last minus first over the series", func(t *testing.T) {
		obs := &ObservationSet{
			PressureSeries: []PressurePoint{
				{Time: base, HPa: 1016.0},
				{Time: base.Add(2 * time.Hour), HPa: 1014.5},
				{Time: base.Add(5 * time.Hour), HPa: 1013.0},
			},
		}
		d := obs.PressureDeltaHPa()
		if d == nil {
			t.Fatal("expected a delta, got nil")
		}
		if *d != -3.0 {
			t.Errorf("delta = %v, want -3.0", *d)
		}
	})

	t.Run("nil with fewer than two samples", func(t *testing.T) {
		obs := &ObservationSet{
			PressureSeries: []PressurePoint{{Time: base, HPa: 1013.0}},
		}
		if obs.PressureDeltaHPa() != nil {
			t.Error("expected nil delta for single-sample series")
		}
		if (&ObservationSet{}).PressureDeltaHPa() != nil {
			t.Error("expected nil delta for empty series")
		}
	})
}

func TestPrecipActive(t *testing.T) {
	tests := []struct {
		name string
		mm   *float64
		want bool
	}{
		{"rain falling", fptr(0.4), true},
		{"trace zero", fptr(0.0), false},
		{"unknown", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &ObservationSet{PrecipMM: tt.mm}
			if got := obs.PrecipActive(); got != tt.want {
				t.Errorf("PrecipActive() = %v, want %v", got, tt.want)
			}
		})
	}
}
