package types

import "time"

// HourlyRecord is one normalized hour of forecast data. Fields are
// pointers because no single endpoint supplies all of them; absent
// fields stay nil and the scorer substitutes neutral defaults.
type HourlyRecord struct {
	Time          time.Time `json:"time"`
	CloudTotalPct *float64  `json:"cloud_total_pct,omitempty"`
	CloudLowPct   *float64  `json:"cloud_low_pct,omitempty"`
	CloudMidPct   *float64  `json:"cloud_mid_pct,omitempty"`
	CloudHighPct  *float64  `json:"cloud_high_pct,omitempty"`
	HumidityPct   *float64  `json:"humidity_pct,omitempty"`
	PressureHPa   *float64  `json:"pressure_hpa,omitempty"`
	VisibilityM   *float64  `json:"visibility_m,omitempty"`
	TemperatureC  *float64  `json:"temperature_c,omitempty"`
	WindSpeedKmh  *float64  `json:"wind_speed_kmh,omitempty"`
	WindGustKmh   *float64  `json:"wind_gust_kmh,omitempty"`
	PrecipProbPct *float64  `json:"precip_prob_pct,omitempty"`
	PrecipMM      *float64  `json:"precip_mm,omitempty"`
	CeilingM      *float64  `json:"ceiling_m,omitempty"`
	Description   *string   `json:"description,omitempty"`
}

// DailyRecord carries per-day astronomy data, primarily the sunrise
// instant the whole prediction is anchored to.
type DailyRecord struct {
	Date    time.Time `json:"date"`
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
}

// AirRecord is one hour of air quality data.
type AirRecord struct {
	Time   time.Time `json:"time"`
	AOD550 *float64  `json:"aod_550,omitempty"`
	PM25   *float64  `json:"pm2_5,omitempty"`
}

// ProviderDocument is the parsed result of one endpoint fetch. Exactly
// one of the record slices is populated, matching the endpoint kind.
// Documents are immutable once stored; cache readers share them.
type ProviderDocument struct {
	Provider  ProviderName   `json:"provider"`
	Endpoint  Endpoint       `json:"endpoint"`
	FetchedAt time.Time      `json:"fetched_at"`
	Hourly    []HourlyRecord `json:"hourly,omitempty"`
	Daily     []DailyRecord  `json:"daily,omitempty"`
	Air       []AirRecord    `json:"air,omitempty"`
}

// PressurePoint is one sample in the surface pressure lookback series.
type PressurePoint struct {
	Time time.Time `json:"time"`
	HPa  float64   `json:"hpa"`
}

// ObservationSet is the merged per-sunrise view the scorer consumes.
// One field selector builds it from up to four provider documents; any
// field can be nil when no source had usable data.
type ObservationSet struct {
	SunriseUTC   time.Time
	SunriseLocal time.Time

	CloudLowPct   *float64
	CloudMidPct   *float64
	CloudHighPct  *float64
	CloudTotalPct *float64

	HumidityPct *float64
	AOD550      *float64

	// PressureSeries spans the six hours ending at sunrise, oldest first.
	PressureSeries []PressurePoint

	VisibilityM   *float64
	TemperatureC  *float64
	WindSpeedKmh  *float64
	WindGustKmh   *float64
	PrecipProbPct *float64
	PrecipMM      *float64
	CeilingM      *float64

	// RecentRainMM sums precipitation over the hours preceding sunrise,
	// used for the washed-clean-air adjustment.
	RecentRainMM *float64

	Description *string
}

// PressureDeltaHPa returns last minus first sample of the pressure
// series, or nil when fewer than two samples exist.
func (o *ObservationSet) PressureDeltaHPa() *float64 {
	if len(o.PressureSeries) < 2 {
		return nil
	}
	d := o.PressureSeries[len(o.PressureSeries)-1].HPa - o.PressureSeries[0].HPa
	return &d
}

// PrecipActive reports whether measurable precipitation is forecast at
// the sunrise hour itself.
func (o *ObservationSet) PrecipActive() bool {
	return o.PrecipMM != nil && *o.PrecipMM > 0
}
