package forecast

import (
	"sort"
	"time"

	"firstlight/internal/types"
)

const (
	// recordTolerance is the maximum distance between a document's
	// nearest record and the sunrise instant before the document is
	// treated as having no usable record for that sunrise.
	recordTolerance = 90 * time.Minute

	// pressureLookback is the span of the surface pressure series
	// ending at sunrise.
	pressureLookback = 6 * time.Hour

	// recentRainLookback is the window before sunrise over which prior
	// precipitation is summed for the washed-air adjustment.
	recentRainLookback = 24 * time.Hour
)

// source pairs one provider document with the staleness verdict the
// cache attached when it was served. A zero source means the document
// could not be acquired at all.
type source struct {
	doc   *types.ProviderDocument
	stale bool
}

// mergeObservations builds the observation set for one sunrise from up
// to three documents, applying a fixed per-field priority:
//
//	cloud total, humidity:            openmeteo, falling back to openweather
//	visibility, temperature:          openweather, falling back to openmeteo
//	cloud layers, pressure, aerosol:  openmeteo only
//	wind, precipitation, ceiling,
//	description, recent rain:         openweather only
//
// Every populated field gets an attribution entry naming its provider
// and the age of the backing document. Warnings describe fields a
// present document failed to supply; absent documents are the caller's
// story to tell.
func mergeObservations(
	sunriseUTC, sunriseLocal time.Time,
	owHourly, omForecast, omAir source,
) (*types.ObservationSet, []types.FieldAttribution, []string) {
	obs := &types.ObservationSet{
		SunriseUTC:   sunriseUTC,
		SunriseLocal: sunriseLocal,
	}
	var attribution []types.FieldAttribution
	var warnings []string

	attr := func(field types.Field, src source) {
		attribution = append(attribution, types.FieldAttribution{
			Field:     field,
			Provider:  src.doc.Provider,
			FetchedAt: src.doc.FetchedAt,
			Stale:     src.stale,
		})
	}

	var owRec *types.HourlyRecord
	if owHourly.doc != nil {
		owRec = nearestHourly(owHourly.doc.Hourly, sunriseUTC)
		if owRec == nil {
			warnings = append(warnings, "openweather hourly data does not cover the sunrise hour")
		}
	}
	var omRec *types.HourlyRecord
	if omForecast.doc != nil {
		omRec = nearestHourly(omForecast.doc.Hourly, sunriseUTC)
		if omRec == nil {
			warnings = append(warnings, "openmeteo forecast does not cover the sunrise hour")
		}
	}

	// Layered cloud structure only exists on the openmeteo side.
	if omRec != nil && (omRec.CloudLowPct != nil || omRec.CloudMidPct != nil || omRec.CloudHighPct != nil) {
		obs.CloudLowPct = omRec.CloudLowPct
		obs.CloudMidPct = omRec.CloudMidPct
		obs.CloudHighPct = omRec.CloudHighPct
		attr(types.FieldCloudLayers, omForecast)
	}

	switch {
	case omRec != nil && omRec.CloudTotalPct != nil:
		obs.CloudTotalPct = omRec.CloudTotalPct
		attr(types.FieldCloudTotal, omForecast)
	case owRec != nil && owRec.CloudTotalPct != nil:
		obs.CloudTotalPct = owRec.CloudTotalPct
		attr(types.FieldCloudTotal, owHourly)
	}

	switch {
	case omRec != nil && omRec.HumidityPct != nil:
		obs.HumidityPct = omRec.HumidityPct
		attr(types.FieldHumidity, omForecast)
	case owRec != nil && owRec.HumidityPct != nil:
		obs.HumidityPct = owRec.HumidityPct
		attr(types.FieldHumidity, owHourly)
	}

	switch {
	case owRec != nil && owRec.VisibilityM != nil:
		obs.VisibilityM = owRec.VisibilityM
		attr(types.FieldVisibility, owHourly)
	case omRec != nil && omRec.VisibilityM != nil:
		obs.VisibilityM = omRec.VisibilityM
		attr(types.FieldVisibility, omForecast)
	}

	switch {
	case owRec != nil && owRec.TemperatureC != nil:
		obs.TemperatureC = owRec.TemperatureC
		attr(types.FieldTemperature, owHourly)
	case omRec != nil && omRec.TemperatureC != nil:
		obs.TemperatureC = omRec.TemperatureC
		attr(types.FieldTemperature, omForecast)
	}

	if owRec != nil && owRec.WindSpeedKmh != nil {
		obs.WindSpeedKmh = owRec.WindSpeedKmh
		obs.WindGustKmh = owRec.WindGustKmh
		attr(types.FieldWind, owHourly)
	}

	if owRec != nil && (owRec.PrecipProbPct != nil || owRec.PrecipMM != nil) {
		obs.PrecipProbPct = owRec.PrecipProbPct
		obs.PrecipMM = owRec.PrecipMM
		attr(types.FieldPrecipitation, owHourly)
	}

	if owRec != nil && owRec.CeilingM != nil {
		obs.CeilingM = owRec.CeilingM
		attr(types.FieldCeiling, owHourly)
	}

	if owRec != nil && owRec.Description != nil {
		obs.Description = owRec.Description
		attr(types.FieldDescription, owHourly)
	}

	// The pressure trend reads the whole lookback window, not just the
	// sunrise-hour record.
	if omForecast.doc != nil {
		obs.PressureSeries = pressureSeries(omForecast.doc.Hourly, sunriseUTC)
		if len(obs.PressureSeries) >= 2 {
			attr(types.FieldPressure, omForecast)
		} else {
			warnings = append(warnings, "pressure series too short for a trend")
		}
	}

	if omAir.doc != nil {
		air := nearestAir(omAir.doc.Air, sunriseUTC)
		if air != nil && air.AOD550 != nil {
			obs.AOD550 = air.AOD550
			attr(types.FieldAerosol, omAir)
		} else {
			warnings = append(warnings, "air quality data does not cover the sunrise hour")
		}
	}

	if owHourly.doc != nil {
		obs.RecentRainMM = recentRain(owHourly.doc.Hourly, sunriseUTC)
	}

	return obs, attribution, warnings
}

// nextSunrise returns the earliest sunrise strictly after now, and
// whether one exists in the records at all.
func nextSunrise(records []types.DailyRecord, now time.Time) (time.Time, bool) {
	var best time.Time
	for _, rec := range records {
		if !rec.Sunrise.After(now) {
			continue
		}
		if best.IsZero() || rec.Sunrise.Before(best) {
			best = rec.Sunrise
		}
	}
	return best, !best.IsZero()
}

// nearestHourly returns the record closest to target, or nil when the
// closest one is further away than recordTolerance.
func nearestHourly(records []types.HourlyRecord, target time.Time) *types.HourlyRecord {
	var best *types.HourlyRecord
	var bestGap time.Duration
	for i := range records {
		gap := absDuration(records[i].Time.Sub(target))
		if gap > recordTolerance {
			continue
		}
		if best == nil || gap < bestGap {
			best = &records[i]
			bestGap = gap
		}
	}
	return best
}

// nearestAir is nearestHourly for air quality records.
func nearestAir(records []types.AirRecord, target time.Time) *types.AirRecord {
	var best *types.AirRecord
	var bestGap time.Duration
	for i := range records {
		gap := absDuration(records[i].Time.Sub(target))
		if gap > recordTolerance {
			continue
		}
		if best == nil || gap < bestGap {
			best = &records[i]
			bestGap = gap
		}
	}
	return best
}

// pressureSeries extracts the pressure samples inside the lookback
// window ending at sunrise, ordered oldest first.
func pressureSeries(records []types.HourlyRecord, sunrise time.Time) []types.PressurePoint {
	windowStart := sunrise.Add(-pressureLookback)

	var series []types.PressurePoint
	for i := range records {
		if records[i].PressureHPa == nil {
			continue
		}
		t := records[i].Time
		if t.Before(windowStart) || t.After(sunrise) {
			continue
		}
		series = append(series, types.PressurePoint{Time: t, HPa: *records[i].PressureHPa})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series
}

// recentRain sums forecast precipitation over the window before sunrise,
// excluding the sunrise hour itself. Returns nil when no record falls
// inside the window at all.
func recentRain(records []types.HourlyRecord, sunrise time.Time) *float64 {
	windowStart := sunrise.Add(-recentRainLookback)

	var sum float64
	covered := false
	for i := range records {
		t := records[i].Time
		if t.Before(windowStart) || !t.Before(sunrise) {
			continue
		}
		covered = true
		if records[i].PrecipMM != nil {
			sum += *records[i].PrecipMM
		}
	}
	if !covered {
		return nil
	}
	return &sum
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
