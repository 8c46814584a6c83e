package types

import "fmt"

// Validation constraint constants.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0
)

// ValidateCoordinates checks that a latitude/longitude pair is on the
// globe. Returns a typed AppError suitable for direct HTTP translation.
func ValidateCoordinates(lat, lon float64) error {
	if lat < MinLat || lat > MaxLat {
		return NewAppError(ErrCodeValidationInvalidLat,
			fmt.Sprintf("latitude %.4f outside valid range [%.0f, %.0f]", lat, MinLat, MaxLat), nil)
	}
	if lon < MinLon || lon > MaxLon {
		return NewAppError(ErrCodeValidationInvalidLon,
			fmt.Sprintf("longitude %.4f outside valid range [%.0f, %.0f]", lon, MinLon, MaxLon), nil)
	}
	return nil
}

// VariableMetadata defines the canonical rules for a forecast variable.
type VariableMetadata struct {
	ID          string     `json:"id"`
	Unit        string     `json:"unit"`
	Range       [2]float64 `json:"valid_range"`
	Description string     `json:"description"`
}

// StandardVariables defines the authoritative constraints for parsed
// upstream data. Provider parsers discard values outside these ranges
// rather than letting them reach the scorer.
var StandardVariables = map[string]VariableMetadata{
	"temperature_c":     {ID: "temperature_c", Unit: "celsius", Range: [2]float64{-60, 60}, Description: "Air temperature at 2m above ground level"},
	"precip_prob_pct":   {ID: "precip_prob_pct", Unit: "percent", Range: [2]float64{0, 100}, Description: "Probability of precipitation"},
	"precip_mm":         {ID: "precip_mm", Unit: "mm", Range: [2]float64{0, 500}, Description: "Accumulated precipitation"},
	"wind_speed_kmh":    {ID: "wind_speed_kmh", Unit: "kmh", Range: [2]float64{0, 300}, Description: "Wind speed at 10m above ground level"},
	"humidity_pct":      {ID: "humidity_pct", Unit: "percent", Range: [2]float64{0, 100}, Description: "Relative humidity"},
	"cloud_pct":         {ID: "cloud_pct", Unit: "percent", Range: [2]float64{0, 100}, Description: "Cloud cover percentage, any layer"},
	"pressure_hpa":      {ID: "pressure_hpa", Unit: "hpa", Range: [2]float64{800, 1100}, Description: "Surface air pressure"},
	"visibility_m":      {ID: "visibility_m", Unit: "m", Range: [2]float64{0, 100000}, Description: "Horizontal visibility"},
	"aod_550":           {ID: "aod_550", Unit: "dimensionless", Range: [2]float64{0, 10}, Description: "Aerosol optical depth at 550nm"},
	"pm2_5":             {ID: "pm2_5", Unit: "ugm3", Range: [2]float64{0, 1000}, Description: "Fine particulate matter concentration"},
}

// InRange reports whether a value passes the canonical range check for
// the named variable. Unknown variables fail closed.
func InRange(variable string, value float64) bool {
	meta, ok := StandardVariables[variable]
	if !ok {
		return false
	}
	return value >= meta.Range[0] && value <= meta.Range[1]
}

// ValidateTriggerSpecs checks a warmup trigger list for well-formed
// entries and duplicate labels.
func ValidateTriggerSpecs(specs []TriggerSpec) error {
	if len(specs) == 0 {
		return NewAppError(ErrCodeValidationInvalidTrigger, "at least one trigger is required", nil)
	}
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Label]; dup {
			return NewAppError(ErrCodeValidationInvalidTrigger,
				fmt.Sprintf("duplicate trigger label %q", s.Label), nil)
		}
		seen[s.Label] = struct{}{}
	}
	return nil
}
