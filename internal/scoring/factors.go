package scoring

import (
	"fmt"
	"math"

	"firstlight/internal/types"
)

// Factor maxima. The seven maxima sum to 100 so the composite lands on a
// 0..100 scale before synergy and minor adjustments.
const (
	MaxCloudCanvas   = 25
	MaxAerosol       = 16
	MaxPressureTrend = 15
	MaxHumidity      = 14
	MaxVisibility    = 12
	MaxWind          = 10
	MaxPrecipitation = 8
)

// Neutral points awarded when a factor's input is absent. Missing data
// must neither sink nor inflate a score, so each neutral sits near the
// middle of its factor's range.
const (
	NeutralCloudCanvas   = 12
	NeutralAerosol       = 8
	NeutralPressureTrend = 8
	NeutralHumidity      = 9
	NeutralVisibility    = 8
	NeutralWind          = 7
	NeutralPrecipitation = 6
)

// scoreCloudCanvas rates the cloud structure. High cloud is the canvas
// that catches color from below the horizon; mid and low cloud block the
// light path, so they deduct from the base.
func scoreCloudCanvas(high, mid, low, total *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorCloudCanvas, Max: MaxCloudCanvas}

	if high == nil {
		if total == nil {
			fs.Points = NeutralCloudCanvas
			fs.Detail = "cloud structure unavailable"
			return fs
		}
		// Total-cover fallback: less precise, so the best band pays out
		// less than a confirmed high-cloud canvas.
		t := *total
		switch {
		case t >= 30 && t <= 60:
			fs.Points = 19
		case t >= 10 && t < 30:
			fs.Points = 14
		case t > 60 && t <= 85:
			fs.Points = 10
		case t < 10:
			fs.Points = 7
		default:
			fs.Points = 4
		}
		fs.Detail = fmt.Sprintf("total cover %.0f%% (no layer data)", t)
		return fs
	}

	h := *high
	base := 0
	switch {
	case h >= 25 && h <= 60:
		base = 25
	case h >= 10 && h < 25:
		base = 18
	case h > 60 && h <= 80:
		base = 17
	case h < 10:
		base = 10
	default:
		base = 8
	}

	m, l := 0.0, 0.0
	if mid != nil {
		m = *mid
	}
	if low != nil {
		l = *low
	}
	deduction := int(math.Round(m*0.10 + l*0.15))

	fs.Points = clamp(base-deduction, 0, MaxCloudCanvas)
	fs.Detail = fmt.Sprintf("high %.0f%%, mid %.0f%%, low %.0f%%", h, m, l)
	return fs
}

// scoreAerosol rates aerosol optical depth at 550nm. A moderate load
// scatters long wavelengths into vivid color; too little gives a sterile
// sky and too much mutes everything.
func scoreAerosol(aod *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorAerosol, Max: MaxAerosol}
	if aod == nil {
		fs.Points = NeutralAerosol
		fs.Detail = "aerosol data unavailable"
		return fs
	}

	a := *aod
	switch {
	case a >= 0.05 && a <= 0.20:
		fs.Points = 16
	case a >= 0.02 && a < 0.05:
		fs.Points = 13
	case a < 0.02:
		fs.Points = 10
	case a > 0.20 && a <= 0.40:
		fs.Points = 11
	case a > 0.40 && a <= 0.70:
		fs.Points = 6
	default:
		fs.Points = 2
	}
	fs.Detail = fmt.Sprintf("AOD550 %.2f", a)
	return fs
}

// scorePressureTrend rates the surface pressure change over the six
// hours ending at sunrise. A falling trend often marks an approaching or
// clearing front, which brings the broken structured cloud that lights
// up well.
func scorePressureTrend(delta *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorPressureTrend, Max: MaxPressureTrend}
	if delta == nil {
		fs.Points = NeutralPressureTrend
		fs.Detail = "pressure series unavailable"
		return fs
	}

	d := *delta
	switch {
	case d >= 4:
		fs.Points = 15
	case d >= 1:
		fs.Points = 13
	case d > -1:
		fs.Points = 8
	case d > -6:
		fs.Points = 11
	default:
		fs.Points = 3
	}
	fs.Detail = fmt.Sprintf("%+.1f hPa over 6h", d)
	return fs
}

// scoreHumidity rates relative humidity at the sunrise hour. Coastal
// dawns routinely run 75-92% without fog; only near-saturation reads as
// a fog risk.
func scoreHumidity(rh *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorHumidity, Max: MaxHumidity}
	if rh == nil {
		fs.Points = NeutralHumidity
		fs.Detail = "humidity unavailable"
		return fs
	}

	h := *rh
	switch {
	case h >= 25 && h <= 55:
		fs.Points = 14
	case h > 55 && h <= 75:
		fs.Points = 12
	case h > 75 && h <= 92:
		fs.Points = 10
	case h < 25:
		fs.Points = 7
	case h > 92 && h <= 97:
		fs.Points = 5
	default:
		fs.Points = 2
	}
	fs.Detail = fmt.Sprintf("RH %.0f%%", h)
	return fs
}

// scoreVisibility rates horizontal visibility in meters against bands
// expressed in kilometers.
func scoreVisibility(visM *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorVisibility, Max: MaxVisibility}
	if visM == nil {
		fs.Points = NeutralVisibility
		fs.Detail = "visibility unavailable"
		return fs
	}

	km := *visM / 1000
	switch {
	case km >= 30:
		fs.Points = 12
	case km >= 15:
		fs.Points = 10
	case km >= 8:
		fs.Points = 8
	case km >= 3:
		fs.Points = 4
	case km >= 1:
		fs.Points = 2
	default:
		fs.Points = 0
	}
	fs.Detail = fmt.Sprintf("visibility %.1f km", km)
	return fs
}

// scoreWind rates wind speed. A light breeze keeps haze stirred and water
// textured; calm air lets haze pool and strong wind ruins the foreground.
func scoreWind(kmh *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorWind, Max: MaxWind}
	if kmh == nil {
		fs.Points = NeutralWind
		fs.Detail = "wind unavailable"
		return fs
	}

	w := *kmh
	switch {
	case w >= 3 && w <= 12:
		fs.Points = 10
	case w > 12 && w <= 20:
		fs.Points = 8
	case w < 3:
		fs.Points = 7
	case w > 20 && w <= 35:
		fs.Points = 5
	default:
		fs.Points = 2
	}
	fs.Detail = fmt.Sprintf("wind %.0f km/h", w)
	return fs
}

// scorePrecipitation rates rain likelihood at the sunrise hour. Anything
// actively falling zeroes the factor outright.
func scorePrecipitation(active bool, probPct *float64) types.FactorScore {
	fs := types.FactorScore{Name: types.FactorPrecipitation, Max: MaxPrecipitation}
	if active {
		fs.Points = 0
		fs.Detail = "precipitation at sunrise"
		return fs
	}
	if probPct == nil {
		fs.Points = NeutralPrecipitation
		fs.Detail = "precipitation outlook unavailable"
		return fs
	}

	p := *probPct
	switch {
	case p <= 10:
		fs.Points = 8
	case p <= 30:
		fs.Points = 6
	case p <= 60:
		fs.Points = 3
	default:
		fs.Points = 1
	}
	fs.Detail = fmt.Sprintf("precip probability %.0f%%", p)
	return fs
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
