package scoring

import (
	"time"

	"firstlight/internal/types"
)

// Synergy bounds. Cross-factor interactions adjust the composite by at
// most four points either way.
const (
	synergyMin = -4
	synergyMax = 4
)

// synergy evaluates cross-factor interactions that the independent bands
// cannot see. Dense fog is a hard override: nothing rescues a sunrise you
// cannot see. The remaining rules sum and clamp.
func synergy(obs *types.ObservationSet, points map[types.FactorName]int) (int, []string) {
	if obs.VisibilityM != nil && *obs.VisibilityM < 1000 {
		return synergyMin, []string{"dense fog at sunrise"}
	}

	total := 0
	var notes []string

	if points[types.FactorCloudCanvas] >= 18 &&
		points[types.FactorAerosol] >= 14 &&
		points[types.FactorPressureTrend] >= 10 {
		total += 3
		notes = append(notes, "prime alignment of canvas and air clarity")
	}

	if obs.CloudTotalPct != nil && *obs.CloudTotalPct < 10 &&
		obs.HumidityPct != nil && *obs.HumidityPct < 30 {
		total -= 3
		notes = append(notes, "sterile sky, nothing to catch the light")
	}

	if obs.HumidityPct != nil && *obs.HumidityPct > 92 &&
		obs.AOD550 != nil && *obs.AOD550 > 0.30 {
		total -= 2
		notes = append(notes, "saturated air under heavy aerosol")
	}

	return clamp(total, synergyMin, synergyMax), notes
}

// minorAdjustments applies small bounded bonuses that sit outside the
// factor tables.
func minorAdjustments(obs *types.ObservationSet, sunriseLocal time.Time) (int, []string) {
	total := 0
	var notes []string

	// Rain in the lookback window with none falling now leaves washed,
	// particle-scrubbed air.
	if obs.RecentRainMM != nil && *obs.RecentRainMM > 0 && !obs.PrecipActive() {
		total += 2
		notes = append(notes, "air washed by recent rain")
	}

	switch sunriseLocal.Month() {
	case time.November, time.December, time.January, time.February:
		total += 2
		notes = append(notes, "low-sun season")
	case time.March, time.April, time.September, time.October:
		total++
		notes = append(notes, "shoulder season")
	}

	return total, notes
}
