// Package scoring turns a merged observation set into a sunrise quality
// prediction. The engine is pure: no clock, no I/O, no randomness, so
// identical observations always produce identical predictions.
package scoring

import (
	"firstlight/internal/types"
)

// Verdict and recommendation thresholds on the composite score.
// Half-open on the left edge of each band except the top, which is
// inclusive of 100.
var (
	verdictBands = []struct {
		min     int
		verdict types.Verdict
	}{
		{85, types.VerdictExceptional},
		{70, types.VerdictGreat},
		{50, types.VerdictGood},
		{30, types.VerdictFair},
		{0, types.VerdictPoor},
	}

	recommendationBands = []struct {
		min int
		rec types.Recommendation
	}{
		{85, types.RecommendationDropEverything},
		{65, types.RecommendationWorthTheTrip},
		{40, types.RecommendationWorthAGlance},
		{0, types.RecommendationSkip},
	}
)

// Engine implements types.Scorer.
type Engine struct{}

// NewEngine creates the scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes the prediction for one observation set. Factors are
// evaluated independently, then synergy and minor adjustments shift the
// sum, and the result clamps to [0, 100].
func (e *Engine) Score(obs *types.ObservationSet) *types.Prediction {
	factors := []types.FactorScore{
		scoreCloudCanvas(obs.CloudHighPct, obs.CloudMidPct, obs.CloudLowPct, obs.CloudTotalPct),
		scoreAerosol(obs.AOD550),
		scorePressureTrend(obs.PressureDeltaHPa()),
		scoreHumidity(obs.HumidityPct),
		scoreVisibility(obs.VisibilityM),
		scoreWind(obs.WindSpeedKmh),
		scorePrecipitation(obs.PrecipActive(), obs.PrecipProbPct),
	}

	sum := 0
	points := make(map[types.FactorName]int, len(factors))
	for _, f := range factors {
		sum += f.Points
		points[f.Name] = f.Points
	}

	syn, synNotes := synergy(obs, points)
	adj, adjNotes := minorAdjustments(obs, obs.SunriseLocal)

	composite := clamp(sum+syn+adj, 0, 100)

	return &types.Prediction{
		Score:           composite,
		Verdict:         verdictFor(composite),
		Recommendation:  recommendationFor(composite),
		Factors:         factors,
		Synergy:         syn,
		SynergyNotes:    synNotes,
		Adjustment:      adj,
		AdjustmentNotes: adjNotes,
	}
}

func verdictFor(score int) types.Verdict {
	for _, b := range verdictBands {
		if score >= b.min {
			return b.verdict
		}
	}
	return types.VerdictPoor
}

func recommendationFor(score int) types.Recommendation {
	for _, b := range recommendationBands {
		if score >= b.min {
			return b.rec
		}
	}
	return types.RecommendationSkip
}
