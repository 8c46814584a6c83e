package types

import (
	"fmt"
	"time"
)

// Location represents a geographic coordinate with an optional display name.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Point is a fixed sunrise vantage point the service predicts for. The
// catalog is compiled in; points are addressed by ID in API routes.
type Point struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Timezone string   `json:"timezone"`

	// Region groups nearby points for display. Points in the same region
	// typically share a forecast grid cell.
	Region string `json:"region,omitempty"`
}

// TriggerSpec names one daily firing time for the warmup scheduler.
// Times are wall-clock in the given zone (UTC when TZ is empty) and are
// aligned with upstream model publication cadence.
type TriggerSpec struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	TZ     string `json:"tz,omitempty"`
	Label  string `json:"label"`
}

// Validate rejects firing times outside the day, empty labels and
// unknown zone names.
func (t TriggerSpec) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return NewAppError(ErrCodeValidationInvalidTrigger,
			fmt.Sprintf("trigger hour %d out of range [0,23]", t.Hour), nil)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return NewAppError(ErrCodeValidationInvalidTrigger,
			fmt.Sprintf("trigger minute %d out of range [0,59]", t.Minute), nil)
	}
	if t.Label == "" {
		return NewAppError(ErrCodeValidationInvalidTrigger, "trigger label must not be empty", nil)
	}
	if t.TZ != "" {
		if _, err := time.LoadLocation(t.TZ); err != nil {
			return NewAppError(ErrCodeValidationInvalidTrigger,
				fmt.Sprintf("trigger zone %q is not a valid IANA name", t.TZ), err)
		}
	}
	return nil
}

// String renders the trigger as "HH:MM[ TZ] label" for logs.
func (t TriggerSpec) String() string {
	if t.TZ != "" {
		return fmt.Sprintf("%02d:%02d %s %s", t.Hour, t.Minute, t.TZ, t.Label)
	}
	return fmt.Sprintf("%02d:%02d %s", t.Hour, t.Minute, t.Label)
}

// FactorScore is the contribution of one scored factor to the composite.
type FactorScore struct {
	Name   FactorName `json:"name"`
	Points int        `json:"points"`
	Max    int        `json:"max"`
	Detail string     `json:"detail,omitempty"`
}

// Prediction is the output of the scoring engine for one observation set.
// It is a pure function of the inputs; identical observations always
// produce an identical Prediction.
type Prediction struct {
	Score           int            `json:"score"`
	Verdict         Verdict        `json:"verdict"`
	Recommendation  Recommendation `json:"recommendation"`
	Factors         []FactorScore  `json:"factors"`
	Synergy         int            `json:"synergy"`
	SynergyNotes    []string       `json:"synergy_notes,omitempty"`
	Adjustment      int            `json:"adjustment"`
	AdjustmentNotes []string       `json:"adjustment_notes,omitempty"`
}

// FieldAttribution records which provider supplied one forecast field and
// how old the backing document was when the score was computed.
type FieldAttribution struct {
	Field     Field        `json:"field"`
	Provider  ProviderName `json:"provider"`
	FetchedAt time.Time    `json:"fetched_at"`
	Stale     bool         `json:"stale,omitempty"`
}

// ScoreResult is the full response for a point score request: the
// prediction itself plus targeting, attribution, and data age warnings.
type ScoreResult struct {
	Point        Point              `json:"point"`
	SunriseUTC   time.Time          `json:"sunrise_utc"`
	SunriseLocal time.Time          `json:"sunrise_local"`
	Prediction   *Prediction        `json:"prediction"`
	Attribution  []FieldAttribution `json:"attribution,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	ComputedAt   time.Time          `json:"computed_at"`
}

// WarmupReport summarizes one warmup sweep across the point catalog.
type WarmupReport struct {
	Label      string    `json:"label"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Cells      int       `json:"cells"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}
