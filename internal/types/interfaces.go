package types

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// ForecastProvider defines how we retrieve raw forecast documents from a
// single upstream weather source. Each provider owns its endpoint set and
// its cache TTLs; callers address documents by endpoint and grid cell.
type ForecastProvider interface {
	// Name returns the provider identifier used in attribution and logs.
	Name() ProviderName

	// Fetch retrieves the document for the given endpoint and coordinates,
	// going to the network. Implementations must not consult any cache.
	Fetch(ctx context.Context, endpoint Endpoint, lat, lon float64) (*ProviderDocument, error)
}

// Scorer computes a sunrise quality prediction from an observation set.
// Implementations must be pure: identical inputs yield identical outputs.
type Scorer interface {
	Score(obs *ObservationSet) *Prediction
}

// Scheduler registers functions to run at fixed times of day. Jobs carry a
// label for logging; registration happens once at startup.
type Scheduler interface {
	// Schedule arranges for fn to run at every trigger in specs. The label
	// of the matched spec is passed to fn on each firing.
	Schedule(specs []TriggerSpec, fn func(ctx context.Context, label string)) error

	// Start begins dispatching. It returns immediately.
	Start()

	// Stop halts dispatching and waits for running jobs to finish or ctx
	// to expire.
	Stop(ctx context.Context) error
}

// MetricsCollector records operational counters for the acquisition layer.
// A nil-safe no-op implementation is used when metrics are disabled.
type MetricsCollector interface {
	CacheHit(endpoint string, fresh bool)
	CacheMiss(endpoint string)
	NegativeCacheHit(endpoint string)
	UpstreamRequest(provider, endpoint, outcome string)
	StaleServed(endpoint string)
	ScoreComputed(verdict string)
	WarmupRun(trigger, outcome string)
}
