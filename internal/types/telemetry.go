package types

// Prometheus metric names and label keys.
// All components MUST use these constants.
const (
	// Metric Names
	MetricCacheHits        = "firstlight_cache_hits_total"
	MetricCacheMisses      = "firstlight_cache_misses_total"
	MetricNegativeHits     = "firstlight_negative_cache_hits_total"
	MetricUpstreamRequests = "firstlight_upstream_requests_total"
	MetricStaleServed      = "firstlight_stale_served_total"
	MetricScoresComputed   = "firstlight_scores_computed_total"
	MetricWarmupRuns       = "firstlight_warmup_runs_total"

	// Label Keys
	LabelEndpoint  = "endpoint"
	LabelProvider  = "provider"
	LabelOutcome   = "outcome"
	LabelFreshness = "freshness"
	LabelVerdict   = "verdict"
	LabelTrigger   = "trigger"
)
