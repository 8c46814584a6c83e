// Package metrics implements the MetricsCollector interface on a
// Prometheus registry. Every collector owns its registry so tests can
// build as many as they like without duplicate-registration panics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"firstlight/internal/types"
)

// Collector counts cache, upstream and scoring activity.
type Collector struct {
	registry *prometheus.Registry

	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	negativeHits     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	staleServed      *prometheus.CounterVec
	scoresComputed   *prometheus.CounterVec
	warmupRuns       *prometheus.CounterVec
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	c := &Collector{
		registry: registry,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricCacheHits,
			Help: "Cache hits by endpoint and freshness",
		}, []string{types.LabelEndpoint, types.LabelFreshness}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricCacheMisses,
			Help: "Cache misses that triggered an upstream fetch",
		}, []string{types.LabelEndpoint}),
		negativeHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricNegativeHits,
			Help: "Lookups answered inside an active failure window without a network attempt",
		}, []string{types.LabelEndpoint}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricUpstreamRequests,
			Help: "Upstream fetch attempts by provider, endpoint and outcome",
		}, []string{types.LabelProvider, types.LabelEndpoint, types.LabelOutcome}),
		staleServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricStaleServed,
			Help: "Responses served from expired cache entries after a fetch failure",
		}, []string{types.LabelEndpoint}),
		scoresComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricScoresComputed,
			Help: "Predictions computed by verdict",
		}, []string{types.LabelVerdict}),
		warmupRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: types.MetricWarmupRuns,
			Help: "Warmup sweeps by trigger label and outcome",
		}, []string{types.LabelTrigger, types.LabelOutcome}),
	}

	registry.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.negativeHits,
		c.upstreamRequests,
		c.staleServed,
		c.scoresComputed,
		c.warmupRuns,
	)
	return c
}

// Handler returns the scrape endpoint handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) CacheHit(endpoint string, fresh bool) {
	freshness := "fresh"
	if !fresh {
		freshness = "stale"
	}
	c.cacheHits.WithLabelValues(endpoint, freshness).Inc()
}

func (c *Collector) CacheMiss(endpoint string) {
	c.cacheMisses.WithLabelValues(endpoint).Inc()
}

func (c *Collector) NegativeCacheHit(endpoint string) {
	c.negativeHits.WithLabelValues(endpoint).Inc()
}

func (c *Collector) UpstreamRequest(provider, endpoint, outcome string) {
	c.upstreamRequests.WithLabelValues(provider, endpoint, outcome).Inc()
}

func (c *Collector) StaleServed(endpoint string) {
	c.staleServed.WithLabelValues(endpoint).Inc()
}

func (c *Collector) ScoreComputed(verdict string) {
	c.scoresComputed.WithLabelValues(verdict).Inc()
}

func (c *Collector) WarmupRun(trigger, outcome string) {
	c.warmupRuns.WithLabelValues(trigger, outcome).Inc()
}

// Noop discards all metrics. It stands in wherever a MetricsCollector is
// required but metrics are disabled.
type Noop struct{}

func (Noop) CacheHit(string, bool)                  {}
func (Noop) CacheMiss(string)                       {}
func (Noop) NegativeCacheHit(string)                {}
func (Noop) UpstreamRequest(string, string, string) {}
func (Noop) StaleServed(string)                     {}
func (Noop) ScoreComputed(string)                   {}
func (Noop) WarmupRun(string, string)               {}

var (
	_ types.MetricsCollector = (*Collector)(nil)
	_ types.MetricsCollector = Noop{}
)
