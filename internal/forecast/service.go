// Package forecast implements the prediction pipeline: layered cache
// acquisition in front of the upstream providers, per-field source
// selection around the sunrise instant, and scoring of the merged
// observations for every catalog point.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"firstlight/internal/cache"
	"firstlight/internal/config"
	"firstlight/internal/metrics"
	"firstlight/internal/points"
	"firstlight/internal/types"
	"firstlight/internal/upstream"
)

// fetchConcurrency bounds concurrent upstream acquisitions, both for the
// per-request fan-out and for warmup sweeps.
const fetchConcurrency = 4

// Service coordinates acquisition, selection, and scoring. All upstream
// traffic funnels through its layered cache; callers only ever see a
// document, a stale document, or a typed error.
type Service struct {
	providers   map[types.ProviderName]types.ForecastProvider
	store       *cache.Store
	flight      *cache.FlightGroup
	predictions *cache.PredictionCache
	catalog     *points.Catalog
	scorer      types.Scorer
	collector   types.MetricsCollector
	ttls        config.CacheConfig
	logger      *slog.Logger
	clock       types.Clock
}

// NewService creates a Service with the provided dependencies. A nil
// collector disables metrics; nil logger and clock fall back to the
// process defaults.
func NewService(
	providers map[types.ProviderName]types.ForecastProvider,
	store *cache.Store,
	flight *cache.FlightGroup,
	predictions *cache.PredictionCache,
	catalog *points.Catalog,
	scorer types.Scorer,
	collector types.MetricsCollector,
	ttls config.CacheConfig,
	logger *slog.Logger,
	clock types.Clock,
) *Service {
	if collector == nil {
		collector = metrics.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Service{
		providers:   providers,
		store:       store,
		flight:      flight,
		predictions: predictions,
		catalog:     catalog,
		scorer:      scorer,
		collector:   collector,
		ttls:        ttls,
		logger:      logger,
		clock:       clock,
	}
}

// ListPoints returns the point catalog in stable ID order.
func (s *Service) ListPoints() []types.Point {
	return s.catalog.List()
}

// SweepCache drops cache payloads that have aged past the retention
// bound. Returns the number of entries removed.
func (s *Service) SweepCache() int {
	return s.store.Sweep()
}

// GetScore resolves a point and produces its prediction for the next
// sunrise. Recent predictions are served from the prediction cache.
//
// Acquisition is best effort per endpoint: enrichment failures (air
// quality, pressure lookback) degrade the affected factors to neutral
// with a warning. Only losing both hourly sources, or the sunrise
// times, is fatal.
func (s *Service) GetScore(ctx context.Context, pointID string) (*types.ScoreResult, error) {
	point, err := s.catalog.Get(pointID)
	if err != nil {
		return nil, err
	}

	if cached := s.predictions.Get(point.ID); cached != nil {
		return cached, nil
	}

	lat, lon := point.Location.Lat, point.Location.Lon

	// Fan out to all four endpoints. Failures are isolated per endpoint
	// so one dead source never voids the documents the others returned.
	var mu sync.Mutex
	docs := make(map[types.Endpoint]source)
	failures := make(map[types.Endpoint]error)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, endpoint := range types.AllEndpoints {
		endpoint := endpoint
		g.Go(func() error {
			doc, stale, aerr := s.acquire(gCtx, endpoint, lat, lon)
			mu.Lock()
			defer mu.Unlock()
			if aerr != nil {
				failures[endpoint] = aerr
				return nil
			}
			docs[endpoint] = source{doc: doc, stale: stale}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	daily, ok := docs[types.EndpointOWDaily]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNoDataAvailable,
			"sunrise times unavailable", failures[types.EndpointOWDaily])
	}
	sunriseUTC, ok := nextSunrise(daily.doc.Daily, now)
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNoDataAvailable,
			"daily forecast contains no upcoming sunrise", nil)
	}

	sunriseLocal := sunriseUTC
	if loc, lerr := time.LoadLocation(point.Timezone); lerr != nil {
		s.logger.WarnContext(ctx, "point timezone not loadable, using UTC",
			"point", point.ID,
			"tz", point.Timezone,
			"error", lerr,
		)
	} else {
		sunriseLocal = sunriseUTC.In(loc)
	}

	owHourly := docs[types.EndpointOWHourly]
	omForecast := docs[types.EndpointOMForecast]

	// A 200 payload that does not cover the sunrise hour counts the
	// same as no data. Either hourly source alone is enough to score.
	owUsable := owHourly.doc != nil && nearestHourly(owHourly.doc.Hourly, sunriseUTC) != nil
	omUsable := omForecast.doc != nil && nearestHourly(omForecast.doc.Hourly, sunriseUTC) != nil
	if !owUsable && !omUsable {
		cause := failures[types.EndpointOWHourly]
		if cause == nil {
			cause = failures[types.EndpointOMForecast]
		}
		return nil, types.NewAppError(types.ErrCodeNoDataAvailable,
			"no hourly forecast covers the sunrise hour", cause)
	}

	warnings := make([]string, 0, 4)
	for _, endpoint := range types.AllEndpoints {
		if _, failed := failures[endpoint]; failed {
			warnings = append(warnings, fmt.Sprintf("%s unavailable; affected factors default to neutral", endpoint))
		}
	}
	for _, endpoint := range types.AllEndpoints {
		src, held := docs[endpoint]
		if !held || !src.stale {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("%s data is stale (fetched %s ago)",
			endpoint, now.Sub(src.doc.FetchedAt).Round(time.Minute)))
	}

	obs, attribution, mergeWarnings := mergeObservations(
		sunriseUTC, sunriseLocal,
		owHourly, omForecast, docs[types.EndpointOMAirQuality],
	)
	warnings = append(warnings, mergeWarnings...)

	prediction := s.scorer.Score(obs)
	s.collector.ScoreComputed(string(prediction.Verdict))

	result := &types.ScoreResult{
		Point:        point,
		SunriseUTC:   sunriseUTC,
		SunriseLocal: sunriseLocal,
		Prediction:   prediction,
		Attribution:  attribution,
		Warnings:     warnings,
		ComputedAt:   now,
	}
	s.predictions.Put(point.ID, result)

	s.logger.InfoContext(ctx, "score computed",
		"point", point.ID,
		"sunrise_utc", sunriseUTC,
		"score", prediction.Score,
		"verdict", prediction.Verdict,
		"warnings", len(warnings),
	)
	return result, nil
}

// Warmup pre-fetches every endpoint for every distinct catalog grid
// cell so scheduled triggers land later requests on a hot cache. It is
// best effort: per-cell failures are logged and counted, never returned.
func (s *Service) Warmup(ctx context.Context, label string) *types.WarmupReport {
	start := s.clock.Now()

	cells := make(map[string]types.Location)
	for _, p := range s.catalog.List() {
		cells[upstream.CellKey(p.Location.Lat, p.Location.Lon)] = p.Location
	}

	var succeeded, failed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, loc := range cells {
		loc := loc
		for _, endpoint := range types.AllEndpoints {
			endpoint := endpoint
			g.Go(func() error {
				if _, _, err := s.acquire(gCtx, endpoint, loc.Lat, loc.Lon); err != nil {
					s.logger.WarnContext(gCtx, "warmup fetch failed",
						"label", label,
						"endpoint", endpoint,
						"error", err,
					)
					failed.Add(1)
					return nil
				}
				succeeded.Add(1)
				return nil
			})
		}
	}
	_ = g.Wait()

	outcome := "success"
	switch {
	case succeeded.Load() == 0 && failed.Load() > 0:
		outcome = "failure"
	case failed.Load() > 0:
		outcome = "partial"
	}
	s.collector.WarmupRun(label, outcome)

	report := &types.WarmupReport{
		Label:      label,
		StartedAt:  start,
		DurationMS: s.clock.Now().Sub(start).Milliseconds(),
		Cells:      len(cells),
		Succeeded:  int(succeeded.Load()),
		Failed:     int(failed.Load()),
	}
	s.logger.InfoContext(ctx, "warmup sweep complete",
		"label", label,
		"cells", report.Cells,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration_ms", report.DurationMS,
	)
	return report
}

// acquire serves one endpoint document for the grid cell containing the
// given coordinates, walking the cache layers in order: fresh hit,
// negative-window short circuit, deduplicated fetch, stale fallback.
// The boolean reports whether the document is past its freshness horizon.
func (s *Service) acquire(ctx context.Context, endpoint types.Endpoint, lat, lon float64) (*types.ProviderDocument, bool, error) {
	key := cache.Key{Endpoint: endpoint, Cell: upstream.CellKey(lat, lon)}

	snap := s.store.Lookup(key)
	switch snap.State {
	case types.EntryFresh:
		s.collector.CacheHit(string(endpoint), true)
		return snap.Document, false, nil

	case types.EntryFailedRecent:
		// Inside the negative window the upstream is not retried.
		s.collector.NegativeCacheHit(string(endpoint))
		if snap.HasPayload() {
			s.collector.CacheHit(string(endpoint), false)
			s.collector.StaleServed(string(endpoint))
			s.logger.WarnContext(ctx, "serving stale document inside failure window",
				"endpoint", endpoint,
				"cell", key.Cell,
				"age", s.clock.Now().Sub(snap.FetchedAt).Round(time.Second).String(),
			)
			return snap.Document, true, nil
		}
		return nil, false, types.NewAppError(types.ErrCodeNoDataAvailable,
			fmt.Sprintf("%s recently failed and nothing is cached for cell %s", endpoint, key.Cell),
			snap.LastErr)
	}

	s.collector.CacheMiss(string(endpoint))

	provider, ok := s.providers[endpoint.Provider()]
	if !ok {
		return nil, false, types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("no provider registered for %s", endpoint.Provider()), nil)
	}

	// Fetch at the cell center so every point in the cell shares the
	// same upstream coordinates, and record the outcome inside the
	// shared flight so concurrent callers agree on the cache state.
	cellLat, cellLon := upstream.CellCenter(lat, lon)
	doc, _, err := s.flight.Do(ctx, key, func(fctx context.Context) (*types.ProviderDocument, error) {
		fetched, ferr := provider.Fetch(fctx, endpoint, cellLat, cellLon)
		if ferr != nil {
			s.store.StoreFailure(key, ferr, s.ttls.NegativeTTL)
			s.collector.UpstreamRequest(string(endpoint.Provider()), string(endpoint), string(outcomeOf(ferr)))
			return nil, ferr
		}
		s.store.StoreSuccess(key, fetched, s.ttls.TTLFor(endpoint))
		s.collector.UpstreamRequest(string(endpoint.Provider()), string(endpoint), string(types.OutcomeSuccess))
		return fetched, nil
	})
	if err == nil {
		return doc, false, nil
	}
	if ctx.Err() != nil {
		// The caller gave up while waiting; the shared fetch carries on
		// for everyone else.
		return nil, false, err
	}

	// Fetch exhausted. An expired payload from an earlier success still
	// beats returning nothing.
	if snap.HasPayload() {
		s.collector.StaleServed(string(endpoint))
		s.logger.WarnContext(ctx, "upstream exhausted, serving stale document",
			"endpoint", endpoint,
			"cell", key.Cell,
			"age", s.clock.Now().Sub(snap.FetchedAt).Round(time.Second).String(),
			"error", err,
		)
		return snap.Document, true, nil
	}
	return nil, false, types.NewAppError(types.ErrCodeNoDataAvailable,
		fmt.Sprintf("%s fetch failed and nothing is cached for cell %s", endpoint, key.Cell), err)
}

func outcomeOf(err error) types.FetchOutcome {
	if upstream.Classify(err) == types.FailureFatal {
		return types.OutcomeFatal
	}
	return types.OutcomeRetryable
}
