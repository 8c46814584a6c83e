package types

// ProviderName identifies an upstream weather data source.
type ProviderName string

const (
	ProviderOpenWeather ProviderName = "openweather"
	ProviderOpenMeteo   ProviderName = "openmeteo"
)

// Endpoint identifies a distinct upstream API surface. Cache entries,
// in-flight deduplication, and TTL policy are all keyed per endpoint.
type Endpoint string

const (
	EndpointOWHourly     Endpoint = "openweather_hourly"
	EndpointOWDaily      Endpoint = "openweather_daily"
	EndpointOMForecast   Endpoint = "openmeteo_forecast"
	EndpointOMAirQuality Endpoint = "openmeteo_air_quality"
)

// Provider returns the upstream source that serves this endpoint.
func (e Endpoint) Provider() ProviderName {
	switch e {
	case EndpointOWHourly, EndpointOWDaily:
		return ProviderOpenWeather
	default:
		return ProviderOpenMeteo
	}
}

// AllEndpoints lists every upstream endpoint the acquisition layer manages.
// Warmup and metrics iterate this set.
var AllEndpoints = []Endpoint{
	EndpointOWHourly,
	EndpointOWDaily,
	EndpointOMForecast,
	EndpointOMAirQuality,
}

// EntryState describes the lifecycle position of a cache entry at read time.
type EntryState string

const (
	EntryEmpty        EntryState = "empty"
	EntryFresh        EntryState = "fresh"
	EntryStale        EntryState = "stale"
	EntryFailedRecent EntryState = "failed_recent"
)

// FailureClass categorizes an upstream fetch failure for retry policy.
type FailureClass string

const (
	// FailureRetryable covers timeouts, connection errors, 5xx responses,
	// and 429 rate limiting. Retries with backoff are permitted.
	FailureRetryable FailureClass = "retryable"

	// FailureFatal covers authentication rejections (401/403) and other
	// conditions a retry cannot cure. The attempt sequence aborts.
	FailureFatal FailureClass = "fatal"
)

// Verdict is the qualitative rating band for a sunrise quality score.
type Verdict string

const (
	VerdictPoor        Verdict = "poor"
	VerdictFair        Verdict = "fair"
	VerdictGood        Verdict = "good"
	VerdictGreat       Verdict = "great"
	VerdictExceptional Verdict = "exceptional"
)

// Recommendation tells the reader what to do about a predicted sunrise.
type Recommendation string

const (
	RecommendationSkip           Recommendation = "skip"
	RecommendationWorthAGlance   Recommendation = "worth_a_glance"
	RecommendationWorthTheTrip   Recommendation = "worth_the_trip"
	RecommendationDropEverything Recommendation = "drop_everything"
)

// Field names a forecast variable for source attribution. Every scored
// observation records which provider supplied each field.
type Field string

const (
	FieldCloudLayers   Field = "cloud_layers"
	FieldCloudTotal    Field = "cloud_total"
	FieldHumidity      Field = "humidity"
	FieldPressure      Field = "pressure"
	FieldAerosol       Field = "aerosol_optical_depth"
	FieldVisibility    Field = "visibility"
	FieldTemperature   Field = "temperature"
	FieldWind          Field = "wind"
	FieldPrecipitation Field = "precipitation"
	FieldCeiling       Field = "ceiling"
	FieldDescription   Field = "description"
	FieldSunrise       Field = "sunrise"
)

// FactorName identifies one of the scored sunrise quality factors.
type FactorName string

const (
	FactorCloudCanvas   FactorName = "cloud_canvas"
	FactorAerosol       FactorName = "aerosol"
	FactorPressureTrend FactorName = "pressure_trend"
	FactorHumidity      FactorName = "humidity"
	FactorVisibility    FactorName = "visibility"
	FactorWind          FactorName = "wind"
	FactorPrecipitation FactorName = "precipitation"
)

// FetchOutcome labels the result of an upstream request for metrics.
type FetchOutcome string

const (
	OutcomeSuccess   FetchOutcome = "success"
	OutcomeRetryable FetchOutcome = "retryable_failure"
	OutcomeFatal     FetchOutcome = "fatal_failure"
)
