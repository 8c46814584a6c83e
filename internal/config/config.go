// Package config defines the global configuration structure for the firstlight
// service. Configuration is loaded once at process initialization and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup.
package config

import (
	"time"

	"firstlight/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the firstlight service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"firstlight"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Warmup   WarmupConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// UpstreamConfig holds upstream provider credentials, base URLs, and the
// retry posture shared by both provider clients.
type UpstreamConfig struct {
	OpenWeatherAPIKey  SecretString `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherBaseURL string       `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org" validate:"url"`
	OpenMeteoBaseURL   string       `envconfig:"OPENMETEO_BASE_URL" default:"https://api.open-meteo.com" validate:"url"`
	OpenMeteoAirURL    string       `envconfig:"OPENMETEO_AIR_URL" default:"https://air-quality-api.open-meteo.com" validate:"url"`

	RequestTimeout time.Duration `envconfig:"UPSTREAM_REQUEST_TIMEOUT" default:"8s"`
	MaxRetries     int           `envconfig:"UPSTREAM_MAX_RETRIES" default:"3"`
	RetryMinWait   time.Duration `envconfig:"UPSTREAM_RETRY_MIN_WAIT" default:"500ms"`
	RetryMaxWait   time.Duration `envconfig:"UPSTREAM_RETRY_MAX_WAIT" default:"10s"`
}

// CacheConfig holds TTL policy for the layered forecast cache. Endpoint
// TTLs mirror upstream refresh cadence; the negative TTL bounds how long
// a failure verdict suppresses re-fetching.
type CacheConfig struct {
	HourlyTTL     time.Duration `envconfig:"CACHE_HOURLY_TTL" default:"30m"`
	DailyTTL      time.Duration `envconfig:"CACHE_DAILY_TTL" default:"3h"`
	ForecastTTL   time.Duration `envconfig:"CACHE_FORECAST_TTL" default:"1h"`
	AirQualityTTL time.Duration `envconfig:"CACHE_AIR_QUALITY_TTL" default:"3h"`
	NegativeTTL   time.Duration `envconfig:"CACHE_NEGATIVE_TTL" default:"90s"`
	PredictionTTL time.Duration `envconfig:"CACHE_PREDICTION_TTL" default:"10m"`
}

// TTLFor returns the positive-entry TTL for an endpoint.
func (c CacheConfig) TTLFor(endpoint types.Endpoint) time.Duration {
	switch endpoint {
	case types.EndpointOWHourly:
		return c.HourlyTTL
	case types.EndpointOWDaily:
		return c.DailyTTL
	case types.EndpointOMForecast:
		return c.ForecastTTL
	case types.EndpointOMAirQuality:
		return c.AirQualityTTL
	default:
		return c.ForecastTTL
	}
}

// WarmupConfig holds the warmup scheduler switches. Trigger times are
// compiled defaults; the env switch exists so test deployments can run
// without a scheduler.
type WarmupConfig struct {
	Enabled bool `envconfig:"WARMUP_ENABLED" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
