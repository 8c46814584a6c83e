package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"firstlight/internal/types"
)

const (
	omForecastPath = "/v1/forecast"
	omAirPath      = "/v1/air-quality"

	omForecastVariables = "cloud_cover,cloud_cover_low,cloud_cover_mid,cloud_cover_high,relative_humidity_2m,surface_pressure,visibility,temperature_2m"
	omAirVariables      = "aerosol_optical_depth,pm2_5"
)

// OpenMeteoConfig holds the settings for constructing an OpenMeteoClient.
// The air quality API lives on a separate host from the forecast API.
type OpenMeteoConfig struct {
	BaseURL string
	AirURL  string

	// Optional. Defaults to slog.Default() / the real UTC clock.
	Logger *slog.Logger
	Clock  types.Clock
}

// OpenMeteoClient fetches cloud structure, humidity, pressure and aerosol
// data from the Open-Meteo APIs. It implements types.ForecastProvider.
// Open-Meteo requires no API key.
type OpenMeteoClient struct {
	base    *BaseClient
	baseURL string
	airURL  string
	logger  *slog.Logger
	clock   types.Clock
}

// NewOpenMeteoClient creates an OpenMeteoClient with its own BaseClient.
func NewOpenMeteoClient(httpClient *http.Client, cfg OpenMeteoConfig, retry RetryPolicy) *OpenMeteoClient {
	base := NewBaseClient(httpClient, "openmeteo", retry, "firstlight/1.0")
	return newOpenMeteoClient(base, cfg)
}

// NewOpenMeteoClientWithBase creates an OpenMeteoClient with a
// pre-configured BaseClient. This is useful for testing when you want to
// control the BaseClient configuration.
func NewOpenMeteoClientWithBase(base *BaseClient, cfg OpenMeteoConfig) *OpenMeteoClient {
	return newOpenMeteoClient(base, cfg)
}

func newOpenMeteoClient(base *BaseClient, cfg OpenMeteoConfig) *OpenMeteoClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	airURL := cfg.AirURL
	if airURL == "" {
		airURL = "https://air-quality-api.open-meteo.com"
	}
	return &OpenMeteoClient{
		base:    base,
		baseURL: baseURL,
		airURL:  airURL,
		logger:  logger,
		clock:   clock,
	}
}

// Name returns "openmeteo".
func (c *OpenMeteoClient) Name() types.ProviderName {
	return types.ProviderOpenMeteo
}

// Fetch retrieves the document for one of the Open-Meteo endpoints.
func (c *OpenMeteoClient) Fetch(ctx context.Context, endpoint types.Endpoint, lat, lon float64) (*types.ProviderDocument, error) {
	switch endpoint {
	case types.EndpointOMForecast:
		return c.fetchForecast(ctx, lat, lon)
	case types.EndpointOMAirQuality:
		return c.fetchAirQuality(ctx, lat, lon)
	default:
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("openmeteo does not serve endpoint %q", endpoint),
			nil,
		)
	}
}

// Open-Meteo returns hourly data as parallel arrays keyed by variable
// name, with null for individual missing values.
type omHourlyBlock struct {
	Time        []int64    `json:"time"`
	CloudCover  []*float64 `json:"cloud_cover"`
	CloudLow    []*float64 `json:"cloud_cover_low"`
	CloudMid    []*float64 `json:"cloud_cover_mid"`
	CloudHigh   []*float64 `json:"cloud_cover_high"`
	Humidity    []*float64 `json:"relative_humidity_2m"`
	Pressure    []*float64 `json:"surface_pressure"`
	Visibility  []*float64 `json:"visibility"`
	Temperature []*float64 `json:"temperature_2m"`
	AOD         []*float64 `json:"aerosol_optical_depth"`
	PM25        []*float64 `json:"pm2_5"`
}

type omResponse struct {
	Hourly omHourlyBlock `json:"hourly"`
}

func (c *OpenMeteoClient) fetchForecast(ctx context.Context, lat, lon float64) (*types.ProviderDocument, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%.4f", lat))
	values.Set("longitude", fmt.Sprintf("%.4f", lon))
	values.Set("hourly", omForecastVariables)
	values.Set("timezone", "UTC")
	values.Set("timeformat", "unixtime")
	// The pressure trend looks back six hours from sunrise, which can
	// reach into the past when scoring shortly before dawn.
	values.Set("past_days", "1")
	values.Set("forecast_days", "2")

	payload, err := c.get(ctx, types.EndpointOMForecast, c.baseURL+omForecastPath, values)
	if err != nil {
		return nil, err
	}

	hourly := payload.Hourly
	if len(hourly.Time) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"openmeteo forecast payload contained no records",
			nil,
		)
	}

	records := make([]types.HourlyRecord, 0, len(hourly.Time))
	for i, ts := range hourly.Time {
		rec := types.HourlyRecord{Time: time.Unix(ts, 0).UTC()}
		rec.CloudTotalPct = valueAt(hourly.CloudCover, i, "cloud_pct")
		rec.CloudLowPct = valueAt(hourly.CloudLow, i, "cloud_pct")
		rec.CloudMidPct = valueAt(hourly.CloudMid, i, "cloud_pct")
		rec.CloudHighPct = valueAt(hourly.CloudHigh, i, "cloud_pct")
		rec.HumidityPct = valueAt(hourly.Humidity, i, "humidity_pct")
		rec.PressureHPa = valueAt(hourly.Pressure, i, "pressure_hpa")
		rec.VisibilityM = valueAt(hourly.Visibility, i, "visibility_m")
		rec.TemperatureC = valueAt(hourly.Temperature, i, "temperature_c")
		records = append(records, rec)
	}

	return &types.ProviderDocument{
		Provider:  types.ProviderOpenMeteo,
		Endpoint:  types.EndpointOMForecast,
		FetchedAt: c.clock.Now(),
		Hourly:    records,
	}, nil
}

func (c *OpenMeteoClient) fetchAirQuality(ctx context.Context, lat, lon float64) (*types.ProviderDocument, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%.4f", lat))
	values.Set("longitude", fmt.Sprintf("%.4f", lon))
	values.Set("hourly", omAirVariables)
	values.Set("timezone", "UTC")
	values.Set("timeformat", "unixtime")

	payload, err := c.get(ctx, types.EndpointOMAirQuality, c.airURL+omAirPath, values)
	if err != nil {
		return nil, err
	}

	hourly := payload.Hourly
	if len(hourly.Time) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"openmeteo air quality payload contained no records",
			nil,
		)
	}

	records := make([]types.AirRecord, 0, len(hourly.Time))
	for i, ts := range hourly.Time {
		records = append(records, types.AirRecord{
			Time:   time.Unix(ts, 0).UTC(),
			AOD550: valueAt(hourly.AOD, i, "aod_550"),
			PM25:   valueAt(hourly.PM25, i, "pm2_5"),
		})
	}

	return &types.ProviderDocument{
		Provider:  types.ProviderOpenMeteo,
		Endpoint:  types.EndpointOMAirQuality,
		FetchedAt: c.clock.Now(),
		Air:       records,
	}, nil
}

func (c *OpenMeteoClient) get(ctx context.Context, endpoint types.Endpoint, rawURL string, values url.Values) (*omResponse, error) {
	u := fmt.Sprintf("%s?%s", rawURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create openmeteo request",
			err,
		)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(types.ProviderOpenMeteo, endpoint, resp)
	}

	var payload omResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"failed to decode openmeteo response",
			err,
		)
	}
	return &payload, nil
}

// valueAt reads the i-th element of a parallel-array column. Shorter
// columns, nulls and out-of-range values all read as absent.
func valueAt(vals []*float64, i int, variable string) *float64 {
	if i >= len(vals) || vals[i] == nil {
		return nil
	}
	return checked(variable, vals[i])
}
