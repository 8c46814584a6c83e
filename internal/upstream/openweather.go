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

// Default OpenWeather One Call endpoint path. The hourly and daily
// surfaces are the same upstream route with different exclude sets, but
// they cache and expire independently.
const owOneCallPath = "/data/3.0/onecall"

// OpenWeatherConfig holds the settings for constructing an OpenWeatherClient.
type OpenWeatherConfig struct {
	APIKey  types.SecretString
	BaseURL string

	// Optional. Defaults to slog.Default() / the real UTC clock.
	Logger *slog.Logger
	Clock  types.Clock
}

// OpenWeatherClient fetches hourly conditions and daily astronomy data
// from the OpenWeather One Call API. It implements types.ForecastProvider.
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  *slog.Logger
	clock   types.Clock
}

// NewOpenWeatherClient creates an OpenWeatherClient with its own BaseClient.
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherConfig, retry RetryPolicy) *OpenWeatherClient {
	base := NewBaseClient(httpClient, "openweather", retry, "firstlight/1.0")
	return newOpenWeatherClient(base, cfg)
}

// NewOpenWeatherClientWithBase creates an OpenWeatherClient with a
// pre-configured BaseClient. This is useful for testing when you want to
// control the BaseClient configuration.
func NewOpenWeatherClientWithBase(base *BaseClient, cfg OpenWeatherConfig) *OpenWeatherClient {
	return newOpenWeatherClient(base, cfg)
}

func newOpenWeatherClient(base *BaseClient, cfg OpenWeatherConfig) *OpenWeatherClient {
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
		baseURL = "https://api.openweathermap.org"
	}
	return &OpenWeatherClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		logger:  logger,
		clock:   clock,
	}
}

// Name returns "openweather".
func (c *OpenWeatherClient) Name() types.ProviderName {
	return types.ProviderOpenWeather
}

// Fetch retrieves the document for one of the OpenWeather endpoints.
func (c *OpenWeatherClient) Fetch(ctx context.Context, endpoint types.Endpoint, lat, lon float64) (*types.ProviderDocument, error) {
	switch endpoint {
	case types.EndpointOWHourly:
		return c.fetchHourly(ctx, lat, lon)
	case types.EndpointOWDaily:
		return c.fetchDaily(ctx, lat, lon)
	default:
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("openweather does not serve endpoint %q", endpoint),
			nil,
		)
	}
}

// owOneCallResponse covers both exclude variants; the unused section
// stays empty.
type owOneCallResponse struct {
	Hourly []owHourlyEntry `json:"hourly"`
	Daily  []owDailyEntry  `json:"daily"`
}

type owHourlyEntry struct {
	Dt         int64     `json:"dt"`
	Temp       *float64  `json:"temp"`
	Pressure   *float64  `json:"pressure"`
	Humidity   *float64  `json:"humidity"`
	Clouds     *float64  `json:"clouds"`
	Visibility *float64  `json:"visibility"`
	WindSpeed  *float64  `json:"wind_speed"`
	WindGust   *float64  `json:"wind_gust"`
	Pop        *float64  `json:"pop"`
	Rain       *owPrecip `json:"rain"`
	Snow       *owPrecip `json:"snow"`
	Weather    []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type owPrecip struct {
	OneH float64 `json:"1h"`
}

type owDailyEntry struct {
	Dt      int64 `json:"dt"`
	Sunrise int64 `json:"sunrise"`
	Sunset  int64 `json:"sunset"`
}

func (c *OpenWeatherClient) fetchHourly(ctx context.Context, lat, lon float64) (*types.ProviderDocument, error) {
	payload, err := c.fetchOneCall(ctx, types.EndpointOWHourly, lat, lon, "current,minutely,daily,alerts")
	if err != nil {
		return nil, err
	}
	if len(payload.Hourly) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"openweather hourly payload contained no records",
			nil,
		)
	}

	records := make([]types.HourlyRecord, 0, len(payload.Hourly))
	for _, h := range payload.Hourly {
		rec := types.HourlyRecord{Time: time.Unix(h.Dt, 0).UTC()}
		rec.TemperatureC = checked("temperature_c", h.Temp)
		rec.PressureHPa = checked("pressure_hpa", h.Pressure)
		rec.HumidityPct = checked("humidity_pct", h.Humidity)
		rec.CloudTotalPct = checked("cloud_pct", h.Clouds)
		rec.VisibilityM = checked("visibility_m", h.Visibility)
		rec.WindSpeedKmh = kmhChecked(h.WindSpeed)
		rec.WindGustKmh = kmhChecked(h.WindGust)
		if h.Pop != nil {
			prob := *h.Pop * 100
			rec.PrecipProbPct = checked("precip_prob_pct", &prob)
		}
		rec.PrecipMM = precipSum(h.Rain, h.Snow)
		if len(h.Weather) > 0 && h.Weather[0].Description != "" {
			desc := h.Weather[0].Description
			rec.Description = &desc
		}
		records = append(records, rec)
	}

	return &types.ProviderDocument{
		Provider:  types.ProviderOpenWeather,
		Endpoint:  types.EndpointOWHourly,
		FetchedAt: c.clock.Now(),
		Hourly:    records,
	}, nil
}

func (c *OpenWeatherClient) fetchDaily(ctx context.Context, lat, lon float64) (*types.ProviderDocument, error) {
	payload, err := c.fetchOneCall(ctx, types.EndpointOWDaily, lat, lon, "current,minutely,hourly,alerts")
	if err != nil {
		return nil, err
	}
	if len(payload.Daily) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"openweather daily payload contained no records",
			nil,
		)
	}

	records := make([]types.DailyRecord, 0, len(payload.Daily))
	for _, d := range payload.Daily {
		if d.Sunrise == 0 {
			continue
		}
		records = append(records, types.DailyRecord{
			Date:    time.Unix(d.Dt, 0).UTC(),
			Sunrise: time.Unix(d.Sunrise, 0).UTC(),
			Sunset:  time.Unix(d.Sunset, 0).UTC(),
		})
	}
	if len(records) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"openweather daily payload contained no sunrise times",
			nil,
		)
	}

	return &types.ProviderDocument{
		Provider:  types.ProviderOpenWeather,
		Endpoint:  types.EndpointOWDaily,
		FetchedAt: c.clock.Now(),
		Daily:     records,
	}, nil
}

func (c *OpenWeatherClient) fetchOneCall(ctx context.Context, endpoint types.Endpoint, lat, lon float64, exclude string) (*owOneCallResponse, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%.4f", lat))
	values.Set("lon", fmt.Sprintf("%.4f", lon))
	values.Set("exclude", exclude)
	values.Set("units", "metric")
	values.Set("appid", c.apiKey.Unmask())

	u := fmt.Sprintf("%s%s?%s", c.baseURL, owOneCallPath, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create openweather request",
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
		return nil, statusError(types.ProviderOpenWeather, endpoint, resp)
	}

	var payload owOneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"failed to decode openweather response",
			err,
		)
	}
	return &payload, nil
}

// checked returns the value when it passes the canonical range check for
// the variable, nil otherwise. Out-of-range upstream values are treated
// as absent rather than poisoning the scorer.
func checked(variable string, v *float64) *float64 {
	if v == nil || !types.InRange(variable, *v) {
		return nil
	}
	out := *v
	return &out
}

// kmhChecked converts a metric-units wind speed (m/s) to km/h and range
// checks the result.
func kmhChecked(ms *float64) *float64 {
	if ms == nil {
		return nil
	}
	kmh := *ms * 3.6
	return checked("wind_speed_kmh", &kmh)
}

func precipSum(rain, snow *owPrecip) *float64 {
	if rain == nil && snow == nil {
		return nil
	}
	total := 0.0
	if rain != nil {
		total += rain.OneH
	}
	if snow != nil {
		total += snow.OneH
	}
	return checked("precip_mm", &total)
}
