package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firstlight/internal/types"
)

// fixedClock returns a preset instant, for asserting FetchedAt stamps.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newOWTestClient(serverURL string, clock types.Clock) *OpenWeatherClient {
	return NewOpenWeatherClient(
		&http.Client{Timeout: 5 * time.Second},
		OpenWeatherConfig{
			APIKey:  types.SecretString("test-key"),
			BaseURL: serverURL,
			Clock:   clock,
		},
		fastPolicy(0),
	)
}

func TestOpenWeatherFetchHourly(t *testing.T) {
	base := time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)
	fetchedAt := time.Date(2026, 6, 14, 17, 30, 0, 0, time.UTC)

	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"exclude": q.Get("exclude"),
			"units":   q.Get("units"),
			"appid":   q.Get("appid"),
			"lat":     q.Get("lat"),
			"lon":     q.Get("lon"),
		}
		fmt.Fprintf(w, `{
			"hourly": [
				{
					"dt": %d,
					"temp": 11.5,
					"pressure": 1016,
					"humidity": 48,
					"clouds": 40,
					"visibility": 10000,
					"wind_speed": 5.0,
					"wind_gust": 8.0,
					"pop": 0.35,
					"weather": [{"description": "scattered clouds"}]
				},
				{
					"dt": %d,
					"temp": 10.9,
					"pressure": 1017,
					"humidity": 52,
					"clouds": 55,
					"visibility": 9000,
					"wind_speed": 4.2,
					"pop": 0.6,
					"rain": {"1h": 0.4},
					"weather": [{"description": "light rain"}]
				}
			]
		}`, base.Unix(), base.Add(time.Hour).Unix())
	}))
	defer server.Close()

	client := newOWTestClient(server.URL, fixedClock{now: fetchedAt})

	doc, err := client.Fetch(context.Background(), types.EndpointOWHourly, -33.75, 151.25)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if gotQuery["exclude"] != "current,minutely,daily,alerts" {
		t.Errorf("unexpected exclude param: %q", gotQuery["exclude"])
	}
	if gotQuery["units"] != "metric" {
		t.Errorf("expected units=metric, got %q", gotQuery["units"])
	}
	if gotQuery["appid"] != "test-key" {
		t.Errorf("expected unmasked API key in query, got %q", gotQuery["appid"])
	}
	if gotQuery["lat"] != "-33.7500" || gotQuery["lon"] != "151.2500" {
		t.Errorf("unexpected coordinates: lat=%q lon=%q", gotQuery["lat"], gotQuery["lon"])
	}

	if doc.Provider != types.ProviderOpenWeather || doc.Endpoint != types.EndpointOWHourly {
		t.Errorf("unexpected document identity: %s/%s", doc.Provider, doc.Endpoint)
	}
	if !doc.FetchedAt.Equal(fetchedAt) {
		t.Errorf("expected FetchedAt %v, got %v", fetchedAt, doc.FetchedAt)
	}
	if len(doc.Hourly) != 2 {
		t.Fatalf("expected 2 hourly records, got %d", len(doc.Hourly))
	}

	first := doc.Hourly[0]
	if !first.Time.Equal(base) {
		t.Errorf("expected first record at %v, got %v", base, first.Time)
	}
	if first.WindSpeedKmh == nil || *first.WindSpeedKmh != 18.0 {
		t.Errorf("expected wind 5 m/s converted to 18 km/h, got %v", first.WindSpeedKmh)
	}
	if first.PrecipProbPct == nil || *first.PrecipProbPct != 35.0 {
		t.Errorf("expected pop 0.35 converted to 35%%, got %v", first.PrecipProbPct)
	}
	if first.PrecipMM != nil {
		t.Errorf("expected no precipitation amount on dry hour, got %v", *first.PrecipMM)
	}
	if first.Description == nil || *first.Description != "scattered clouds" {
		t.Errorf("unexpected description: %v", first.Description)
	}

	second := doc.Hourly[1]
	if second.PrecipMM == nil || *second.PrecipMM != 0.4 {
		t.Errorf("expected 0.4mm rain on second hour, got %v", second.PrecipMM)
	}
	if second.VisibilityM == nil || *second.VisibilityM != 9000 {
		t.Errorf("expected visibility 9000m, got %v", second.VisibilityM)
	}
}

func TestOpenWeatherFetchDaily(t *testing.T) {
	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	sunrise := time.Date(2026, 6, 14, 21, 0, 36, 0, time.UTC)
	sunset := time.Date(2026, 6, 15, 6, 53, 12, 0, time.UTC)

	var gotExclude string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotExclude = r.URL.Query().Get("exclude")
		fmt.Fprintf(w, `{
			"daily": [
				{"dt": %d, "sunrise": %d, "sunset": %d}
			]
		}`, day.Unix(), sunrise.Unix(), sunset.Unix())
	}))
	defer server.Close()

	client := newOWTestClient(server.URL, fixedClock{now: day})

	doc, err := client.Fetch(context.Background(), types.EndpointOWDaily, -33.75, 151.25)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if gotExclude != "current,minutely,hourly,alerts" {
		t.Errorf("unexpected exclude param: %q", gotExclude)
	}
	if len(doc.Daily) != 1 {
		t.Fatalf("expected 1 daily record, got %d", len(doc.Daily))
	}
	if !doc.Daily[0].Sunrise.Equal(sunrise) {
		t.Errorf("expected sunrise %v, got %v", sunrise, doc.Daily[0].Sunrise)
	}
	if !doc.Daily[0].Sunset.Equal(sunset) {
		t.Errorf("expected sunset %v, got %v", sunset, doc.Daily[0].Sunset)
	}
}

func TestOpenWeatherAuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer server.Close()

	client := newOWTestClient(server.URL, fixedClock{now: time.Now()})

	_, err := client.Fetch(context.Background(), types.EndpointOWHourly, -33.75, 151.25)
	if err == nil {
		t.Fatal("expected error for 401, got nil")
	}
	if code := types.CodeOf(err); code != types.ErrCodeUpstreamAuth {
		t.Errorf("expected %s, got %s", types.ErrCodeUpstreamAuth, code)
	}
	if Classify(err) != types.FailureFatal {
		t.Error("expected auth rejection to classify as fatal")
	}
}

func TestOpenWeatherEmptyHourlyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly": []}`))
	}))
	defer server.Close()

	client := newOWTestClient(server.URL, fixedClock{now: time.Now()})

	_, err := client.Fetch(context.Background(), types.EndpointOWHourly, -33.75, 151.25)
	if err == nil {
		t.Fatal("expected error for empty payload, got nil")
	}
	if code := types.CodeOf(err); code != types.ErrCodeUpstreamMalformed {
		t.Errorf("expected %s, got %s", types.ErrCodeUpstreamMalformed, code)
	}
}

func TestOpenWeatherOutOfRangeValuesDropped(t *testing.T) {
	base := time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"hourly": [
				{"dt": %d, "humidity": 250, "clouds": -5, "pressure": 1012}
			]
		}`, base.Unix())
	}))
	defer server.Close()

	client := newOWTestClient(server.URL, fixedClock{now: base})

	doc, err := client.Fetch(context.Background(), types.EndpointOWHourly, -33.75, 151.25)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	rec := doc.Hourly[0]
	if rec.HumidityPct != nil {
		t.Errorf("expected out-of-range humidity dropped, got %v", *rec.HumidityPct)
	}
	if rec.CloudTotalPct != nil {
		t.Errorf("expected negative cloud cover dropped, got %v", *rec.CloudTotalPct)
	}
	if rec.PressureHPa == nil || *rec.PressureHPa != 1012 {
		t.Errorf("expected valid pressure kept, got %v", rec.PressureHPa)
	}
}

func TestOpenWeatherRejectsForeignEndpoint(t *testing.T) {
	client := newOWTestClient("http://127.0.0.1:0", fixedClock{now: time.Now()})

	_, err := client.Fetch(context.Background(), types.EndpointOMForecast, -33.75, 151.25)
	if err == nil {
		t.Fatal("expected error for foreign endpoint, got nil")
	}
	if code := types.CodeOf(err); code != types.ErrCodeInternalUnexpected {
		t.Errorf("expected %s, got %s", types.ErrCodeInternalUnexpected, code)
	}
}
