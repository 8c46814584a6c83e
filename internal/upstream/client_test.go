package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"firstlight/internal/types"

	"github.com/sony/gobreaker/v2"
)

// noopSleep is a sleep function that does nothing, for fast tests.
func noopSleep(time.Duration) {}

// newTestClient creates a BaseClient pointed at the given test server with
// fast retries and no real sleep.
func newTestClient(t *testing.T, policy RetryPolicy) *BaseClient {
	t.Helper()
	return NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"test-breaker",
		policy,
		"firstlight-test/1.0",
		WithSleepFunc(noopSleep),
	)
}

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		MinWait:    time.Millisecond,
		MaxWait:    10 * time.Millisecond,
	}
}

func TestDo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"hourly":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, DefaultRetryPolicy())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestDo_InjectsTraceIDAndUserAgent(t *testing.T) {
	var traceID, userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = r.Header.Get("X-B3-TraceId")
		userAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, DefaultRetryPolicy())

	ctx := types.WithRequestID(context.Background(), "req-sunrise-42")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/forecast", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	resp.Body.Close()

	if traceID != "req-sunrise-42" {
		t.Errorf("expected trace ID 'req-sunrise-42', got %q", traceID)
	}
	if userAgent != "firstlight-test/1.0" {
		t.Errorf("expected User-Agent 'firstlight-test/1.0', got %q", userAgent)
	}
}

func TestDo_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var callCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, fastPolicy(3))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected success after retries, got error: %v", err)
	}
	resp.Body.Close()

	if calls := callCount.Load(); calls != 3 {
		t.Errorf("expected 3 calls (2 failures + 1 success), got %d", calls)
	}
}

func TestDo_ExhaustedRetriesReturnsUpstreamUnavailable(t *testing.T) {
	var callCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, fastPolicy(2))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	resp, err := client.Do(req)
	if resp != nil {
		t.Error("expected nil response on exhausted retries")
	}
	if err == nil {
		t.Fatal("expected error on exhausted retries, got nil")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T: %v", err, err)
	}
	if appErr.Code != types.ErrCodeUpstreamUnavailable {
		t.Errorf("expected error code %s, got %s", types.ErrCodeUpstreamUnavailable, appErr.Code)
	}

	if calls := callCount.Load(); calls != 3 {
		t.Errorf("expected 3 total attempts (1 + 2 retries), got %d", calls)
	}
}

func TestDo_ExhaustedRetriesOn429ReturnsRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, fastPolicy(1))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("expected error on exhausted 429 retries, got nil")
	}

	if code := types.CodeOf(err); code != types.ErrCodeUpstreamRateLimited {
		t.Errorf("expected error code %s, got %s", types.ErrCodeUpstreamRateLimited, code)
	}
}

func TestDo_4xxReturnedWithoutRetry(t *testing.T) {
	var callCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, fastPolicy(3))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected no error for 404, got: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}
	if calls := callCount.Load(); calls != 1 {
		t.Errorf("expected exactly 1 call for 4xx, got %d", calls)
	}
}

func TestDo_RespectsRetryAfterHeader(t *testing.T) {
	var callCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"test-retry-after",
		RetryPolicy{MaxRetries: 1, MinWait: 100 * time.Millisecond, MaxWait: 10 * time.Second},
		"firstlight-test/1.0",
		WithSleepFunc(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	resp.Body.Close()

	if len(sleeps) != 1 {
		t.Fatalf("expected 1 sleep call, got %d", len(sleeps))
	}
	if sleeps[0] != 2*time.Second {
		t.Errorf("expected sleep of 2s from Retry-After, got %v", sleeps[0])
	}
}

func TestDo_RetryAfterCappedByMaxWait(t *testing.T) {
	var callCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount.Add(1) == 1 {
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"test-capped",
		RetryPolicy{MaxRetries: 1, MinWait: 100 * time.Millisecond, MaxWait: 5 * time.Second},
		"firstlight-test/1.0",
		WithSleepFunc(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	resp.Body.Close()

	if len(sleeps) != 1 {
		t.Fatalf("expected 1 sleep, got %d", len(sleeps))
	}
	if sleeps[0] != 5*time.Second {
		t.Errorf("expected sleep capped at 5s, got %v", sleeps[0])
	}
}

func TestDo_CircuitBreakerOpensAfterThreshold(t *testing.T) {
	var callCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "test-open",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
	})

	// No retries so each Do call is exactly one attempt.
	client := NewBaseClientWithBreaker(
		&http.Client{Timeout: 5 * time.Second},
		breaker,
		fastPolicy(0),
		"firstlight-test/1.0",
		WithSleepFunc(noopSleep),
	)

	for i := 0; i < 4; i++ {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
		_, _ = client.Do(req)
	}

	callsBefore := callCount.Load()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/v1/forecast", nil)
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("expected error when circuit breaker is open, got nil")
	}
	if code := types.CodeOf(err); code != types.ErrCodeUpstreamRateLimited {
		t.Errorf("expected error code %s, got %s", types.ErrCodeUpstreamRateLimited, code)
	}

	if callCount.Load() != callsBefore {
		t.Error("expected no server calls while breaker is open")
	}
}

func TestDo_NetworkErrorMapsToUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, fastPolicy(1))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, serverURL+"/v1/forecast", nil)
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("expected error for refused connection, got nil")
	}

	if code := types.CodeOf(err); code != types.ErrCodeUpstreamUnavailable {
		t.Errorf("expected error code %s, got %s", types.ErrCodeUpstreamUnavailable, code)
	}
}

func TestComputeBackoff_StaysWithinPolicyBounds(t *testing.T) {
	client := &BaseClient{
		retryPolicy: RetryPolicy{
			MaxRetries: 5,
			MinWait:    100 * time.Millisecond,
			MaxWait:    10 * time.Second,
		},
	}

	// Jitter makes exact values unpredictable; check bounds instead.
	for attempt := 0; attempt < 5; attempt++ {
		backoff := client.computeBackoff(attempt, nil)
		if backoff < client.retryPolicy.MinWait {
			t.Errorf("attempt %d: backoff %v < MinWait %v", attempt, backoff, client.retryPolicy.MinWait)
		}
		if backoff > client.retryPolicy.MaxWait {
			t.Errorf("attempt %d: backoff %v > MaxWait %v", attempt, backoff, client.retryPolicy.MaxWait)
		}
	}
}

func TestStatusError_AuthRejection(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		resp := &http.Response{StatusCode: status}
		appErr := statusError(types.ProviderOpenWeather, types.EndpointOWHourly, resp)

		if appErr.Code != types.ErrCodeUpstreamAuth {
			t.Errorf("status %d: expected %s, got %s", status, types.ErrCodeUpstreamAuth, appErr.Code)
		}
		if appErr.Details["status"] != status {
			t.Errorf("status %d: expected status detail, got %v", status, appErr.Details["status"])
		}
	}
}

func TestStatusError_OtherStatusesAreUnavailable(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusNotFound}
	appErr := statusError(types.ProviderOpenMeteo, types.EndpointOMForecast, resp)

	if appErr.Code != types.ErrCodeUpstreamUnavailable {
		t.Errorf("expected %s, got %s", types.ErrCodeUpstreamUnavailable, appErr.Code)
	}
}

func TestClassify(t *testing.T) {
	authErr := types.NewAppError(types.ErrCodeUpstreamAuth, "credentials rejected", nil)
	if Classify(authErr) != types.FailureFatal {
		t.Error("expected auth rejection to classify as fatal")
	}

	timeoutErr := types.NewAppError(types.ErrCodeUpstreamUnavailable, "request timed out", nil)
	if Classify(timeoutErr) != types.FailureRetryable {
		t.Error("expected unavailable to classify as retryable")
	}

	if Classify(errors.New("plain network error")) != types.FailureRetryable {
		t.Error("expected untyped error to classify as retryable")
	}
}
