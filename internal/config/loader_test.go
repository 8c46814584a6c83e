package config

import (
	"errors"
	"testing"
	"time"
)

// setRequiredEnv populates the minimum environment for a successful load.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("OPENWEATHER_API_KEY", "ow-test-key")
}

// TestLoadConfigDefaults verifies that defaults fill every tunable when only
// the required variables are set.
func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Environment != "local" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "local")
	}
	if cfg.Service != "firstlight" {
		t.Errorf("Service = %q, want %q", cfg.Service, "firstlight")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Upstream.OpenWeatherAPIKey.Unmask() != "ow-test-key" {
		t.Error("Upstream.OpenWeatherAPIKey did not round-trip")
	}
	if cfg.Upstream.MaxRetries != 3 {
		t.Errorf("Upstream.MaxRetries = %d, want 3", cfg.Upstream.MaxRetries)
	}
	if cfg.Upstream.RetryMinWait != 500*time.Millisecond {
		t.Errorf("Upstream.RetryMinWait = %v, want 500ms", cfg.Upstream.RetryMinWait)
	}
	if cfg.Cache.HourlyTTL != 30*time.Minute {
		t.Errorf("Cache.HourlyTTL = %v, want 30m", cfg.Cache.HourlyTTL)
	}
	if cfg.Cache.NegativeTTL != 90*time.Second {
		t.Errorf("Cache.NegativeTTL = %v, want 90s", cfg.Cache.NegativeTTL)
	}
	if cfg.Cache.PredictionTTL != 10*time.Minute {
		t.Errorf("Cache.PredictionTTL = %v, want 10m", cfg.Cache.PredictionTTL)
	}
	if !cfg.Warmup.Enabled {
		t.Error("Warmup.Enabled should default to true")
	}
	if cfg.Build.Version != "dev" {
		t.Errorf("Build.Version = %q, want %q", cfg.Build.Version, "dev")
	}
}

// TestLoadConfigOverrides verifies that explicit environment variables win
// over defaults.
func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9191")
	t.Setenv("CACHE_NEGATIVE_TTL", "45s")
	t.Setenv("UPSTREAM_MAX_RETRIES", "5")
	t.Setenv("WARMUP_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Server.Port != "9191" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9191")
	}
	if cfg.Cache.NegativeTTL != 45*time.Second {
		t.Errorf("Cache.NegativeTTL = %v, want 45s", cfg.Cache.NegativeTTL)
	}
	if cfg.Upstream.MaxRetries != 5 {
		t.Errorf("Upstream.MaxRetries = %d, want 5", cfg.Upstream.MaxRetries)
	}
	if cfg.Warmup.Enabled {
		t.Error("Warmup.Enabled should have been overridden to false")
	}
}

// TestLoadConfigMissingRequired verifies that a missing API key fails
// validation with a typed ConfigError.
func TestLoadConfigMissingRequired(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("OPENWEATHER_API_KEY", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() should fail without OPENWEATHER_API_KEY")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != ErrValidation {
		t.Errorf("ConfigError.Type = %q, want %q", cfgErr.Type, ErrValidation)
	}
}

// TestLoadConfigInvalidEnvironment verifies the oneof constraint on APP_ENV.
func TestLoadConfigInvalidEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production-ish")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() should reject unknown APP_ENV values")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != ErrValidation {
		t.Errorf("ConfigError.Type = %q, want %q", cfgErr.Type, ErrValidation)
	}
}

// TestLoadConfigParseFailure verifies that malformed duration values surface
// as parsing errors.
func TestLoadConfigParseFailure(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_HOURLY_TTL", "not-a-duration")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() should fail on malformed durations")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != ErrParsing {
		t.Errorf("ConfigError.Type = %q, want %q", cfgErr.Type, ErrParsing)
	}
}

// TestConfigErrorFormat verifies both branches of ConfigError.Error().
func TestConfigErrorFormat(t *testing.T) {
	bare := &ConfigError{Type: ErrMissingEnv, Message: "PORT not set"}
	if bare.Error() != "[MISSING_ENV] PORT not set" {
		t.Errorf("Error() = %q", bare.Error())
	}

	underlying := errors.New("boom")
	wrapped := &ConfigError{Type: ErrParsing, Message: "bad value", Err: underlying}
	if wrapped.Error() != "[PARSING_FAILED] bad value: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, underlying) {
		t.Error("errors.Is should reach the underlying error")
	}
}
