package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	ConfigFileEnv, "PORT", "LOG_LEVEL", "LOG_FORMAT", "WEATHER_PROVIDER", "WEATHER_PROVIDER_FALLBACK",
	"WEATHERAPI_API_KEY", "GEOCODER_API_KEY", "HTTP_TIMEOUT", "CACHE_TTL", "CACHE_STALE_POLICY",
	"CACHE_SINGLE_FLIGHT", "CACHE_FETCH_TIMEOUT", "REFRESH_INTERVAL", "WEATHER_LOCATIONS",
	"WEATHER_DEFAULT_LOCATION", "SYNTHETIC_LATENCY", "SYNTHETIC_SEED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weather.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderSynthetic, cfg.Provider)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, cfg.CacheTTL, cfg.RefreshInterval)
	assert.Equal(t, "strict", cfg.StalePolicy)
	assert.True(t, cfg.SingleFlight)
	assert.Equal(t, []string{"Pittsburgh, PA"}, cfg.Locations)
	assert.Equal(t, "Pittsburgh, PA", cfg.DefaultLocation)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CACHE_STALE_POLICY", "lenient")
	t.Setenv("CACHE_SINGLE_FLIGHT", "false")
	t.Setenv("WEATHER_LOCATIONS", "Pittsburgh, PA; Boston, MA ;")
	t.Setenv("SYNTHETIC_SEED", "42")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "lenient", cfg.StalePolicy)
	assert.False(t, cfg.SingleFlight)
	assert.Equal(t, []string{"Pittsburgh, PA", "Boston, MA"}, cfg.Locations)
	assert.Equal(t, uint64(42), cfg.SyntheticSeed)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
port: "7000"
provider: weatherapi
weatherapi_api_key: file-key
cache_ttl: 5m
refresh_interval: 15m
locations:
  - "Pittsburgh, PA"
  - "Denver, CO"
`)
	t.Setenv("WEATHERAPI_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, ProviderWeatherAPI, cfg.Provider)
	assert.Equal(t, "env-key", cfg.WeatherAPIKey)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, []string{"Pittsburgh, PA", "Denver, CO"}, cfg.Locations)
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigFileEnv, writeFile(t, "default_location: Erie, PA\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Erie, PA", cfg.DefaultLocation)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"CACHE_TTL": "ten minutes"}},
		{"bad bool", map[string]string{"CACHE_SINGLE_FLIGHT": "maybe"}},
		{"bad seed", map[string]string{"SYNTHETIC_SEED": "-1"}},
		{"unknown provider", map[string]string{"WEATHER_PROVIDER": "openweather"}},
		{"weatherapi without key", map[string]string{"WEATHER_PROVIDER": "weatherapi"}},
		{"openmeteo without geocoder key", map[string]string{"WEATHER_PROVIDER": "openmeteo"}},
		{"unknown policy", map[string]string{"CACHE_STALE_POLICY": "sometimes"}},
		{"negative ttl", map[string]string{"CACHE_TTL": "-1m"}},
		{"non-numeric port", map[string]string{"PORT": "http"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
