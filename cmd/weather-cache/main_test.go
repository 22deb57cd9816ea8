package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cache/internal/config"
	"github.com/i474232898/weather-cache/internal/weather"
	"github.com/i474232898/weather-cache/internal/weather/providers"
)

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.SyntheticLatency = 0
	cfg.SyntheticSeed = 7
	cfg.RefreshInterval = cfg.CacheTTL
	return cfg
}

func TestServeRoutes(t *testing.T) {
	cfg := testConfig()
	c, err := build(cfg, zerolog.Nop())
	require.NoError(t, err)
	app := newApp(cfg, c, zerolog.Nop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/weather?location=Pittsburgh,%20PA", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap weather.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, "Pittsburgh, PA", snap.Location)
	assert.Len(t, snap.Forecast, weather.ForecastDays)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Status    string   `json:"status"`
		Entries   int      `json:"entries"`
		Locations []string `json:"locations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Entries)
	assert.Equal(t, []string{"Pittsburgh, PA"}, health.Locations)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "weather_cache_misses_total 1")
	assert.Contains(t, string(body), "weather_cache_entries 1")
}

func TestBuildProvider(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "synthetic", buildProvider(cfg, nil, zerolog.Nop()).Name())

	cfg.Provider = config.ProviderWeatherAPI
	cfg.WeatherAPIKey = "key"
	assert.IsType(t, &providers.WeatherAPIProvider{}, buildProvider(cfg, nil, zerolog.Nop()))

	cfg.ProviderFallback = true
	assert.IsType(t, &providers.FallbackProvider{}, buildProvider(cfg, nil, zerolog.Nop()))
}

func TestFetchCommand(t *testing.T) {
	for _, k := range []string{config.ConfigFileEnv, "WEATHER_PROVIDER", "CACHE_TTL", "WEATHER_LOCATIONS", "WEATHER_DEFAULT_LOCATION"} {
		t.Setenv(k, "")
	}
	t.Setenv("SYNTHETIC_LATENCY", "0s")
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"fetch", "Boston, MA", "Pittsburgh, PA", "--log-level", "error"})

	require.NoError(t, cmd.Execute())

	var snaps []weather.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, "Boston, MA", snaps[0].Location)
	assert.Equal(t, "Pittsburgh, PA", snaps[1].Location)
}

func TestFetchCommandRequiresLocation(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"fetch"})

	assert.Error(t, cmd.Execute())
}
