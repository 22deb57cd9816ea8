package main

import (
	"math/rand/v2"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-cache/internal/config"
	"github.com/i474232898/weather-cache/internal/geo"
	"github.com/i474232898/weather-cache/internal/metrics"
	"github.com/i474232898/weather-cache/internal/store"
	"github.com/i474232898/weather-cache/internal/weather"
	"github.com/i474232898/weather-cache/internal/weather/providers"
)

// components is everything the commands need, built from one config.
type components struct {
	cache    *weather.Cache
	store    *store.MemoryStore
	geocoder geo.Geocoder
	registry *prometheus.Registry
}

func build(cfg *config.AppConfig, log zerolog.Logger) (*components, error) {
	// Geocoding is optional unless the provider needs it.
	var geocoder geo.Geocoder
	if cfg.GeocoderAPIKey != "" {
		g, err := geo.NewGoogleGeocoder(cfg.GeocoderAPIKey)
		if err != nil {
			return nil, err
		}
		geocoder = g
	}

	provider := buildProvider(cfg, geocoder, log)

	memStore := store.NewMemoryStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m, err := metrics.NewCacheMetrics(reg, memStore.Len)
	if err != nil {
		return nil, err
	}

	cache := weather.NewCache(provider, memStore, weather.Options{
		TTL:          cfg.CacheTTL,
		Policy:       weather.StalePolicy(cfg.StalePolicy),
		SingleFlight: cfg.SingleFlight,
		FetchTimeout: cfg.FetchTimeout,
		Metrics:      m,
		Logger:       log,
	})

	log.Info().
		Str("provider", provider.Name()).
		Dur("ttl", cache.TTL()).
		Str("stale_policy", cfg.StalePolicy).
		Bool("single_flight", cfg.SingleFlight).
		Msg("weather cache ready")

	return &components{
		cache:    cache,
		store:    memStore,
		geocoder: geocoder,
		registry: reg,
	}, nil
}

func buildProvider(cfg *config.AppConfig, geocoder geo.Geocoder, log zerolog.Logger) weather.Provider {
	synthetic := providers.NewSyntheticProvider(providers.SyntheticConfig{
		Rand:    seededRand(cfg.SyntheticSeed),
		Latency: cfg.SyntheticLatency,
	})

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var live weather.Provider
	switch cfg.Provider {
	case config.ProviderWeatherAPI:
		live = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, log)
	case config.ProviderOpenMeteo:
		live = providers.NewOpenMeteoProvider(httpClient, geocoder, log)
	default:
		return synthetic
	}

	if cfg.ProviderFallback {
		return providers.NewFallbackProvider(log, live, synthetic)
	}
	return live
}

// seededRand returns nil for seed 0 so the provider seeds itself from the clock.
func seededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return providers.NewSeededRand(seed)
}
