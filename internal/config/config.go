package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-cache/internal/common"
)

// Provider names.
const (
	ProviderSynthetic  = "synthetic"
	ProviderWeatherAPI = "weatherapi"
	ProviderOpenMeteo  = "openmeteo"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML config file.
const ConfigFileEnv = "WEATHER_CONFIG_FILE"

// locationSeparator splits WEATHER_LOCATIONS; keys like "Pittsburgh, PA" contain commas.
const locationSeparator = ";"

var validate = validator.New()

type AppConfig struct {
	Port      string `yaml:"port" validate:"required,numeric"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// Provider selects the weather data source.
	Provider string `yaml:"provider" validate:"oneof=synthetic weatherapi openmeteo"`
	// ProviderFallback puts the synthetic generator behind a live provider.
	ProviderFallback bool          `yaml:"provider_fallback"`
	WeatherAPIKey    string        `yaml:"weatherapi_api_key" validate:"required_if=Provider weatherapi"`
	GeocoderAPIKey   string        `yaml:"geocoder_api_key" validate:"required_if=Provider openmeteo"`
	HTTPTimeout      time.Duration `yaml:"http_timeout" validate:"gt=0"`

	CacheTTL     time.Duration `yaml:"cache_ttl" validate:"gt=0"`
	StalePolicy  string        `yaml:"cache_stale_policy" validate:"oneof=strict lenient"`
	SingleFlight bool          `yaml:"cache_single_flight"`
	FetchTimeout time.Duration `yaml:"cache_fetch_timeout" validate:"gte=0"`

	// RefreshInterval controls how often the refresher polls Locations; defaults to CacheTTL.
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gte=0"`

	// Locations to keep warm.
	Locations       []string `yaml:"locations" validate:"dive,required"`
	DefaultLocation string   `yaml:"default_location" validate:"required"`

	SyntheticLatency time.Duration `yaml:"synthetic_latency" validate:"gte=0"`
	SyntheticSeed    uint64        `yaml:"synthetic_seed"` // 0 = random
}

// Default returns the configuration used when nothing overrides it.
func Default() *AppConfig {
	return &AppConfig{
		Port:             "8080",
		LogLevel:         "info",
		LogFormat:        "console",
		Provider:         ProviderSynthetic,
		HTTPTimeout:      10 * time.Second,
		CacheTTL:         10 * time.Minute,
		StalePolicy:      "strict",
		SingleFlight:     true,
		FetchTimeout:     15 * time.Second,
		Locations:        []string{"Pittsburgh, PA"},
		DefaultLocation:  "Pittsburgh, PA",
		SyntheticLatency: 200 * time.Millisecond,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $WEATHER_CONFIG_FILE when path is empty), then environment variables,
// and validates the result.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = cfg.CacheTTL
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.Provider, "WEATHER_PROVIDER")
	setString(&cfg.WeatherAPIKey, "WEATHERAPI_API_KEY")
	setString(&cfg.GeocoderAPIKey, "GEOCODER_API_KEY")
	setString(&cfg.StalePolicy, "CACHE_STALE_POLICY")
	setString(&cfg.DefaultLocation, "WEATHER_DEFAULT_LOCATION")

	if v := os.Getenv("WEATHER_LOCATIONS"); v != "" {
		cfg.Locations = common.SplitList(v, locationSeparator)
	}

	return errors.Join(
		setBool(&cfg.ProviderFallback, "WEATHER_PROVIDER_FALLBACK"),
		setBool(&cfg.SingleFlight, "CACHE_SINGLE_FLIGHT"),
		setDuration(&cfg.HTTPTimeout, "HTTP_TIMEOUT"),
		setDuration(&cfg.CacheTTL, "CACHE_TTL"),
		setDuration(&cfg.FetchTimeout, "CACHE_FETCH_TIMEOUT"),
		setDuration(&cfg.RefreshInterval, "REFRESH_INTERVAL"),
		setDuration(&cfg.SyntheticLatency, "SYNTHETIC_LATENCY"),
		setUint(&cfg.SyntheticSeed, "SYNTHETIC_SEED"),
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setUint(dst *uint64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
