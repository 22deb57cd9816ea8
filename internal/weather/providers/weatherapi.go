package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-cache/internal/weather"
)

var errMissingAPIKey = errors.New("api key is not configured")

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
// The location key is passed through untouched as the "q" parameter.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
	log     zerolog.Logger
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, log zerolog.Logger) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("weatherapi"),
		now:     time.Now,
		log:     log.With().Str("provider", "weatherapi").Logger(),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}

type weatherAPIPayload struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempF      float64             `json:"temp_f"`
		FeelsLikeF float64             `json:"feelslike_f"`
		Humidity   float64             `json:"humidity"`
		WindMph    float64             `json:"wind_mph"`
		VisMiles   float64             `json:"vis_miles"`
		UV         float64             `json:"uv"`
		Condition  weatherAPICondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempF          float64             `json:"maxtemp_f"`
				MinTempF          float64             `json:"mintemp_f"`
				MaxWindMph        float64             `json:"maxwind_mph"`
				AvgHumidity       float64             `json:"avghumidity"`
				DailyChanceOfRain float64             `json:"daily_chance_of_rain"`
				DailyChanceOfSnow float64             `json:"daily_chance_of_snow"`
				Condition         weatherAPICondition `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, errMissingAPIKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", location)
		values.Set("days", strconv.Itoa(weather.ForecastDays))
		values.Set("aqi", "no")
		values.Set("alerts", "no")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.log, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, err)
	}
	defer resp.Body.Close()

	var payload weatherAPIPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, fmt.Errorf("decode response: %w", err))
	}

	snap, err := p.toSnapshot(location, payload)
	if err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, err)
	}
	return snap, nil
}

func (p *WeatherAPIProvider) toSnapshot(location string, payload weatherAPIPayload) (weather.Snapshot, error) {
	name := location
	if payload.Location.Name != "" {
		name = payload.Location.Name
		if payload.Location.Region != "" {
			name = payload.Location.Name + ", " + payload.Location.Region
		}
	}

	cur := payload.Current
	current := weather.Current{
		Temperature: weather.Round1(cur.TempF),
		Condition:   cur.Condition.Text,
		Humidity:    weather.Percent(cur.Humidity),
		WindSpeed:   weather.Round1(cur.WindMph),
		Visibility:  weather.Round1(cur.VisMiles),
		FeelsLike:   weather.Round1(cur.FeelsLikeF),
		UVIndex:     cur.UV,
		Icon:        weather.IconForCondition(cur.Condition.Text),
	}

	days := payload.Forecast.ForecastDay
	if len(days) > weather.ForecastDays {
		days = days[:weather.ForecastDays]
	}

	forecast := make([]weather.ForecastDay, 0, len(days))
	for i, d := range days {
		date, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			return weather.Snapshot{}, fmt.Errorf("forecast day %d: %w", i, err)
		}
		forecast = append(forecast, weather.ForecastDay{
			Date:          d.Date,
			Day:           weather.DayLabel(i, date),
			High:          weather.Round1(d.Day.MaxTempF),
			Low:           weather.Round1(d.Day.MinTempF),
			Condition:     d.Day.Condition.Text,
			Icon:          weather.IconForCondition(d.Day.Condition.Text),
			Precipitation: weather.Percent(max(d.Day.DailyChanceOfRain, d.Day.DailyChanceOfSnow)),
			WindSpeed:     weather.Round1(d.Day.MaxWindMph),
			Humidity:      weather.Percent(d.Day.AvgHumidity),
		})
	}

	snap := weather.Snapshot{
		Location:  name,
		Units:     weather.Imperial,
		Current:   current,
		Forecast:  forecast,
		FetchedAt: p.now().UTC(),
	}
	if err := weather.ValidateSnapshot(snap); err != nil {
		return weather.Snapshot{}, err
	}
	return snap, nil
}
