package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-cache/internal/geo"
	"github.com/i474232898/weather-cache/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only accepts coordinates, so location keys go through a geocoder first.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder geo.Geocoder
	now      func() time.Time
	log      zerolog.Logger

	// places memoizes geocoding results per location key.
	places sync.Map
}

func NewOpenMeteoProvider(client *http.Client, geocoder geo.Geocoder, log zerolog.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newCircuitBreaker("openmeteo"),
		geocoder: geocoder,
		now:      time.Now,
		log:      log.With().Str("provider", "openmeteo").Logger(),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	CurrentUnits struct {
		Visibility string `json:"visibility"`
	} `json:"current_units"`
	Current struct {
		Temperature  float64 `json:"temperature_2m"`
		Humidity     float64 `json:"relative_humidity_2m"`
		ApparentTemp float64 `json:"apparent_temperature"`
		WeatherCode  int     `json:"weather_code"`
		WindSpeed    float64 `json:"wind_speed_10m"`
		Visibility   float64 `json:"visibility"`
		UVIndex      float64 `json:"uv_index"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		PrecipProb  []float64 `json:"precipitation_probability_max"`
		WindMax     []float64 `json:"wind_speed_10m_max"`
		HumidityAvg []float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	place, err := p.locate(ctx, location)
	if err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(place.Lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(place.Lon, 'f', 4, 64))
		values.Set("current", strings.Join([]string{
			"temperature_2m", "relative_humidity_2m", "apparent_temperature",
			"weather_code", "wind_speed_10m", "visibility", "uv_index",
		}, ","))
		values.Set("daily", strings.Join([]string{
			"weather_code", "temperature_2m_max", "temperature_2m_min",
			"precipitation_probability_max", "wind_speed_10m_max", "relative_humidity_2m_mean",
		}, ","))
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
		values.Set("timezone", "auto")
		values.Set("forecast_days", strconv.Itoa(weather.ForecastDays))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.log, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, err)
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, fmt.Errorf("decode response: %w", err))
	}

	snap, err := p.toSnapshot(place.Name, payload)
	if err != nil {
		return weather.Snapshot{}, weather.NewProviderError(p.name, location, err)
	}
	return snap, nil
}

func (p *OpenMeteoProvider) locate(ctx context.Context, location string) (geo.Place, error) {
	if cached, ok := p.places.Load(location); ok {
		return cached.(geo.Place), nil
	}
	if p.geocoder == nil {
		return geo.Place{}, geo.ErrNotConfigured
	}
	place, err := p.geocoder.Locate(ctx, location)
	if err != nil {
		return geo.Place{}, err
	}
	p.places.Store(location, place)
	return place, nil
}

func (p *OpenMeteoProvider) toSnapshot(name string, payload openMeteoPayload) (weather.Snapshot, error) {
	cur := payload.Current
	label, icon := mapOpenMeteoCondition(cur.WeatherCode)

	visibility := cur.Visibility
	switch payload.CurrentUnits.Visibility {
	case "ft":
		visibility = weather.FeetToMiles(visibility)
	default:
		visibility = weather.MetersToMiles(visibility)
	}

	current := weather.Current{
		Temperature: weather.Round1(cur.Temperature),
		Condition:   label,
		Humidity:    weather.Percent(cur.Humidity),
		WindSpeed:   weather.Round1(cur.WindSpeed),
		Visibility:  weather.Round1(visibility),
		FeelsLike:   weather.Round1(cur.ApparentTemp),
		UVIndex:     weather.Round1(cur.UVIndex),
		Icon:        icon,
	}

	d := payload.Daily
	n := min(len(d.Time), weather.ForecastDays)
	if len(d.WeatherCode) < n || len(d.TempMax) < n || len(d.TempMin) < n ||
		len(d.PrecipProb) < n || len(d.WindMax) < n || len(d.HumidityAvg) < n {
		return weather.Snapshot{}, fmt.Errorf("%w: daily series length mismatch", weather.ErrInvalidSnapshot)
	}

	forecast := make([]weather.ForecastDay, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.Parse(time.DateOnly, d.Time[i])
		if err != nil {
			return weather.Snapshot{}, fmt.Errorf("forecast day %d: %w", i, err)
		}
		label, icon := mapOpenMeteoCondition(d.WeatherCode[i])
		forecast = append(forecast, weather.ForecastDay{
			Date:          d.Time[i],
			Day:           weather.DayLabel(i, date),
			High:          weather.Round1(d.TempMax[i]),
			Low:           weather.Round1(d.TempMin[i]),
			Condition:     label,
			Icon:          icon,
			Precipitation: weather.Percent(d.PrecipProb[i]),
			WindSpeed:     weather.Round1(d.WindMax[i]),
			Humidity:      weather.Percent(d.HumidityAvg[i]),
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

// mapOpenMeteoCondition maps WMO weather interpretation codes to a label and icon.
func mapOpenMeteoCondition(code int) (string, weather.Icon) {
	switch {
	case code == 0:
		return "Clear", weather.IconSunny
	case code == 1:
		return "Mainly Clear", weather.IconSunny
	case code == 2:
		return "Partly Cloudy", weather.IconPartlyCloudy
	case code == 3:
		return "Overcast", weather.IconCloudy
	case code == 45 || code == 48:
		return "Fog", weather.IconCloudy
	case code >= 51 && code <= 57:
		return "Drizzle", weather.IconRainy
	case code >= 61 && code <= 67:
		return "Rain", weather.IconRainy
	case code >= 71 && code <= 77:
		return "Snow", weather.IconSnowy
	case code >= 80 && code <= 82:
		return "Rain Showers", weather.IconRainy
	case code == 85 || code == 86:
		return "Snow Showers", weather.IconSnowy
	case code >= 95:
		return "Thunderstorm", weather.IconRainy
	default:
		return "Cloudy", weather.IconCloudy
	}
}
