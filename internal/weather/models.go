package weather

import (
	"time"
)

// ForecastDays is the number of daily entries every snapshot carries.
const ForecastDays = 7

// UnitSystem names the units all numeric snapshot fields are expressed in.
type UnitSystem string

// Imperial: temperatures in °F, wind in mph, visibility in miles.
const Imperial UnitSystem = "imperial"

// Icon represents a normalized icon category for a weather condition.
type Icon string

const (
	IconSunny        Icon = "sunny"
	IconPartlyCloudy Icon = "partly-cloudy"
	IconCloudy       Icon = "cloudy"
	IconRainy        Icon = "rainy"
	IconSnowy        Icon = "snowy"
)

// Icons lists every declared icon category.
var Icons = []Icon{IconSunny, IconPartlyCloudy, IconCloudy, IconRainy, IconSnowy}

// Valid reports whether i is one of the declared categories.
func (i Icon) Valid() bool {
	for _, icon := range Icons {
		if i == icon {
			return true
		}
	}
	return false
}

// Current holds the conditions at fetch time.
type Current struct {
	Temperature float64 `json:"temp"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Visibility  float64 `json:"visibility"`
	FeelsLike   float64 `json:"feelsLike"`
	UVIndex     float64 `json:"uvIndex"`
	Icon        Icon    `json:"icon"`
}

// ForecastDay is one daily forecast entry.
type ForecastDay struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	Day           string  `json:"day"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Condition     string  `json:"condition"`
	Icon          Icon    `json:"icon"`
	Precipitation int     `json:"precipitation"`
	WindSpeed     float64 `json:"windSpeed"`
	Humidity      int     `json:"humidity"`
}

// Snapshot is the normalized weather view for one location at one point in time.
// Forecast entries are ordered chronologically starting from the request day.
type Snapshot struct {
	Location  string        `json:"location"`
	Units     UnitSystem    `json:"units"`
	Current   Current       `json:"current"`
	Forecast  []ForecastDay `json:"forecast"`
	FetchedAt time.Time     `json:"lastUpdated"`
}

// Clone returns a copy of s that shares no memory with it.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Forecast != nil {
		out.Forecast = make([]ForecastDay, len(s.Forecast))
		copy(out.Forecast, s.Forecast)
	}
	return out
}

// CacheEntry is a stored snapshot plus the cache time it was stored at.
// Entries are replaced whole, never modified in place.
type CacheEntry struct {
	Snapshot Snapshot
	StoredAt time.Time
}

// DayLabel returns the display label for the forecast entry offset days after
// the request day: "Today", "Tomorrow", then the weekday name of date.
func DayLabel(offset int, date time.Time) string {
	switch offset {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return date.Weekday().String()
	}
}

// DateKey formats t as a forecast date.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
