package weather

import (
	"errors"
	"fmt"
)

// UnavailableMessage is the fixed text shown to users when no snapshot can be served.
const UnavailableMessage = "Weather data unavailable"

// ErrInvalidSnapshot is returned when a provider produces a snapshot that
// does not match the declared shape.
var ErrInvalidSnapshot = errors.New("invalid weather snapshot")

// ProviderError reports a failed provider call (network, parsing, rate limit, timeout).
type ProviderError struct {
	Provider string
	Location string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("weather provider %s failed for %q: %v", e.Provider, e.Location, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err unless it already is a ProviderError.
func NewProviderError(provider, location string, err error) error {
	if err == nil {
		return nil
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &ProviderError{Provider: provider, Location: location, Err: err}
}

// IsProviderError reports whether err carries a ProviderError.
func IsProviderError(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr)
}

// ValidateSnapshot checks s against the snapshot shape: a location, exactly
// ForecastDays forecast entries, declared icons and percentages in range.
func ValidateSnapshot(s Snapshot) error {
	if s.Location == "" {
		return fmt.Errorf("%w: empty location", ErrInvalidSnapshot)
	}
	if len(s.Forecast) != ForecastDays {
		return fmt.Errorf("%w: %d forecast days, want %d", ErrInvalidSnapshot, len(s.Forecast), ForecastDays)
	}
	if !s.Current.Icon.Valid() {
		return fmt.Errorf("%w: unknown icon %q", ErrInvalidSnapshot, s.Current.Icon)
	}
	if s.Current.Humidity < 0 || s.Current.Humidity > 100 {
		return fmt.Errorf("%w: humidity %d out of range", ErrInvalidSnapshot, s.Current.Humidity)
	}
	for i, day := range s.Forecast {
		if !day.Icon.Valid() {
			return fmt.Errorf("%w: day %d: unknown icon %q", ErrInvalidSnapshot, i, day.Icon)
		}
		if day.Humidity < 0 || day.Humidity > 100 {
			return fmt.Errorf("%w: day %d: humidity %d out of range", ErrInvalidSnapshot, i, day.Humidity)
		}
		if day.Precipitation < 0 || day.Precipitation > 100 {
			return fmt.Errorf("%w: day %d: precipitation %d out of range", ErrInvalidSnapshot, i, day.Precipitation)
		}
		if i > 0 && day.Date <= s.Forecast[i-1].Date {
			return fmt.Errorf("%w: day %d: dates not ascending", ErrInvalidSnapshot, i)
		}
	}
	return nil
}
