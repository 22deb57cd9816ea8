package weather

import (
	"context"
	"time"
)

// Provider abstracts a weather data source (synthetic generator, WeatherAPI, Open-Meteo).
// Fetch treats location as an opaque key and returns a snapshot in Imperial units.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, location string) (Snapshot, error)
}

// ProviderFunc adapts an ordinary function to the Provider interface.
type ProviderFunc func(ctx context.Context, location string) (Snapshot, error)

func (f ProviderFunc) Name() string { return "func" }

func (f ProviderFunc) Fetch(ctx context.Context, location string) (Snapshot, error) {
	return f(ctx, location)
}

// EntryStore is the contract the in-memory entry store must satisfy.
type EntryStore interface {
	Load(key string) (CacheEntry, bool)
	Save(key string, entry CacheEntry)
	Clear()
	Len() int
}

// Metrics receives cache lifecycle events.
type Metrics interface {
	Hit()
	Miss()
	StaleServed()
	ProviderFailure()
	ObserveFetch(d time.Duration)
}

// NoopMetrics ignores all events.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                       {}
func (NoopMetrics) Miss()                      {}
func (NoopMetrics) StaleServed()               {}
func (NoopMetrics) ProviderFailure()           {}
func (NoopMetrics) ObserveFetch(time.Duration) {}
