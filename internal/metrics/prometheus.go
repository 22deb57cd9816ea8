// Package metrics exposes cache activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_cache"

// CacheMetrics implements weather.Metrics with Prometheus collectors.
type CacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	staleServed   prometheus.Counter
	providerFails prometheus.Counter
	fetchDuration prometheus.Histogram
	entries       prometheus.GaugeFunc
}

// NewCacheMetrics creates the collectors and registers them with reg.
// entries, when non-nil, backs a gauge with the current number of cached locations.
func NewCacheMetrics(reg prometheus.Registerer, entries func() int) (*CacheMetrics, error) {
	m := &CacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_total",
			Help:      "Requests served from a fresh cache entry.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "misses_total",
			Help:      "Requests that required a provider fetch.",
		}),
		staleServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_served_total",
			Help:      "Stale entries served after a provider failure.",
		}),
		providerFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Failed provider fetches.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_seconds",
			Help:      "Provider fetch latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	collectors := []prometheus.Collector{m.hits, m.misses, m.staleServed, m.providerFails, m.fetchDuration}
	if entries != nil {
		m.entries = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Locations currently held in the cache.",
		}, func() float64 { return float64(entries()) })
		collectors = append(collectors, m.entries)
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *CacheMetrics) Hit()             { m.hits.Inc() }
func (m *CacheMetrics) Miss()            { m.misses.Inc() }
func (m *CacheMetrics) StaleServed()     { m.staleServed.Inc() }
func (m *CacheMetrics) ProviderFailure() { m.providerFails.Inc() }

func (m *CacheMetrics) ObserveFetch(d time.Duration) {
	m.fetchDuration.Observe(d.Seconds())
}
