package providers

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/i474232898/weather-cache/internal/common"
	"github.com/i474232898/weather-cache/internal/weather"
)

const (
	// base temperatures (°F) for the crude location heuristic
	pittsburghBaseTemp = 45
	defaultBaseTemp    = 50
)

type syntheticCondition struct {
	label string
	icon  weather.Icon
}

var syntheticConditions = []syntheticCondition{
	{"Sunny", weather.IconSunny},
	{"Partly Cloudy", weather.IconPartlyCloudy},
	{"Cloudy", weather.IconCloudy},
	{"Light Rain", weather.IconRainy},
	{"Snow", weather.IconSnowy},
}

// SyntheticConfig configures a SyntheticProvider.
type SyntheticConfig struct {
	// Rand is the random source; nil seeds one from the clock.
	Rand *rand.Rand
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Latency simulates a slow upstream.
	Latency time.Duration
}

// SyntheticProvider generates plausible random weather for any location.
// Output is shape-valid but not value-deterministic unless Rand is seeded.
type SyntheticProvider struct {
	name    string
	now     func() time.Time
	latency time.Duration

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

func NewSyntheticProvider(cfg SyntheticConfig) *SyntheticProvider {
	p := &SyntheticProvider{
		name:    "synthetic",
		now:     cfg.Clock,
		latency: cfg.Latency,
		rng:     cfg.Rand,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.rng == nil {
		seed := uint64(p.now().UnixNano())
		p.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return p
}

// NewSeededRand returns a deterministic random source for SyntheticConfig.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (p *SyntheticProvider) Name() string {
	return p.name
}

func (p *SyntheticProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return weather.Snapshot{}, ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	base := defaultBaseTemp
	if common.HasAnyFold(location, "pittsburgh") {
		base = pittsburghBaseTemp
	}

	now := p.now().UTC()
	cond := p.condition()
	current := weather.Current{
		Temperature: float64(base + p.between(-5, 4)),
		Condition:   cond.label,
		Humidity:    p.between(50, 79),
		WindSpeed:   float64(p.between(5, 19)),
		Visibility:  float64(p.between(8, 12)),
		FeelsLike:   float64(base + p.between(-4, 3)),
		UVIndex:     float64(p.between(1, 10)),
		Icon:        cond.icon,
	}

	forecast := make([]weather.ForecastDay, 0, weather.ForecastDays)
	for i := 0; i < weather.ForecastDays; i++ {
		date := now.AddDate(0, 0, i)
		cond := p.condition()
		high := base + p.between(-5, 9)
		low := high - p.between(10, 19)

		forecast = append(forecast, weather.ForecastDay{
			Date:          weather.DateKey(date),
			Day:           weather.DayLabel(i, date),
			High:          float64(high),
			Low:           float64(low),
			Condition:     cond.label,
			Icon:          cond.icon,
			Precipitation: p.between(0, 99),
			WindSpeed:     float64(p.between(3, 14)),
			Humidity:      p.between(40, 79),
		})
	}

	return weather.Snapshot{
		Location:  location,
		Units:     weather.Imperial,
		Current:   current,
		Forecast:  forecast,
		FetchedAt: now,
	}, nil
}

func (p *SyntheticProvider) condition() syntheticCondition {
	return syntheticConditions[p.rng.IntN(len(syntheticConditions))]
}

// between returns a uniform integer in [lo, hi].
func (p *SyntheticProvider) between(lo, hi int) int {
	return lo + p.rng.IntN(hi-lo+1)
}
