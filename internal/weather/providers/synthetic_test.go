package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cache/internal/weather"
)

var testNow = time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC) // a Monday

func TestSyntheticProviderShape(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		p := NewSyntheticProvider(SyntheticConfig{
			Rand:  NewSeededRand(seed),
			Clock: func() time.Time { return testNow },
		})

		snap, err := p.Fetch(context.Background(), "Boston, MA")
		require.NoError(t, err)
		require.NoError(t, weather.ValidateSnapshot(snap))

		assert.Equal(t, "Boston, MA", snap.Location)
		assert.Equal(t, weather.Imperial, snap.Units)
		assert.Equal(t, testNow, snap.FetchedAt)

		cur := snap.Current
		assert.True(t, cur.Icon.Valid())
		assert.GreaterOrEqual(t, cur.Temperature, 45.0)
		assert.LessOrEqual(t, cur.Temperature, 54.0)
		assert.GreaterOrEqual(t, cur.Humidity, 50)
		assert.LessOrEqual(t, cur.Humidity, 79)
		assert.GreaterOrEqual(t, cur.UVIndex, 1.0)
		assert.LessOrEqual(t, cur.UVIndex, 10.0)
		assert.Equal(t, cur.Icon, weather.IconForCondition(cur.Condition))

		require.Len(t, snap.Forecast, weather.ForecastDays)
		for i, day := range snap.Forecast {
			assert.True(t, day.Icon.Valid())
			assert.GreaterOrEqual(t, day.Humidity, 40)
			assert.LessOrEqual(t, day.Humidity, 100)
			assert.GreaterOrEqual(t, day.Precipitation, 0)
			assert.LessOrEqual(t, day.Precipitation, 100)
			assert.GreaterOrEqual(t, day.High-day.Low, 10.0)
			assert.LessOrEqual(t, day.High-day.Low, 19.0)
			assert.Equal(t, weather.DateKey(testNow.AddDate(0, 0, i)), day.Date)
		}
	}
}

func TestSyntheticProviderDayLabels(t *testing.T) {
	p := NewSyntheticProvider(SyntheticConfig{
		Rand:  NewSeededRand(1),
		Clock: func() time.Time { return testNow },
	})

	snap, err := p.Fetch(context.Background(), "anywhere")
	require.NoError(t, err)

	var labels []string
	for _, day := range snap.Forecast {
		labels = append(labels, day.Day)
	}
	assert.Equal(t, []string{"Today", "Tomorrow", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, labels)
}

func TestSyntheticProviderDatesFollowFetchedAt(t *testing.T) {
	// 23:30 on Sunday in UTC-5 is already Monday in UTC.
	local := time.Date(2024, 3, 3, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	p := NewSyntheticProvider(SyntheticConfig{
		Rand:  NewSeededRand(1),
		Clock: func() time.Time { return local },
	})

	snap, err := p.Fetch(context.Background(), "anywhere")
	require.NoError(t, err)

	assert.Equal(t, time.UTC, snap.FetchedAt.Location())
	assert.Equal(t, weather.DateKey(snap.FetchedAt), snap.Forecast[0].Date)
	assert.Equal(t, "2024-03-04", snap.Forecast[0].Date)
	assert.Equal(t, "Wednesday", snap.Forecast[2].Day)
}

func TestSyntheticProviderPittsburghBase(t *testing.T) {
	for seed := uint64(0); seed < 30; seed++ {
		p := NewSyntheticProvider(SyntheticConfig{Rand: NewSeededRand(seed)})

		snap, err := p.Fetch(context.Background(), "PITTSBURGH, PA")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, snap.Current.Temperature, 40.0)
		assert.LessOrEqual(t, snap.Current.Temperature, 49.0)
		assert.GreaterOrEqual(t, snap.Current.FeelsLike, 41.0)
		assert.LessOrEqual(t, snap.Current.FeelsLike, 48.0)
	}
}

func TestSyntheticProviderSeedIsDeterministic(t *testing.T) {
	clock := func() time.Time { return testNow }
	a := NewSyntheticProvider(SyntheticConfig{Rand: NewSeededRand(42), Clock: clock})
	b := NewSyntheticProvider(SyntheticConfig{Rand: NewSeededRand(42), Clock: clock})

	sa, err := a.Fetch(context.Background(), "X")
	require.NoError(t, err)
	sb, err := b.Fetch(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestSyntheticProviderLatencyHonoursContext(t *testing.T) {
	p := NewSyntheticProvider(SyntheticConfig{Latency: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Fetch(ctx, "X")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
