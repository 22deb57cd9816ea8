package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the maximum age of a cached snapshot unless configured otherwise.
const DefaultTTL = 10 * time.Minute

// StalePolicy decides what Get does when the provider fails.
type StalePolicy string

const (
	// PolicyStrict propagates the provider error.
	PolicyStrict StalePolicy = "strict"
	// PolicyLenient serves the most recent stale entry if there is one.
	PolicyLenient StalePolicy = "lenient"
)

// Options configures a Cache. The zero value is a strict cache with DefaultTTL.
type Options struct {
	TTL    time.Duration
	Policy StalePolicy

	// SingleFlight makes concurrent misses on the same key share one provider call.
	SingleFlight bool

	// FetchTimeout bounds each provider call; 0 means no bound.
	FetchTimeout time.Duration

	Clock   func() time.Time
	Metrics Metrics
	Logger  zerolog.Logger
}

// Cache serves snapshots per location key, calling the provider only when
// the stored entry is missing or older than the TTL.
type Cache struct {
	provider Provider
	store    EntryStore

	ttl          time.Duration
	policy       StalePolicy
	singleFlight bool
	fetchTimeout time.Duration
	now          func() time.Time
	metrics      Metrics
	log          zerolog.Logger

	group singleflight.Group
}

// NewCache creates a Cache in front of provider, keeping entries in store.
func NewCache(provider Provider, store EntryStore, opts Options) *Cache {
	c := &Cache{
		provider:     provider,
		store:        store,
		ttl:          opts.TTL,
		policy:       opts.Policy,
		singleFlight: opts.SingleFlight,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Clock,
		metrics:      opts.Metrics,
		log:          opts.Logger.With().Str("component", "weather-cache").Logger(),
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.policy == "" {
		c.policy = PolicyStrict
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.metrics == nil {
		c.metrics = NoopMetrics{}
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the snapshot for location, fetching it from the provider when
// there is no entry younger than the TTL.
func (c *Cache) Get(ctx context.Context, location string) (Snapshot, error) {
	if entry, ok := c.store.Load(location); ok && c.fresh(entry) {
		c.metrics.Hit()
		return entry.Snapshot.Clone(), nil
	}
	c.metrics.Miss()

	snap, err := c.fetch(ctx, location)
	if err == nil {
		return snap, nil
	}

	if c.policy == PolicyLenient && IsProviderError(err) {
		if entry, ok := c.store.Load(location); ok {
			c.metrics.StaleServed()
			c.log.Warn().Err(err).
				Str("location", location).
				Time("stored_at", entry.StoredAt).
				Msg("serving stale snapshot")
			return entry.Snapshot.Clone(), nil
		}
	}
	return Snapshot{}, err
}

// GetMany fetches every location concurrently. The i-th snapshot belongs to
// the i-th location; the first failure fails the whole call.
func (c *Cache) GetMany(ctx context.Context, locations []string) ([]Snapshot, error) {
	out := make([]Snapshot, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range locations {
		g.Go(func() error {
			snap, err := c.Get(gctx, loc)
			if err != nil {
				return err
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear drops every entry. Fetches already in flight still store their result.
func (c *Cache) Clear() {
	n := c.store.Len()
	c.store.Clear()
	c.log.Info().Int("entries", n).Msg("cache cleared")
}

func (c *Cache) fresh(entry CacheEntry) bool {
	return c.now().Sub(entry.StoredAt) < c.ttl
}

func (c *Cache) fetch(ctx context.Context, location string) (Snapshot, error) {
	if !c.singleFlight {
		return c.fetchAndStore(ctx, location)
	}

	// The shared call must not die with the first caller that gives up.
	ch := c.group.DoChan(location, func() (any, error) {
		return c.fetchAndStore(context.WithoutCancel(ctx), location)
	})

	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		snap, ok := res.Val.(Snapshot)
		if !ok {
			return Snapshot{}, fmt.Errorf("unexpected single-flight result %T", res.Val)
		}
		return snap.Clone(), nil
	}
}

func (c *Cache) fetchAndStore(ctx context.Context, location string) (Snapshot, error) {
	fctx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	start := c.now()
	snap, err := c.provider.Fetch(fctx, location)
	c.metrics.ObserveFetch(c.now().Sub(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Snapshot{}, ctxErr
		}
		c.metrics.ProviderFailure()
		c.log.Error().Err(err).
			Str("provider", c.provider.Name()).
			Str("location", location).
			Msg("provider fetch failed")
		return Snapshot{}, NewProviderError(c.provider.Name(), location, err)
	}

	now := c.now()
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = now
	}
	c.store.Save(location, CacheEntry{Snapshot: snap.Clone(), StoredAt: now})

	c.log.Debug().
		Str("provider", c.provider.Name()).
		Str("location", location).
		Msg("snapshot stored")
	return snap, nil
}
