package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-cache/internal/weather"
)

// FallbackProvider tries each provider in order and returns the first success.
type FallbackProvider struct {
	name      string
	providers []weather.Provider
	log       zerolog.Logger
}

func NewFallbackProvider(log zerolog.Logger, providers ...weather.Provider) *FallbackProvider {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return &FallbackProvider{
		name:      strings.Join(names, "+"),
		providers: providers,
		log:       log.With().Str("provider", "fallback").Logger(),
	}
}

func (f *FallbackProvider) Name() string {
	return f.name
}

func (f *FallbackProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	if len(f.providers) == 0 {
		return weather.Snapshot{}, weather.NewProviderError(f.name, location, fmt.Errorf("no weather providers configured"))
	}

	var errs []error
	for i, p := range f.providers {
		snap, err := p.Fetch(ctx, location)
		if err == nil {
			if i > 0 {
				f.log.Warn().
					Str("location", location).
					Str("served_by", p.Name()).
					Msg("primary provider failed; served by fallback")
			}
			return snap, nil
		}

		// Log and continue; a later provider may still succeed.
		f.log.Warn().Err(err).Str("location", location).Str("failed", p.Name()).Msg("provider fetch failed")
		errs = append(errs, err)

		// A spent deadline belongs to the provider that used it up; the rest
		// still get their turn. Cancellation stops the chain.
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return weather.Snapshot{}, &weather.ProviderError{Provider: f.name, Location: location, Err: errors.Join(errs...)}
		case ctx.Err() != nil:
			ctx = context.WithoutCancel(ctx)
		}
	}
	return weather.Snapshot{}, &weather.ProviderError{Provider: f.name, Location: location, Err: errors.Join(errs...)}
}
