// Package geo resolves free-form location keys to coordinates and back.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
)

var (
	// ErrNotFound is returned when a query or coordinate resolves to nothing.
	ErrNotFound = errors.New("location not found")
	// ErrNotConfigured is returned when no geocoding API key is set.
	ErrNotConfigured = errors.New("geocoder api key is not configured")
)

// Place is a resolved location.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Geocoder resolves location keys to places and coordinates to place names.
type Geocoder interface {
	Locate(ctx context.Context, query string) (Place, error)
	Reverse(ctx context.Context, lat, lon float64) (Place, error)
}

// GoogleGeocoder implements Geocoder on top of the Google Maps geocoding API.
type GoogleGeocoder struct {
	forward func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder configures the geocoding client with apiKey.
// The underlying client keeps the key in package state, so only one key per process is supported.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		forward: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}, nil
}

// Locate resolves query to coordinates. The place name is the reverse
// lookup's "City, State" when available, otherwise the query itself.
func (g *GoogleGeocoder) Locate(ctx context.Context, query string) (Place, error) {
	if err := ctx.Err(); err != nil {
		return Place{}, err
	}

	loc, err := g.forward(geocoder.Address{City: query})
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", query, err)
	}

	place := Place{Name: query, Lat: loc.Latitude, Lon: loc.Longitude}
	if ctx.Err() == nil {
		if addrs, err := g.reverse(loc); err == nil && len(addrs) > 0 {
			if name := displayName(addrs[0]); name != "" {
				place.Name = name
			}
		}
	}
	return place, nil
}

// Reverse resolves coordinates to a "City, State" place name.
func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	if err := ctx.Err(); err != nil {
		return Place{}, err
	}

	addrs, err := g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode %f,%f: %w", lat, lon, err)
	}
	for _, addr := range addrs {
		if name := displayName(addr); name != "" {
			return Place{Name: name, Lat: lat, Lon: lon}, nil
		}
	}
	return Place{}, ErrNotFound
}

func displayName(addr geocoder.Address) string {
	var parts []string
	for _, p := range []string{addr.City, addr.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ")
}
