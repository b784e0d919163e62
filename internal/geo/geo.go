// Package geo resolves place names to coordinates through the Google
// Geocoding API.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyQuery    = errors.New("geocode query is empty")
	ErrMissingAPIKey = errors.New("geocoder api key is not configured")
)

// lookupFunc matches geocoder.Geocoding.
type lookupFunc func(geocoder.Address) (geocoder.Location, error)

// keyMu guards geocoder.ApiKey, which the library reads from package state.
var keyMu sync.Mutex

// Geocoder implements weather.Geocoder.
type Geocoder struct {
	apiKey string
	lookup lookupFunc
}

// New returns a Geocoder using apiKey.
func New(apiKey string) *Geocoder {
	return &Geocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

// Geocode resolves query, a free-form "City, Country" style name, to
// latitude and longitude.
func (g *Geocoder) Geocode(ctx context.Context, query string) (float64, float64, error) {
	addr, err := parseAddress(query)
	if err != nil {
		return 0, 0, err
	}
	if g.apiKey == "" {
		return 0, 0, ErrMissingAPIKey
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	// The library takes no context, so the lookup is abandoned rather than
	// cancelled when ctx ends first.
	go func() {
		keyMu.Lock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(addr)
		keyMu.Unlock()
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return 0, 0, fmt.Errorf("geocode %q: %w", query, res.err)
		}
		log.Debug().Str("query", query).Float64("lat", res.loc.Latitude).Float64("lon", res.loc.Longitude).Msg("geocoder resolved")
		return res.loc.Latitude, res.loc.Longitude, nil
	}
}

// parseAddress splits "City, State, Country" into an address. One part is
// the city, two are city and country, three or more are city, state and
// country with extra middle parts ignored.
func parseAddress(query string) (geocoder.Address, error) {
	var parts []string
	for _, p := range strings.Split(query, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return geocoder.Address{}, ErrEmptyQuery
	case 1:
		return geocoder.Address{City: parts[0]}, nil
	case 2:
		return geocoder.Address{City: parts[0], Country: parts[1]}, nil
	default:
		return geocoder.Address{City: parts[0], State: parts[1], Country: parts[len(parts)-1]}, nil
	}
}
