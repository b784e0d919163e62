package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		query string
		want  geocoder.Address
	}{
		{"Berlin", geocoder.Address{City: "Berlin"}},
		{" Lyon , France ", geocoder.Address{City: "Lyon", Country: "France"}},
		{"Austin, Texas, USA", geocoder.Address{City: "Austin", State: "Texas", Country: "USA"}},
		{"Springfield,, Illinois, Sangamon, USA", geocoder.Address{City: "Springfield", State: "Illinois", Country: "USA"}},
	}
	for _, tt := range tests {
		got, err := parseAddress(tt.query)
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.want, got, tt.query)
	}

	_, err := parseAddress(" , ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestGeocode(t *testing.T) {
	var seen geocoder.Address
	g := &Geocoder{apiKey: "k", lookup: func(a geocoder.Address) (geocoder.Location, error) {
		seen = a
		return geocoder.Location{Latitude: 48.86, Longitude: 2.35}, nil
	}}

	lat, lon, err := g.Geocode(context.Background(), "Paris, France")
	require.NoError(t, err)
	assert.Equal(t, 48.86, lat)
	assert.Equal(t, 2.35, lon)
	assert.Equal(t, "Paris", seen.City)
	assert.Equal(t, "France", seen.Country)
}

func TestGeocodeErrors(t *testing.T) {
	_, _, err := New("").Geocode(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	lookupErr := errors.New("ZERO_RESULTS")
	g := &Geocoder{apiKey: "k", lookup: func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, lookupErr
	}}
	_, _, err = g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, lookupErr)
}

func TestGeocodeHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	g := &Geocoder{apiKey: "k", lookup: func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{}, nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := g.Geocode(ctx, "Slowtown")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
