// Package geocode resolves a coordinate into a street address when a LINE
// location message arrives without one. The address is only used as a hint
// for the toilet partition lookup, so a failed lookup is never fatal.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"nearbot/internal/domain/entities"
)

// ErrNoResult is returned when the geocoder knows no address for the point.
var ErrNoResult = errors.New("no address for point")

// Reverse is implemented by anything that can turn a point into an address.
type Reverse interface {
	ReverseGeocode(ctx context.Context, p entities.GeoPoint) (string, error)
}

// GoogleGeocoder wraps the Google Maps reverse-geocoding API.
type GoogleGeocoder struct {
	client   *maps.Client
	language string
	timeout  time.Duration
}

// Option customizes a GoogleGeocoder.
type Option func(*[]maps.ClientOption)

// WithBaseURL points the client at another endpoint, e.g. an httptest server.
func WithBaseURL(url string) Option {
	return func(opts *[]maps.ClientOption) {
		*opts = append(*opts, maps.WithBaseURL(url))
	}
}

// NewGoogle builds a geocoder for apiKey. An empty key is a configuration
// error; callers should skip geocoding instead of constructing one.
func NewGoogle(apiKey, language string, timeout time.Duration, options ...Option) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}
	clientOpts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	for _, opt := range options {
		opt(&clientOpts)
	}
	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, language: language, timeout: timeout}, nil
}

// ReverseGeocode returns the formatted address of the best match.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, p entities.GeoPoint) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Latitude, Lng: p.Longitude},
		Language: g.language,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return "", ErrNoResult
		}
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	for _, r := range results {
		if r.FormattedAddress != "" {
			return r.FormattedAddress, nil
		}
	}
	return "", ErrNoResult
}
