// Package entities defines the core domain models for the bot: geographic
// points, the candidate records ranked by the geo package, and the small
// value types persisted in the key-value store.
//
// Go Learning Note — "internal/" directory:
// Packages under internal/ cannot be imported by code outside this module. Go
// enforces this at the compiler level. Nothing here depends on HTTP, LINE or a
// storage engine, so every other layer can import it freely.
package entities

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedCandidate is matched (via errors.Is) by every
// *MalformedCandidateError, so callers can decide to skip a single record
// without inspecting the concrete type.
var ErrMalformedCandidate = errors.New("malformed candidate")

// MalformedCandidateError reports a coordinate field that is not a usable
// number.
type MalformedCandidateError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedCandidateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed candidate: field %q value %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed candidate: field %q value %q", e.Field, e.Value)
}

func (e *MalformedCandidateError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformedCandidate) succeed for any instance.
func (e *MalformedCandidateError) Is(target error) bool {
	return target == ErrMalformedCandidate
}

// GeoPoint is a latitude/longitude pair in degrees.
//
// Go Learning Note — Value Types vs Reference Types:
// GeoPoint is 16 bytes and never mutated after construction, so it is passed
// and stored by value everywhere. Copies are cheap and there is no aliasing to
// reason about.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// NewGeoPoint creates a GeoPoint value from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{
		Latitude:  lat,
		Longitude: lng,
	}
}

// Validate reports whether the point lies inside the WGS-84 coordinate range.
// NaN fails every comparison, so the checks are written to reject it.
func (p GeoPoint) Validate() error {
	if !(p.Latitude >= -90 && p.Latitude <= 90) {
		return &MalformedCandidateError{Field: "latitude", Value: strconv.FormatFloat(p.Latitude, 'f', -1, 64)}
	}
	if !(p.Longitude >= -180 && p.Longitude <= 180) {
		return &MalformedCandidateError{Field: "longitude", Value: strconv.FormatFloat(p.Longitude, 'f', -1, 64)}
	}
	return nil
}

// ParseGeoPoint converts the textual coordinates delivered by upstream feeds
// into a GeoPoint. It fails fast with a *MalformedCandidateError instead of
// coercing bad input.
func ParseGeoPoint(lat, lng string) (GeoPoint, error) {
	la, err := parseCoordinate("latitude", lat)
	if err != nil {
		return GeoPoint{}, err
	}
	lo, err := parseCoordinate("longitude", lng)
	if err != nil {
		return GeoPoint{}, err
	}
	p := NewGeoPoint(la, lo)
	if err := p.Validate(); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

func parseCoordinate(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &MalformedCandidateError{Field: field, Value: raw, Err: err}
	}
	if math.IsNaN(v) {
		return 0, &MalformedCandidateError{Field: field, Value: raw}
	}
	return v, nil
}
