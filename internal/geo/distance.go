// Package geo implements the proximity core shared by the garbage-truck,
// home-distance and toilet features: two distance models, a threshold filter,
// a widening search, a top-K selector and the region partition lookup.
//
// Nothing in this package performs I/O. Candidates and the reference point
// arrive already parsed, which keeps every function here pure and easy to
// table-test.
package geo

import (
	"fmt"
	"math"

	"nearbot/internal/domain/entities"
)

const (
	// EarthRadiusKm is the equatorial radius used by the great-circle model.
	EarthRadiusKm = 6378.137

	// planarScale and planarFactor reproduce the empirically tuned
	// garbage-truck unit. The result is not meters.
	planarScale  = 10000
	planarFactor = 10
)

// DistanceFunc returns a non-negative distance between two points.
//
// Go Learning Note — Function Types:
// Declaring a named function type lets strategies be swapped like values.
// Planar and GreatCircle both satisfy DistanceFunc, so the caller picks one
// from configuration and the filter never needs to know which it got.
type DistanceFunc func(a, b entities.GeoPoint) float64

// Planar is the cheap planar approximation used for garbage-truck tracking.
// Its unit is deliberately uncalibrated; callers must use thresholds in the
// same unit.
func Planar(home, p entities.GeoPoint) float64 {
	dx := (p.Longitude - home.Longitude) * planarScale
	dy := (p.Latitude - home.Latitude) * planarScale
	return math.Sqrt(dx*dx+dy*dy) * planarFactor
}

// GreatCircle computes the haversine distance in meters.
func GreatCircle(a, b entities.GeoPoint) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := lat2 - lat1
	dLng := radians(b.Longitude) - radians(a.Longitude)

	sLat := math.Sin(dLat / 2)
	sLng := math.Sin(dLng / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat2)*sLng*sLng
	c := 2 * math.Asin(math.Sqrt(h))

	return c * EarthRadiusKm * 1000
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceModel names a distance strategy in configuration.
type DistanceModel string

const (
	ModelPlanar      DistanceModel = "planar"
	ModelGreatCircle DistanceModel = "great_circle"
)

// Func returns the strategy for the model.
func (m DistanceModel) Func() (DistanceFunc, error) {
	switch m {
	case ModelPlanar:
		return Planar, nil
	case ModelGreatCircle:
		return GreatCircle, nil
	default:
		return nil, fmt.Errorf("unknown distance model %q", string(m))
	}
}
