// internal/service/geo/service.go

package geo

import (
	"math"

	"github.com/stelios-avg/locom/internal/domain/geo"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula
const EarthRadiusKm = 6371.0

// DefaultRadiusKm is the feed radius when the caller does not pick one
const DefaultRadiusKm = 5.0

// DefaultObserver is used when neither a profile nor a device location is known
var DefaultObserver = geo.Coordinate{Latitude: 35.1856, Longitude: 33.3823}

// Config contains configuration for the radius selector
type Config struct {
	DefaultRadius   float64
	MaxRadius       float64
	DefaultObserver geo.Coordinate
}

// DefaultConfig returns the selector defaults
func DefaultConfig() Config {
	return Config{
		DefaultRadius:   DefaultRadiusKm,
		MaxRadius:       100,
		DefaultObserver: DefaultObserver,
	}
}

// RadiusSelector implements the geo.Selector interface
type RadiusSelector struct {
	config Config
}

// NewRadiusSelector creates a new radius selector
func NewRadiusSelector(config Config) *RadiusSelector {
	if config.DefaultRadius <= 0 {
		config.DefaultRadius = DefaultRadiusKm
	}
	return &RadiusSelector{config: config}
}

// DistanceKm calculates the distance between two locations in kilometers
func (s *RadiusSelector) DistanceKm(a, b geo.Coordinate) float64 {
	return DistanceKm(a, b)
}

// WithinRadius reports whether candidate is at most radiusKm from observer
func (s *RadiusSelector) WithinRadius(observer, candidate geo.Coordinate, radiusKm float64) bool {
	return WithinRadius(observer, candidate, radiusKm)
}

// ResolveObserver walks the fallback chain profile -> device -> default.
// A zero coordinate is a real location here; only nil means unknown.
func (s *RadiusSelector) ResolveObserver(profile, device *geo.Coordinate) geo.Coordinate {
	switch {
	case profile != nil:
		return *profile
	case device != nil:
		return *device
	default:
		return s.config.DefaultObserver
	}
}

// Visible reports whether a candidate belongs in the observer's feed
func (s *RadiusSelector) Visible(observer geo.Coordinate, candidate *geo.Coordinate, radiusKm float64) bool {
	if candidate == nil {
		return true
	}
	return WithinRadius(observer, *candidate, radiusKm)
}

// NormalizeRadius returns the default radius for non-positive input and caps it at MaxRadius
func (s *RadiusSelector) NormalizeRadius(radiusKm float64) float64 {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return s.config.DefaultRadius
	}
	if s.config.MaxRadius > 0 && radiusKm > s.config.MaxRadius {
		return s.config.MaxRadius
	}
	return radiusKm
}

// DistanceKm is the Haversine great-circle distance between a and b
func DistanceKm(a, b geo.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLon / 2)
	vSin *= vSin

	// Rounding can push h just past 1 for antipodal points
	h := math.Min(1, hSin+math.Cos(lat1)*math.Cos(lat2)*vSin)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether DistanceKm(observer, candidate) <= radiusKm
func WithinRadius(observer, candidate geo.Coordinate, radiusKm float64) bool {
	return DistanceKm(observer, candidate) <= radiusKm
}

// FilterVisible keeps the items the selector shows around observer, preserving order
func FilterVisible[T geo.Located](s geo.Selector, observer geo.Coordinate, items []T, radiusKm float64) []T {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if s.Visible(observer, item.Coordinate(), radiusKm) {
			visible = append(visible, item)
		}
	}
	return visible
}
