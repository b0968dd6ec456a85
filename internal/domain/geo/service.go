// internal/domain/geo/service.go

package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a point on the Earth's surface in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within the usual degree ranges
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// String renders the coordinate as "lat,lng"
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// ParseCoordinate parses a "lat,lng" pair
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate %q: expected lat,lng", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: invalid latitude: %w", s, err)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: invalid longitude: %w", s, err)
	}

	return Coordinate{Latitude: lat, Longitude: lng}, nil
}

// Located is anything that may carry a coordinate
type Located interface {
	// Coordinate returns nil when the location was not specified
	Coordinate() *Coordinate
}

// Selector decides radius membership around an observer
type Selector interface {
	// DistanceKm returns the great-circle distance between two points
	DistanceKm(a, b Coordinate) float64

	// WithinRadius reports whether candidate lies within radiusKm of observer, boundary inclusive
	WithinRadius(observer, candidate Coordinate, radiusKm float64) bool

	// ResolveObserver picks the observer location: profile, then device, then the default
	ResolveObserver(profile, device *Coordinate) Coordinate

	// Visible applies the feed policy: unlocated candidates are always visible
	Visible(observer Coordinate, candidate *Coordinate, radiusKm float64) bool

	// NormalizeRadius applies the default and upper bound to a requested radius
	NormalizeRadius(radiusKm float64) float64
}
