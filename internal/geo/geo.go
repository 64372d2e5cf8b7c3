// Package geo maps route coordinates onto the static bottleneck table.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Geo errors.
var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseCoordinate parses a "lat,lon" string into a Coordinate.
// Returns ErrInvalidCoordinate for malformed input or out-of-range values.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, parts[0])
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, parts[1])
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("%w: %f,%f out of range", ErrInvalidCoordinate, lat, lon)
	}

	return Coordinate{Lat: lat, Lon: lon}, nil
}

// Midpoint returns the point halfway between two coordinates.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{
		Lat: (a.Lat + b.Lat) / 2,
		Lon: (a.Lon + b.Lon) / 2,
	}
}

// Bottleneck is a fixed, named congestion point with known coordinates.
// The set is loaded at startup and immutable for the process lifetime.
type Bottleneck struct {
	ID       string
	Location Coordinate
}

// Resolution is the outcome of resolving a point against the bottleneck table.
type Resolution struct {
	// Bottleneck is the nearest bottleneck, nil when Found is false.
	Bottleneck *Bottleneck

	// Distance is the degree-space distance to the nearest bottleneck.
	// Set even when Found is false.
	Distance float64

	// Found is false when every bottleneck is beyond the distance threshold.
	Found bool
}

// Resolver finds the nearest known bottleneck to a point.
type Resolver struct {
	bottlenecks []Bottleneck
	maxDistance float64
}

// NewResolver creates a Resolver over the given bottleneck table.
// Bottlenecks are ordered lexicographically by ID so distance ties resolve
// deterministically. maxDistance is the degree-space cutoff beyond which no
// bottleneck is considered relevant; 0 selects the 0.1 degree default (~11km).
func NewResolver(bottlenecks []Bottleneck, maxDistance float64) *Resolver {
	if maxDistance <= 0 {
		maxDistance = 0.1
	}

	ordered := make([]Bottleneck, len(bottlenecks))
	copy(ordered, bottlenecks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	return &Resolver{
		bottlenecks: ordered,
		maxDistance: maxDistance,
	}
}

// Resolve returns the bottleneck nearest to the midpoint, or Found=false when
// the nearest one is farther than the configured cutoff.
func (r *Resolver) Resolve(midpoint Coordinate) Resolution {
	var (
		nearest *Bottleneck
		minDist = math.Inf(1)
	)

	for i := range r.bottlenecks {
		d := degreeDistance(midpoint, r.bottlenecks[i].Location)
		if d < minDist {
			minDist = d
			nearest = &r.bottlenecks[i]
		}
	}

	if nearest == nil || minDist > r.maxDistance {
		return Resolution{Distance: minDist}
	}

	return Resolution{
		Bottleneck: nearest,
		Distance:   minDist,
		Found:      true,
	}
}

// Bottlenecks returns the resolver's table in its stable iteration order.
func (r *Resolver) Bottlenecks() []Bottleneck {
	out := make([]Bottleneck, len(r.bottlenecks))
	copy(out, r.bottlenecks)
	return out
}

// degreeDistance is the Euclidean distance between two points in degree space.
// At bottleneck-resolution scale (a few km within one city) this is close
// enough to great-circle distance and matches how the cutoff was tuned.
func degreeDistance(a, b Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}
