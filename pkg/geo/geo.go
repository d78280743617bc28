// Package geo computes great-circle distances and proximity scores
// between pharmacy locations, and provides the bounding-box pre-filter
// used for candidate search. Missing coordinates are a designed
// condition, not an error: proximity degrades to an indeterminate score
// that the composite scorer excludes instead of penalizing.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius used by the Haversine formula.
const EarthRadiusKM = 6371.0

// Default radii tuned for Nigerian urban pharmacy density.
const (
	// DefaultMatchRadiusKM is the distance within which two locations are
	// considered strong matches (urban pharmacies can be 500 m apart).
	DefaultMatchRadiusKM = 0.5

	// DefaultDecayRadiusKM is the distance beyond which the proximity
	// score drops to zero.
	DefaultDecayRadiusKM = 2.0
)

// Status describes whether a proximity score could be computed.
type Status string

// Proximity computation statuses.
const (
	StatusComputed    Status = "computed"
	StatusMissingA    Status = "missing_coords_a"
	StatusMissingB    Status = "missing_coords_b"
	StatusMissingBoth Status = "missing_coords_both"
)

// Coordinate is a WGS84 coordinate pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// InNigeria reports whether the coordinate falls within Nigeria's
// bounding box, as a cheap sanity check on geocoded records.
func (c Coordinate) InNigeria() bool {
	return c.Latitude >= 3.0 && c.Latitude <= 14.0 &&
		c.Longitude >= 2.0 && c.Longitude <= 15.0
}

// BoundingBox is a lat/lon box in degrees.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate lies within the box.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// Proximity is the result of comparing two record locations.
type Proximity struct {
	// DistanceKM is the great-circle distance, nil when either side
	// lacks coordinates.
	DistanceKM *float64 `json:"distance_km"`

	// Score is the proximity similarity in [0, 1], nil (indeterminate)
	// when either side lacks coordinates.
	Score *float64 `json:"score"`

	Status Status `json:"status"`
}

// Haversine computes the great-circle distance in kilometres between two
// WGS84 points. Symmetric; zero for identical points.
func Haversine(a, b Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dlat := radians(b.Latitude - a.Latitude)
	dlon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKM * c
}

// Score maps a distance to a proximity similarity in [0, 1] using a
// two-segment linear decay:
//
//	distance == 0            → 1.0
//	distance <= matchRadius  → linear 1.0 → 0.5
//	distance <= decayRadius  → linear 0.5 → 0.0
//	distance >  decayRadius  → 0.0
//
// The inner segment keeps very close points scoring high while the outer
// segment still yields a signal for moderately close locations.
func Score(distanceKM, matchRadiusKM, decayRadiusKM float64) float64 {
	if distanceKM <= matchRadiusKM {
		if matchRadiusKM == 0 {
			return 1.0
		}
		return 1.0 - 0.5*(distanceKM/matchRadiusKM)
	}
	if distanceKM <= decayRadiusKM {
		span := decayRadiusKM - matchRadiusKM
		if span == 0 {
			return 0.0
		}
		return 0.5 * (1.0 - (distanceKM-matchRadiusKM)/span)
	}
	return 0.0
}

// Compute compares two possibly-missing coordinate pairs. When either
// side lacks coordinates the score is indeterminate (nil), never 0.0: a
// zero would be indistinguishable from "confirmed far apart".
func Compute(latA, lonA, latB, lonB *float64, matchRadiusKM, decayRadiusKM float64) Proximity {
	missingA := latA == nil || lonA == nil
	missingB := latB == nil || lonB == nil

	switch {
	case missingA && missingB:
		return Proximity{Status: StatusMissingBoth}
	case missingA:
		return Proximity{Status: StatusMissingA}
	case missingB:
		return Proximity{Status: StatusMissingB}
	}

	a := Coordinate{Latitude: *latA, Longitude: *lonA}
	b := Coordinate{Latitude: *latB, Longitude: *lonB}

	dist := round4(Haversine(a, b))
	score := round4(Score(dist, matchRadiusKM, decayRadiusKM))

	return Proximity{
		DistanceKM: &dist,
		Score:      &score,
		Status:     StatusComputed,
	}
}

// Box returns a lat/lon bounding box enclosing a circle of radiusKM
// around the target. The longitude delta widens by 1/cos(latitude) to
// account for meridian convergence.
func Box(target Coordinate, radiusKM float64) BoundingBox {
	latDelta := radiusKM / EarthRadiusKM * (180.0 / math.Pi)
	lonDelta := latDelta / math.Cos(radians(target.Latitude))

	return BoundingBox{
		MinLat: target.Latitude - latDelta,
		MaxLat: target.Latitude + latDelta,
		MinLon: target.Longitude - lonDelta,
		MaxLon: target.Longitude + lonDelta,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
