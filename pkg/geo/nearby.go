package geo

import "sort"

// Neighbor is a candidate point found within a search radius.
type Neighbor struct {
	// Index into the candidates slice passed to Nearby.
	Index int

	DistanceKM float64
	Score      float64
}

// Nearby returns the candidates within radiusKM of the target, sorted
// ascending by distance. A bounding-box pre-filter runs before the exact
// Haversine check so compute stays proportional to local density rather
// than total candidate count.
func Nearby(target Coordinate, candidates []Coordinate, radiusKM float64) []Neighbor {
	box := Box(target, radiusKM)

	var nearby []Neighbor
	for i, c := range candidates {
		if !box.Contains(c) {
			continue
		}
		dist := Haversine(target, c)
		if dist > radiusKM {
			continue
		}
		nearby = append(nearby, Neighbor{
			Index:      i,
			DistanceKM: round4(dist),
			Score:      round4(Score(dist, DefaultMatchRadiusKM, DefaultDecayRadiusKM)),
		})
	}

	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKM != nearby[j].DistanceKM {
			return nearby[i].DistanceKM < nearby[j].DistanceKM
		}
		return nearby[i].Index < nearby[j].Index
	})
	return nearby
}
