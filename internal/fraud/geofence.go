package fraud

import "math"

// Geofence is the farm's configured operating area: a center coordinate
// and a per-axis radius in degrees. It is injected at construction, not
// read from a hidden global, so tests can supply alternates.
type Geofence struct {
	Latitude  float64
	Longitude float64
	Radius    float64
}

// Contains reports whether a claimed coordinate falls inside the fence.
// This is an independent per-axis box check, not a great-circle
// containment test; the coarser tolerance is intentional. A missing or
// non-numeric coordinate is always outside.
func (g Geofence) Contains(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	if math.IsNaN(*lat) || math.IsNaN(*lon) || math.IsInf(*lat, 0) || math.IsInf(*lon, 0) {
		return false
	}
	return math.Abs(*lat-g.Latitude) <= g.Radius &&
		math.Abs(*lon-g.Longitude) <= g.Radius
}
