package waylib

import "math"

// Distance returns the great-circle angular distance between two
// points given in degrees. The result is in radians: multiply by the
// sphere radius to get a length.
//
// Each point is converted to colatitude/longitude and the spherical
// law of cosines is applied. The arccos argument is clamped to [-1, 1]:
// for identical or antipodal points rounding can push it fractionally
// outside the domain, and math.Acos would return NaN instead of 0 or π.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degreesToRadians(90.0 - lat1)
	phi2 := degreesToRadians(90.0 - lat2)
	theta1 := degreesToRadians(lon1)
	theta2 := degreesToRadians(lon2)

	cosValue := math.Sin(phi1)*math.Sin(phi2)*math.Cos(theta1-theta2) +
		math.Cos(phi1)*math.Cos(phi2)

	switch {
	case cosValue > 1.0:
		cosValue = 1.0
	case cosValue < -1.0:
		cosValue = -1.0
	}

	return math.Acos(cosValue)
}

// DistanceTo returns the angular distance to another location.
func (l Location) DistanceTo(other Location) float64 {
	return Distance(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
