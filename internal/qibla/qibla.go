// Package qibla computes the direction of the Kaaba from a location.
package qibla

import (
	"fmt"
	"math"

	"github.com/julianstephens/ihsan/internal/constants"
)

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Bearing returns the initial great-circle bearing in degrees clockwise from
// true north, in [0, 360).
func Bearing(lat, lon float64) (float64, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, fmt.Errorf("coordinates out of range: %g,%g", lat, lon)
	}
	phi1 := radians(lat)
	phi2 := radians(constants.KaabaLatitude)
	dLambda := radians(constants.KaabaLongitude - lon)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return normalize(degrees(math.Atan2(y, x))), nil
}

// Cardinal returns the nearest of the 16 compass points for a bearing.
func Cardinal(bearing float64) string {
	idx := int(math.Floor(normalize(bearing)/22.5+0.5)) % len(compassPoints)
	return compassPoints[idx]
}

// Describe formats a bearing as e.g. "58.5° NE".
func Describe(bearing float64) string {
	return fmt.Sprintf("%.1f° %s", bearing, Cardinal(bearing))
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }
