package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geographic represents a position on the sphere surface
type Geographic struct {
	Lat float64 // Latitude in radians [-π/2, π/2], positive = north
	Lon float64 // Longitude in radians, positive = east
}

// DegreesToRadians converts degrees to radians
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// RadiansToDegrees converts radians to degrees
func RadiansToDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// GeographicToCartesian converts geographic coordinates to a point at the
// given radius. Y points to the north pole, X to 0° longitude and Z to 90°E.
func GeographicToCartesian(g Geographic, radius float32) mgl32.Vec3 {
	cosLat := math.Cos(g.Lat)

	return mgl32.Vec3{
		radius * float32(cosLat*math.Cos(g.Lon)),
		radius * float32(math.Sin(g.Lat)),
		radius * float32(cosLat*math.Sin(g.Lon)),
	}
}

// CartesianToGeographic converts a point to geographic coordinates.
// The origin maps to (0, 0).
func CartesianToGeographic(p mgl32.Vec3) Geographic {
	r := float64(p.Len())
	if r < 1e-10 {
		return Geographic{}
	}

	return Geographic{
		Lat: math.Asin(clampUnit(float64(p.Y()) / r)),
		Lon: math.Atan2(float64(p.Z()), float64(p.X())),
	}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
