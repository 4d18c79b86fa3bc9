// Package geo provides geodesy helpers for a spherical planet: conversions
// between latitude/longitude/elevation and world coordinates, and lat/lon
// bounding boxes that understand the antimeridian and the poles.
//
// World coordinates put the north pole on +Y, longitude 0 on +Z and
// longitude 90E on +X.
package geo

import (
	gomath "math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/Faultbox/roamsphere/pkg/math"
)

// EarthRadius is the mean radius of the earth in meters.
const EarthRadius = 6371000.0

// EarthCircumference is the circumference of the earth at the equator.
const EarthCircumference = 2 * gomath.Pi * EarthRadius

// Extreme latitudes and longitudes in degrees.
const (
	North = 90.0
	South = -90.0
	East  = 180.0
	West  = -180.0
)

// poleEpsilon is how close to +-90 a latitude must be to count as a pole.
const poleEpsilon = 1e-9

// ElevToRadius converts an elevation above the surface to a radius.
func ElevToRadius(elev float64) float64 { return elev + EarthRadius }

// RadiusToElev converts a radius to an elevation above the surface.
func RadiusToElev(rad float64) float64 { return rad - EarthRadius }

// IsPole reports whether lat is the north or south pole.
func IsPole(lat float64) bool {
	return gomath.Abs(gomath.Abs(lat)-90) < poleEpsilon
}

// toS2 maps world coordinates onto the s2 frame (+Z north, +X lon 0).
func toS2(v math.Vec3) s2.Point {
	return s2.Point{Vector: r3.Vector{X: v.Z, Y: v.X, Z: v.Y}}
}

func fromS2(p s2.Point) math.Vec3 {
	return math.Vec3{X: p.Y, Y: p.Z, Z: p.X}
}

// UnitVector returns the unit vector pointing at lat, lon (degrees).
func UnitVector(lat, lon float64) math.Vec3 {
	return fromS2(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}

// LLEToXYZ converts latitude, longitude (degrees) and elevation (meters)
// to world coordinates.
func LLEToXYZ(lat, lon, elev float64) math.Vec3 {
	return UnitVector(lat, lon).Scale(ElevToRadius(elev))
}

// XYZToLL returns the latitude and longitude of the direction v.
func XYZToLL(v math.Vec3) (lat, lon float64) {
	ll := s2.LatLngFromPoint(toS2(v))
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// XYZToLLE converts world coordinates back to latitude, longitude and
// elevation.
func XYZToLLE(v math.Vec3) (lat, lon, elev float64) {
	lat, lon = XYZToLL(v)
	return lat, lon, RadiusToElev(v.Length())
}

// AngularDistance returns the great circle angle between two directions
// in degrees. The vectors need not be normalized.
func AngularDistance(a, b math.Vec3) float64 {
	pa := s2.Point{Vector: toS2(a).Normalize()}
	pb := s2.Point{Vector: toS2(b).Normalize()}
	return pa.Distance(pb).Degrees()
}

// SphericalArea returns the area of the spherical triangle a, b, c on the
// unit sphere, in steradians.
func SphericalArea(a, b, c math.Vec3) float64 {
	return s2.PointArea(
		s2.Point{Vector: toS2(a).Normalize()},
		s2.Point{Vector: toS2(b).Normalize()},
		s2.Point{Vector: toS2(c).Normalize()},
	)
}

// Midpoint returns the great circle midpoint of two directions as
// latitude and longitude.
func Midpoint(latA, lonA, latB, lonB float64) (lat, lon float64) {
	a := UnitVector(latA, lonA)
	b := UnitVector(latB, lonB)
	return XYZToLL(a.Add(b))
}

// NormalizeLon wraps a longitude into (-180, 180].
func NormalizeLon(lon float64) float64 {
	return s1.Angle(lon * gomath.Pi / 180).Normalized().Degrees()
}

// LonAvg averages two longitudes, taking the short way around.
func LonAvg(a, b float64) float64 {
	if b-a > 180 {
		b -= 360
	} else if a-b > 180 {
		a -= 360
	}
	return NormalizeLon((a + b) / 2)
}

// MetersPerDegree returns the length of one degree of longitude at lat.
func MetersPerDegree(lat float64) float64 {
	return EarthCircumference / 360 * gomath.Cos(lat*gomath.Pi/180)
}
