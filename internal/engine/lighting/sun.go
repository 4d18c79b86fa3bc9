// Package lighting provides sun shading for the globe.
package lighting

import (
	gomath "math"
	"time"

	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// Sun is a directional light.
type Sun struct {
	Direction math.Vec3 // Normalized, pointing towards the sun
	Ambient   float64   // Light level on the night side (0-1)
}

// SunDirection converts the subsolar point (where the sun is at the zenith)
// to a direction vector pointing towards the sun.
func SunDirection(lat, lon float64) math.Vec3 {
	return geo.UnitVector(lat, lon)
}

// SubsolarPoint approximates the subsolar point at t, ignoring the
// equation of time.
func SubsolarPoint(t time.Time) (lat, lon float64) {
	t = t.UTC()
	day := float64(t.YearDay())
	lat = -23.44 * gomath.Cos(2*gomath.Pi/365*(day+10))

	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	lon = geo.NormalizeLon((12 - hours) * 15)
	return lat, lon
}

// NewSun creates a sun above lat, lon.
func NewSun(lat, lon, ambient float64) Sun {
	return Sun{Direction: SunDirection(lat, lon), Ambient: ambient}
}

// SunAt creates a sun for the given time.
func SunAt(t time.Time, ambient float64) Sun {
	lat, lon := SubsolarPoint(t)
	return NewSun(lat, lon, ambient)
}

// Intensity returns the Lambert light level for a surface normal, between
// Ambient and 1.
func (s Sun) Intensity(normal math.Vec3) float64 {
	d := gomath.Max(normal.Dot(s.Direction), 0)
	return s.Ambient + (1-s.Ambient)*d
}

// ShadeFacet lights a facet by the mean of its corner normals, so shading
// follows the bound terrain rather than the flat chord.
func (s Sun) ShadeFacet(f roam.Facet) float64 {
	var n math.Vec3
	for _, c := range f.Corners {
		n = n.Add(c.Normal)
	}
	if n.Length() == 0 {
		n = f.Normal()
	}
	return s.Intensity(n.Normalize())
}
