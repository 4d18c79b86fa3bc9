package geo

import (
	gomath "math"

	"github.com/paulmach/orb"
)

// LatLon is a position on the sphere in degrees.
type LatLon struct {
	Lat, Lon float64
}

// NewBounds returns the box with the given north, south, east and west
// edges. East may be smaller than west for boxes crossing the antimeridian.
func NewBounds(n, s, e, w float64) orb.Bound {
	return orb.Bound{Min: orb.Point{w, s}, Max: orb.Point{e, n}}
}

// World covers the whole sphere.
var World = NewBounds(North, South, East, West)

// Extent returns the box covering the given points. Longitudes are unwrapped
// across the antimeridian, so the result may extend past 180 east. Pole
// points contribute their latitude only.
func Extent(points ...LatLon) orb.Bound {
	n, s := gomath.Inf(-1), gomath.Inf(1)
	lons := make([]float64, 0, len(points))
	for _, p := range points {
		n = gomath.Max(n, p.Lat)
		s = gomath.Min(s, p.Lat)
		if !IsPole(p.Lat) {
			lons = append(lons, p.Lon)
		}
	}
	if len(lons) == 0 {
		return NewBounds(n, s, East, West)
	}

	w, e := minMax(lons)
	if e-w > 180 {
		for i, lon := range lons {
			if lon < 0 {
				lons[i] = lon + 360
			}
		}
		w, e = minMax(lons)
	}
	return NewBounds(n, s, e, w)
}

func minMax(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = gomath.Min(lo, v)
		hi = gomath.Max(hi, v)
	}
	return lo, hi
}

// Pad grows a box by frac of its size on every side plus a small absolute
// margin, clamping latitude to the poles.
func Pad(b orb.Bound, frac float64) orb.Bound {
	dLat := (b.Top()-b.Bottom())*frac + 1e-7
	dLon := (b.Right()-b.Left())*frac + 1e-7
	return NewBounds(
		gomath.Min(North, b.Top()+dLat),
		gomath.Max(South, b.Bottom()-dLat),
		b.Right()+dLon,
		b.Left()-dLon,
	)
}

// Intersects reports whether a and q overlap, treating longitude as
// periodic. Either box may be unwrapped past 180 east, and q may have its
// east edge west of its west edge.
func Intersects(a, q orb.Bound) bool {
	for _, part := range splitAntimeridian(q) {
		for _, shift := range [...]float64{0, -360, 360} {
			if shiftLon(a, shift).Intersects(part) {
				return true
			}
		}
	}
	return false
}

// Contains reports whether the box covers the position, treating longitude
// as periodic.
func Contains(b orb.Bound, p LatLon) bool {
	if p.Lat < b.Bottom() || p.Lat > b.Top() {
		return false
	}
	if IsPole(p.Lat) {
		return true
	}
	for _, part := range splitAntimeridian(b) {
		for _, shift := range [...]float64{0, -360, 360} {
			lon := p.Lon + shift
			if lon >= part.Left() && lon <= part.Right() {
				return true
			}
		}
	}
	return false
}

// Size returns the angular size of a box in degrees: the larger of its
// latitude span and its longitude span measured at the box's middle latitude.
func Size(b orb.Bound) float64 {
	lonSpan := b.Right() - b.Left()
	if lonSpan < 0 {
		lonSpan += 360
	}
	mid := (b.Top() + b.Bottom()) / 2
	return gomath.Max(b.Top()-b.Bottom(), lonSpan*gomath.Cos(mid*gomath.Pi/180))
}

func splitAntimeridian(b orb.Bound) []orb.Bound {
	if b.Right() >= b.Left() {
		return []orb.Bound{b}
	}
	return []orb.Bound{
		NewBounds(b.Top(), b.Bottom(), East, b.Left()),
		NewBounds(b.Top(), b.Bottom(), b.Right(), West),
	}
}

func shiftLon(b orb.Bound, d float64) orb.Bound {
	if d == 0 {
		return b
	}
	return orb.Bound{
		Min: orb.Point{b.Min[0] + d, b.Min[1]},
		Max: orb.Point{b.Max[0] + d, b.Max[1]},
	}
}
