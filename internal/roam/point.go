package roam

import (
	gomath "math"

	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// normalStep is the finite difference step in degrees used to derive
// normals from a height source.
const normalStep = 0.001

// point is a vertex shared by every triangle that references it as a corner
// or split point.
type point struct {
	lat, lon float64
	elev     float64
	pos      math.Vec3
	norm     math.Vec3
	src      HeightSource
	dirty    bool
	refs     int
}

func (s *Sphere) pt(id pointID) *point {
	return s.points.at(int32(id))
}

// newPoint creates an unreferenced point and evaluates its height.
func (s *Sphere) newPoint(lat, lon float64, src HeightSource) pointID {
	id := pointID(s.points.alloc())
	p := s.pt(id)
	p.lat, p.lon = lat, lon
	p.src = src
	p.refresh()
	return id
}

func (s *Sphere) ref(id pointID) {
	s.pt(id).refs++
}

func (s *Sphere) unref(id pointID) {
	p := s.pt(id)
	p.refs--
	if p.refs < 0 {
		panic("roam: negative point refcount")
	}
	if p.refs == 0 {
		s.points.release(int32(id))
	}
}

// sample evaluates the bound source, mapping missing data to sea level.
func (p *point) sample(lat, lon float64) float64 {
	if p.src == nil {
		return 0
	}
	h, ok := p.src.Height(lat, lon)
	if !ok || gomath.IsNaN(h) || gomath.IsInf(h, 0) {
		return 0
	}
	return h
}

// refresh recomputes elevation, position and normal from the binding.
func (p *point) refresh() {
	p.elev = p.sample(p.lat, p.lon)
	p.pos = geo.LLEToXYZ(p.lat, p.lon, p.elev)
	p.norm = p.normal()
	p.dirty = false
}

func (p *point) normal() math.Vec3 {
	radial := geo.UnitVector(p.lat, p.lon)
	if p.src == nil || geo.IsPole(p.lat) {
		return radial
	}
	n := geo.LLEToXYZ(p.lat+normalStep, p.lon, p.sample(p.lat+normalStep, p.lon))
	sth := geo.LLEToXYZ(p.lat-normalStep, p.lon, p.sample(p.lat-normalStep, p.lon))
	e := geo.LLEToXYZ(p.lat, p.lon+normalStep, p.sample(p.lat, p.lon+normalStep))
	w := geo.LLEToXYZ(p.lat, p.lon-normalStep, p.sample(p.lat, p.lon-normalStep))
	norm := e.Sub(w).Cross(n.Sub(sth)).Normalize()
	if norm.Dot(radial) <= 0 {
		return radial
	}
	return norm
}

func (p *point) vertex() Vertex {
	return Vertex{
		Lat:    p.lat,
		Lon:    p.lon,
		Elev:   p.elev,
		Pos:    p.pos,
		Normal: p.norm,
	}
}
