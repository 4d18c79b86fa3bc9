package roam

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/Faultbox/roamsphere/pkg/geo"
)

// boundsPad is the fraction a triangle's lat/lon box is grown by so that
// the bulge of the curved patch past its corners stays inside.
const boundsPad = 0.1

// triangle is a node of a binary triangle tree. A slot is a leaf while
// kids[0] is none and internal otherwise.
type triangle struct {
	p      [3]pointID
	split  pointID
	t      [3]triID
	parent triID
	kids   [2]triID
	dia    diamondID
	depth  int
	bounds orb.Bound
	// size is the angular length of the base edge in degrees.
	size float64
}

func (t *triangle) leaf() bool {
	return t.kids[0] == none
}

func (s *Sphere) tri(id triID) *triangle {
	return s.tris.at(int32(id))
}

// newTriangle allocates a leaf with the given corners. Neighbor links are
// left for the caller to wire.
func (s *Sphere) newTriangle(l, m, r pointID, parent triID, depth int) triID {
	id := triID(s.tris.alloc())
	t := s.tri(id)
	t.p = [3]pointID{l, m, r}
	t.split = none
	t.t = [3]triID{none, none, none}
	t.parent = parent
	t.kids = [2]triID{none, none}
	t.dia = none
	t.depth = depth
	for _, pid := range t.p {
		s.ref(pid)
	}

	pl, pm, pr := s.pt(l), s.pt(m), s.pt(r)
	t.size = geo.AngularDistance(pl.pos, pr.pos)

	mlLat, mlLon := geo.Midpoint(pm.lat, pm.lon, pl.lat, pl.lon)
	mrLat, mrLon := geo.Midpoint(pm.lat, pm.lon, pr.lat, pr.lon)
	lrLat, lrLon := geo.Midpoint(pl.lat, pl.lon, pr.lat, pr.lon)
	t.bounds = geo.Pad(geo.Extent(
		geo.LatLon{Lat: pl.lat, Lon: pl.lon},
		geo.LatLon{Lat: pm.lat, Lon: pm.lon},
		geo.LatLon{Lat: pr.lat, Lon: pr.lon},
		geo.LatLon{Lat: mlLat, Lon: mlLon},
		geo.LatLon{Lat: mrLat, Lon: mrLon},
		geo.LatLon{Lat: lrLat, Lon: lrLon},
	), boundsPad)
	return id
}

// freeTriangle drops a leaf from the split queue and releases its points.
func (s *Sphere) freeTriangle(id triID) {
	t := s.tri(id)
	if !t.leaf() {
		panic(fmt.Sprintf("roam: freeing internal triangle %d", id))
	}
	s.splitQ.remove(int32(id))
	for _, pid := range t.p {
		s.unref(pid)
	}
	if t.split != none {
		s.unref(t.split)
	}
	s.tris.release(int32(id))
}

// splitPoint returns the midpoint of the base edge, creating it on first
// use. The point is shared with the base neighbor when the two form a
// diamond.
func (s *Sphere) splitPoint(id triID) pointID {
	t := s.tri(id)
	if t.split != none {
		return t.split
	}
	if b := t.t[nBase]; b != none {
		if bt := s.tri(b); bt.t[nBase] == id && bt.split != none {
			t.split = bt.split
			s.ref(t.split)
			return t.split
		}
	}

	l, r := s.pt(t.p[left]), s.pt(t.p[right])
	lat, lon := geo.Midpoint(l.lat, l.lon, r.lat, r.lon)
	pid := s.newPoint(lat, lon, s.sourceAt(lat, lon))
	t.split = pid
	s.ref(pid)
	return pid
}

// replaceNeighbor points the slot of n that refers to old at repl instead.
func (s *Sphere) replaceNeighbor(n, old, repl triID) {
	nt := s.tri(n)
	for i, id := range nt.t {
		if id == old {
			nt.t[i] = repl
			return
		}
	}
	panic(fmt.Sprintf("roam: triangle %d is not a neighbor of %d", old, n))
}

// edge returns the directed edge shared with the neighbor in slot i,
// following the counter-clockwise winding apex, left, right seen from
// outside the sphere.
func (t *triangle) edge(i int) (a, b pointID) {
	switch i {
	case nLeft:
		return t.p[apex], t.p[left]
	case nBase:
		return t.p[left], t.p[right]
	default:
		return t.p[right], t.p[apex]
	}
}
