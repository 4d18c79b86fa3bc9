package roam

import (
	"github.com/paulmach/orb"

	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// Vertex is a snapshot of a mesh point.
type Vertex struct {
	Lat, Lon float64
	Elev     float64
	Pos      math.Vec3
	Normal   math.Vec3
}

// Facet is a snapshot of a leaf triangle, safe to use after the sphere lock
// is released.
type Facet struct {
	// Corners are left, apex and right, wound counter-clockwise seen from
	// outside the sphere.
	Corners [3]Vertex
	Bounds  orb.Bound
	Depth   int
	Error   float64
}

// Normal returns the outward face normal of the facet.
func (f Facet) Normal() math.Vec3 {
	l, m, r := f.Corners[left].Pos, f.Corners[apex].Pos, f.Corners[right].Pos
	return l.Sub(m).Cross(r.Sub(m)).Normalize()
}

// TexCoords maps the corners into the unit square of a lat/lon tile. The
// x coordinate grows east and y grows north. Longitudes are unwrapped
// against the tile so facets straddling the antimeridian stay contiguous.
func (f Facet) TexCoords(tile orb.Bound) [3]math.Vec2 {
	var out [3]math.Vec2
	w := tile.Right() - tile.Left()
	if w <= 0 {
		w += 360
	}
	h := tile.Top() - tile.Bottom()
	mid := tile.Left() + w/2
	for i, c := range f.Corners {
		lon := c.Lon
		if geo.IsPole(c.Lat) {
			lon = f.poleLon(i)
		}
		for lon-mid > 180 {
			lon -= 360
		}
		for mid-lon > 180 {
			lon += 360
		}
		out[i] = math.Vec2{
			X: (lon - tile.Left()) / w,
			Y: (c.Lat - tile.Bottom()) / h,
		}
	}
	return out
}

// poleLon gives a pole corner the average longitude of the other two so the
// texture is not sheared.
func (f Facet) poleLon(i int) float64 {
	a := f.Corners[(i+1)%3].Lon
	b := f.Corners[(i+2)%3].Lon
	return geo.LonAvg(a, b)
}

func (s *Sphere) facet(id triID) Facet {
	t := s.tri(id)
	f := Facet{
		Bounds: t.bounds,
		Depth:  t.depth,
	}
	for i, pid := range t.p {
		f.Corners[i] = s.pt(pid).vertex()
	}
	if key, ok := s.splitQ.key(int32(id)); ok {
		f.Error = key
	}
	return f
}

// GetIntersect returns the leaves whose bounds overlap q. With wantSplit,
// overlapping leaves are first split until their base edge is no longer
// than the size of q or they reach the maximum depth.
func (s *Sphere) GetIntersect(q orb.Bound, wantSplit bool) []Facet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if wantSplit {
		s.refine(q)
	}
	ids := s.intersect(q)
	out := make([]Facet, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.facet(id))
	}
	return out
}

// Leaves returns every leaf of the mesh.
func (s *Sphere) Leaves() []Facet {
	return s.GetIntersect(geo.World, false)
}

// intersect collects the leaves overlapping q, pruning subtrees by bounds.
func (s *Sphere) intersect(q orb.Bound) []triID {
	var out []triID
	var walk func(id triID)
	walk = func(id triID) {
		t := s.tri(id)
		if !geo.Intersects(t.bounds, q) {
			return
		}
		if t.leaf() {
			out = append(out, id)
			return
		}
		kids := t.kids
		walk(kids[0])
		walk(kids[1])
	}
	for _, r := range s.roots {
		walk(r)
	}
	return out
}

// refine splits leaves overlapping q until they are no larger than q.
func (s *Sphere) refine(q orb.Bound) {
	target := geo.Size(q)
	for {
		var todo []triID
		for _, id := range s.intersect(q) {
			t := s.tri(id)
			if t.size > target && t.depth < s.cfg.MaxDepth {
				todo = append(todo, id)
			}
		}
		if len(todo) == 0 {
			return
		}
		for _, id := range todo {
			if s.tris.alive[id] && s.tri(id).leaf() {
				s.split(id)
			}
		}
	}
}
