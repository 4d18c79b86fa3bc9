package roam

import (
	"fmt"
	gomath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/roamsphere/pkg/geo"
)

// Check validates the mesh: the leaves must tile the sphere with outward
// facing triangles, every edge must be shared by exactly two leaves with
// symmetric neighbor links, the queues must hold exactly the leaves and the
// mergeable diamonds, and point refcounts must match their users.
func (s *Sphere) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	var err error
	err = multierr.Append(err, s.checkTree())
	err = multierr.Append(err, s.checkEdges())
	err = multierr.Append(err, s.checkQueues())
	err = multierr.Append(err, s.checkRefs())
	return err
}

func (s *Sphere) checkTree() error {
	var err error
	leaves := 0
	area := 0.0
	s.tris.each(func(i int32, t *triangle) {
		id := triID(i)
		if t.leaf() != (t.kids[1] == none) {
			err = multierr.Append(err, fmt.Errorf("triangle %d has one kid", id))
			return
		}
		if !t.leaf() {
			for _, k := range t.kids {
				if s.tri(k).parent != id {
					err = multierr.Append(err, fmt.Errorf("kid %d of %d has parent %d", k, id, s.tri(k).parent))
				}
			}
			if t.dia == none {
				err = multierr.Append(err, fmt.Errorf("internal triangle %d has no diamond", id))
			}
			return
		}
		leaves++
		l, m, r := s.pt(t.p[left]), s.pt(t.p[apex]), s.pt(t.p[right])
		ul := l.pos.Normalize()
		um := m.pos.Normalize()
		ur := r.pos.Normalize()
		n := ul.Sub(um).Cross(ur.Sub(um))
		if n.Dot(ul.Add(um).Add(ur)) <= 0 {
			err = multierr.Append(err, fmt.Errorf("leaf %d faces inward", id))
		}
		area += geo.SphericalArea(ul, um, ur)
	})
	if leaves != s.leaves {
		err = multierr.Append(err, fmt.Errorf("leaf count %d, tracked %d", leaves, s.leaves))
	}
	if gomath.Abs(area-4*gomath.Pi) > 1e-6 {
		err = multierr.Append(err, fmt.Errorf("leaves cover %.9f sr, want 4π", area))
	}
	return err
}

type edgeKey struct{ a, b pointID }

func (s *Sphere) checkEdges() error {
	var err error
	edges := make(map[edgeKey]int)
	s.tris.each(func(i int32, t *triangle) {
		if !t.leaf() {
			return
		}
		id := triID(i)
		for slot := 0; slot < 3; slot++ {
			a, b := t.edge(slot)
			edges[edgeKey{a, b}]++

			n := t.t[slot]
			if n == none || !s.tris.alive[n] {
				err = multierr.Append(err, fmt.Errorf("leaf %d slot %d has no neighbor", id, slot))
				continue
			}
			nt := s.tri(n)
			if !nt.leaf() {
				err = multierr.Append(err, fmt.Errorf("leaf %d slot %d points at internal %d", id, slot, n))
				continue
			}
			back := -1
			for j, m := range nt.t {
				if m == id {
					back = j
				}
			}
			if back < 0 {
				err = multierr.Append(err, fmt.Errorf("neighbor link %d -> %d is not symmetric", id, n))
				continue
			}
			if c, d := nt.edge(back); c != b || d != a {
				err = multierr.Append(err, fmt.Errorf("leaves %d and %d disagree on their shared edge", id, n))
			}
		}
	})
	for e, n := range edges {
		if n != 1 {
			err = multierr.Append(err, fmt.Errorf("edge %d->%d used %d times", e.a, e.b, n))
		}
		if edges[edgeKey{e.b, e.a}] != 1 {
			err = multierr.Append(err, fmt.Errorf("edge %d->%d has no twin (T-junction)", e.a, e.b))
		}
	}
	return err
}

func (s *Sphere) checkQueues() error {
	var err error
	s.tris.each(func(i int32, t *triangle) {
		if queued := s.splitQ.contains(i); queued != t.leaf() {
			err = multierr.Append(err, fmt.Errorf("triangle %d leaf=%t queued=%t", i, t.leaf(), queued))
		}
	})
	if s.splitQ.Len() != s.leaves {
		err = multierr.Append(err, fmt.Errorf("split queue holds %d, want %d leaves", s.splitQ.Len(), s.leaves))
	}
	s.dias.each(func(i int32, d *diamond) {
		id := diamondID(i)
		for _, p := range d.tris {
			if s.tri(p).leaf() || s.tri(p).dia != id {
				err = multierr.Append(err, fmt.Errorf("diamond %d has stale parent %d", id, p))
			}
		}
		if queued := s.mergeQ.contains(i); queued != s.mergeable(id) {
			err = multierr.Append(err, fmt.Errorf("diamond %d mergeable=%t queued=%t", id, !queued, queued))
		}
	})
	for _, id := range s.mergeQ.snapshot() {
		if !s.dias.alive[id] {
			err = multierr.Append(err, fmt.Errorf("merge queue holds freed diamond %d", id))
		}
	}
	return err
}

func (s *Sphere) checkRefs() error {
	var err error
	refs := make(map[pointID]int)
	s.tris.each(func(_ int32, t *triangle) {
		for _, p := range t.p {
			refs[p]++
		}
		if t.split != none {
			refs[t.split]++
		}
	})
	s.points.each(func(i int32, p *point) {
		if want := refs[pointID(i)]; p.refs != want {
			err = multierr.Append(err, fmt.Errorf("point %d refcount %d, referenced %d times", i, p.refs, want))
		}
	})
	for id := range refs {
		if !s.points.alive[id] {
			err = multierr.Append(err, fmt.Errorf("freed point %d still referenced", id))
		}
	}
	return err
}
