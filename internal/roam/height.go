package roam

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/Faultbox/roamsphere/pkg/geo"
)

// binding is a height source and the box it covers.
type binding struct {
	bounds orb.Bound
	src    HeightSource
}

// sourceAt returns the most recently bound source covering the position,
// or nil.
func (s *Sphere) sourceAt(lat, lon float64) HeightSource {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if geo.Contains(s.bindings[i].bounds, geo.LatLon{Lat: lat, Lon: lon}) {
			return s.bindings[i].src
		}
	}
	return nil
}

// SetHeightFunc binds src to every point inside q, splitting the leaves
// overlapping q down to its size first. Points outside q keep their
// source, so adjacent boxes do not take over each other's edges. With
// forceUpdate the new heights are applied immediately; otherwise they are
// applied by the next UpdateErrors.
//
// Points created later, including split points recreated after a merge,
// take the most recent source whose box contains them.
func (s *Sphere) SetHeightFunc(q orb.Bound, src HeightSource, forceUpdate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.refine(q)
	ids := s.intersect(q)
	bound := 0
	for _, id := range ids {
		sp := s.splitPoint(id)
		t := s.tri(id)
		for _, pid := range [...]pointID{t.p[left], t.p[apex], t.p[right], sp} {
			p := s.pt(pid)
			if !geo.Contains(q, geo.LatLon{Lat: p.lat, Lon: p.lon}) {
				continue
			}
			p.src = src
			if forceUpdate {
				p.refresh()
			} else {
				p.dirty = true
			}
			bound++
		}
	}

	// Recorded last so that points created above wait for the deferred
	// update like the rest. Rebinding the same box replaces the earlier
	// source.
	kept := s.bindings[:0]
	for _, b := range s.bindings {
		if !b.bounds.Equal(q) {
			kept = append(kept, b)
		}
	}
	s.bindings = append(kept, binding{bounds: q, src: src})

	if forceUpdate && s.hasView {
		s.updateErrors()
	}
	s.log.Debug("height source bound",
		zap.Int("leaves", len(ids)),
		zap.Int("point_refs", bound),
		zap.Int("bindings", len(s.bindings)),
		zap.Bool("forced", forceUpdate))
}

// ClearHeightFunc unbinds every height source and returns all points to
// sea level. The topology is left unchanged.
func (s *Sphere) ClearHeightFunc() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.bindings = nil
	s.points.each(func(_ int32, p *point) {
		p.src = nil
		p.refresh()
	})
	if s.hasView {
		s.updateErrors()
	}
	s.log.Debug("height sources cleared", zap.Int("points", s.points.live))
}
