package roam

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

const (
	// minEyeDistance keeps the error finite when the eye touches a vertex.
	minEyeDistance = 1.0
	// maxBulge caps how far corners are scaled out for frustum tests.
	maxBulge = 4.0
)

// View is the camera state errors are computed against.
type View struct {
	Model    math.Mat4
	Proj     math.Mat4
	Viewport math.Viewport
	// Eye is the camera position in world coordinates.
	Eye math.Vec3

	mvp   math.Mat4
	focal float64
	near  float64
}

// NewView derives the eye position, focal length in pixels and near plane
// distance from a modelview and a perspective projection.
func NewView(model, proj math.Mat4, vp math.Viewport) View {
	eye := model.Inverse().MulVec4(math.Vec4{0, 0, 0, 1})
	v := View{
		Model:    model,
		Proj:     proj,
		Viewport: vp,
		mvp:      proj.Mul(model),
		focal:    vp[3] / 2 * proj[5],
		near:     minEyeDistance,
	}
	if eye[3] != 0 {
		v.Eye = math.Vec3{X: eye[0] / eye[3], Y: eye[1] / eye[3], Z: eye[2] / eye[3]}
	}
	if d := proj[10] - 1; d != 0 {
		v.near = gomath.Max(proj[14]/d, minEyeDistance)
	}
	return v
}

// Focal returns the distance in pixels at which one world unit covers one
// pixel.
func (v View) Focal() float64 { return v.focal }

// Project maps a surface position to window coordinates. ok is false when
// the position cannot be projected.
func (v View) Project(lat, lon, elev float64) (win math.Vec3, ok bool) {
	return math.Project(geo.LLEToXYZ(lat, lon, elev), v.Model, v.Proj, v.Viewport)
}

// Unproject maps window coordinates back to latitude, longitude and
// elevation.
func (v View) Unproject(win math.Vec3) (lat, lon, elev float64, ok bool) {
	obj, ok := math.Unproject(win, v.Model, v.Proj, v.Viewport)
	if !ok {
		return 0, 0, 0, false
	}
	lat, lon, elev = geo.XYZToLLE(obj)
	return lat, lon, elev, true
}

// culled reports whether all points lie outside one clip plane.
func (v *View) culled(pts ...math.Vec3) bool {
	var out [6]int
	for _, p := range pts {
		c := v.mvp.MulVec4(math.Vec4{p.X, p.Y, p.Z, 1})
		w := c[3]
		for axis := 0; axis < 3; axis++ {
			if c[axis] < -w {
				out[axis*2]++
			}
			if c[axis] > w {
				out[axis*2+1]++
			}
		}
	}
	for _, n := range out {
		if n == len(pts) {
			return true
		}
	}
	return false
}

// outsideFrustum tests the hull of the corners, the split point and the
// corners pushed out far enough to enclose the curved patch above the
// chord plane.
func (v *View) outsideFrustum(l, m, r, sp math.Vec3) bool {
	rmax := gomath.Max(gomath.Max(l.Length(), m.Length()), gomath.Max(r.Length(), sp.Length()))
	d := gomath.Abs(l.Sub(m).Cross(r.Sub(m)).Normalize().Dot(m))
	k := maxBulge
	if d > 0 {
		k = gomath.Min(rmax/d, maxBulge)
	}
	return v.culled(l, m, r, sp, l.Scale(k), m.Scale(k), r.Scale(k))
}

// beyondHorizon reports whether the whole patch is hidden behind the
// planet. The patch is bounded by the cap around its centroid direction
// that holds every corner.
func (v *View) beyondHorizon(pts ...math.Vec3) bool {
	var c math.Vec3
	rmin := gomath.Inf(1)
	for _, p := range pts {
		c = c.Add(p.Normalize())
		rmin = gomath.Min(rmin, p.Length())
	}
	dist := v.Eye.Length()
	if dist <= rmin {
		return false
	}
	capRadius := 0.0
	for _, p := range pts {
		capRadius = gomath.Max(capRadius, geo.AngularDistance(c, p))
	}
	horizon := gomath.Acos(rmin/dist) * 180 / gomath.Pi
	return geo.AngularDistance(c, v.Eye)-capRadius > horizon
}

// SetView installs a new camera and recomputes every error.
func (s *Sphere) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.view = v
	s.hasView = true
	s.updateErrors()
}

// View returns the current camera and whether one has been set.
func (s *Sphere) View() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.hasView
}

// UpdateErrors refreshes pending heights and recomputes the error of every
// leaf and every mergeable diamond for the current view.
func (s *Sphere) UpdateErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.updateErrors()
}

func (s *Sphere) updateErrors() {
	dirty := 0
	s.points.each(func(_ int32, p *point) {
		if p.dirty {
			p.refresh()
			dirty++
		}
	})
	for _, id := range s.splitQ.snapshot() {
		s.splitQ.update(id, s.triError(triID(id)))
	}
	for _, id := range s.mergeQ.snapshot() {
		s.mergeQ.update(id, s.diamondError(diamondID(id)))
	}
	s.log.Debug("errors updated",
		zap.Int("leaves", s.splitQ.Len()),
		zap.Int("mergeable", s.mergeQ.Len()),
		zap.Int("refreshed_points", dirty))
}

// triError is the screen-space deviation in pixels between the true split
// point and the midpoint of the base chord. Patches that are off screen or
// hidden behind the horizon have no error.
func (s *Sphere) triError(id triID) float64 {
	if !s.hasView {
		return 0
	}
	if s.tri(id).depth >= s.cfg.MaxDepth {
		return 0
	}
	sp := s.pt(s.splitPoint(id))
	t := s.tri(id)
	l, m, r := s.pt(t.p[left]), s.pt(t.p[apex]), s.pt(t.p[right])

	v := &s.view
	if v.beyondHorizon(l.pos, m.pos, r.pos) || v.outsideFrustum(l.pos, m.pos, r.pos, sp.pos) {
		return 0
	}

	dist := gomath.Min(
		gomath.Min(v.Eye.Distance(l.pos), v.Eye.Distance(m.pos)),
		gomath.Min(v.Eye.Distance(r.pos), v.Eye.Distance(sp.pos)),
	)
	dev := sp.pos.Distance(l.pos.Midpoint(r.pos))
	return dev * v.focal / gomath.Max(dist, v.near)
}

// diamondError is the larger error of the diamond's two parents.
func (s *Sphere) diamondError(id diamondID) float64 {
	d := s.dia(id)
	return gomath.Max(s.triError(d.tris[0]), s.triError(d.tris[1]))
}
