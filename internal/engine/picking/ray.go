// Package picking maps screen positions to points on the globe and to the
// mesh triangles under them.
package picking

import (
	gomath "math"

	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates with the origin at the top left of
// the viewport. invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY float64, vp math.Viewport, invViewProj math.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*(screenX-vp[0])/vp[2] - 1
	ndcY := 1 - 2*(screenY-vp[1])/vp[3] // Flip Y

	// Unproject near and far points
	origin := invViewProj.TransformVec3(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := invViewProj.TransformVec3(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	return Ray{Origin: origin, Direction: far.Sub(origin).Normalize()}
}

// ViewRay builds the ray under a screen position for a mesh view.
func ViewRay(v roam.View, screenX, screenY float64) Ray {
	return ScreenToRay(screenX, screenY, v.Viewport, v.Proj.Mul(v.Model).Inverse())
}

// IntersectSphere intersects the ray with a sphere of the given radius
// centered at the origin. Returns the distance to the first hit in front of
// the ray origin, or the exit distance if the origin is inside.
func (r Ray) IntersectSphere(radius float64) (t float64, hit bool) {
	// |O + tD|^2 = r^2 with |D| = 1
	b := r.Origin.Dot(r.Direction)
	c := r.Origin.Dot(r.Origin) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := gomath.Sqrt(disc)
	t0, t1 := -b-sq, -b+sq
	if t1 < 0 {
		return 0, false // Sphere behind ray origin
	}
	if t0 < 0 {
		return t1, true
	}
	return t0, true
}

// IntersectTriangle tests the ray against triangle a, b, c from either side
// (Möller-Trumbore). Returns the distance along the ray.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float64, hit bool) {
	const eps = 1e-12
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if gomath.Abs(det) < eps*e1.Length()*e2.Length() {
		return 0, false // Ray parallel to triangle
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// PickSurface returns the position on the sphere of radius
// EarthRadius+elev under a screen position.
func PickSurface(v roam.View, screenX, screenY, elev float64) (lat, lon float64, ok bool) {
	ray := ViewRay(v, screenX, screenY)
	t, hit := ray.IntersectSphere(geo.ElevToRadius(elev))
	if !hit {
		return 0, 0, false
	}
	lat, lon = geo.XYZToLL(ray.At(t))
	return lat, lon, true
}

// PickFacet returns the index of the nearest facet hit by the ray, or -1.
func PickFacet(ray Ray, facets []roam.Facet) (index int, t float64) {
	index, t = -1, gomath.Inf(1)
	for i, f := range facets {
		d, hit := ray.IntersectTriangle(f.Corners[0].Pos, f.Corners[1].Pos, f.Corners[2].Pos)
		if hit && d < t {
			index, t = i, d
		}
	}
	return index, t
}
