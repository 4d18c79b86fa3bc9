// Package camera provides the globe camera that drives mesh refinement.
package camera

import (
	gomath "math"
	"sync"

	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// FovDistance is the distance in pixels from the eye to the screen plane.
// The vertical field of view follows from it and the viewport height.
const FovDistance = 2000.0

// GlobeCamera looks at the planet from a geographic position. It is safe
// for concurrent use; every change bumps Version.
type GlobeCamera struct {
	mu sync.RWMutex

	// Geographic position
	lat, lon float64 // degrees
	elev     float64 // meters above sea level

	// Orientation
	rotX float64 // tilt from nadir toward the horizon (degrees, 0 = straight down)
	rotZ float64 // heading (degrees)

	// Viewport in pixels
	width, height float64

	// Constraints
	MinElev float64
	MaxElev float64
	MinTilt float64
	MaxTilt float64

	// Sensitivity
	PanSensitivity  float64
	ZoomSensitivity float64

	version uint64
}

// NewGlobeCamera creates a camera above lat, lon with default settings.
func NewGlobeCamera(lat, lon, elev float64) *GlobeCamera {
	c := &GlobeCamera{
		width:           800,
		height:          600,
		MinElev:         100,
		MaxElev:         10 * geo.EarthRadius,
		MinTilt:         -90,
		MaxTilt:         0,
		PanSensitivity:  0.1,
		ZoomSensitivity: 0.1,
		version:         1,
	}
	c.lat = clampLat(lat)
	c.lon = geo.NormalizeLon(lon)
	c.elev = c.clampElev(elev)
	return c
}

// Version changes whenever the camera moves.
func (c *GlobeCamera) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Position returns latitude, longitude and elevation.
func (c *GlobeCamera) Position() (lat, lon, elev float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lat, c.lon, c.elev
}

// Rotation returns tilt and heading in degrees.
func (c *GlobeCamera) Rotation() (rotX, rotZ float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rotX, c.rotZ
}

// SetPosition moves the camera.
func (c *GlobeCamera) SetPosition(lat, lon, elev float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lat = clampLat(lat)
	c.lon = geo.NormalizeLon(lon)
	c.elev = c.clampElev(elev)
	c.version++
}

// SetRotation sets tilt and heading in degrees.
func (c *GlobeCamera) SetRotation(rotX, rotZ float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rotX = c.clampTilt(rotX)
	c.rotZ = gomath.Mod(rotZ, 360)
	c.version++
}

// Resize sets the viewport size in pixels.
func (c *GlobeCamera) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.width, c.height = width, height
	c.version++
}

// HandlePan moves the camera along the surface relative to its heading.
// Speed scales with elevation for a consistent feel.
func (c *GlobeCamera) HandlePan(forward, right float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.elev * c.PanSensitivity / geo.MetersPerDegree(0)
	heading := c.rotZ * gomath.Pi / 180
	dLat := (forward*gomath.Cos(heading) - right*gomath.Sin(heading)) * step
	dLon := (forward*gomath.Sin(heading) + right*gomath.Cos(heading)) * step

	cosLat := gomath.Max(gomath.Cos(c.lat*gomath.Pi/180), 0.01)
	c.lat = clampLat(c.lat + dLat)
	c.lon = geo.NormalizeLon(c.lon + dLon/cosLat)
	c.version++
}

// HandleZoom changes elevation by a fraction of the current elevation.
func (c *GlobeCamera) HandleZoom(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elev = c.clampElev(c.elev - delta*c.elev*c.ZoomSensitivity)
	c.version++
}

// HandleRotate tilts and turns the camera by the given degrees.
func (c *GlobeCamera) HandleRotate(dTilt, dHeading float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rotX = c.clampTilt(c.rotX + dTilt)
	c.rotZ = gomath.Mod(c.rotZ+dHeading, 360)
	c.version++
}

// ViewMatrix returns the modelview matrix: tilt and heading applied in eye
// space after moving the planet so the camera position sits on the -Z axis.
func (c *GlobeCamera) ViewMatrix() math.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewMatrix()
}

func (c *GlobeCamera) viewMatrix() math.Mat4 {
	return math.RotateX(radians(c.rotX)).
		Mul(math.RotateZ(radians(c.rotZ))).
		Mul(math.Translate(0, 0, -geo.ElevToRadius(c.elev))).
		Mul(math.RotateX(radians(c.lat))).
		Mul(math.RotateY(radians(-c.lon)))
}

// ProjectionMatrix returns the perspective matrix for the viewport. The
// near plane moves out with elevation to keep depth precision.
func (c *GlobeCamera) ProjectionMatrix() math.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectionMatrix()
}

func (c *GlobeCamera) projectionMatrix() math.Mat4 {
	fovY := 2 * gomath.Atan(c.height/2/FovDistance)
	near := gomath.Max(c.elev*0.75-100000, 50)
	far := c.elev + 2*geo.EarthRadius
	return math.Perspective(fovY, c.width/c.height, near, far)
}

// View returns the camera state for error computation.
func (c *GlobeCamera) View() roam.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return roam.NewView(c.viewMatrix(), c.projectionMatrix(),
		math.Viewport{0, 0, c.width, c.height})
}

// Snapshot returns the view together with the version it belongs to.
func (c *GlobeCamera) Snapshot() (roam.View, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return roam.NewView(c.viewMatrix(), c.projectionMatrix(),
		math.Viewport{0, 0, c.width, c.height}), c.version
}

func (c *GlobeCamera) clampElev(elev float64) float64 {
	return gomath.Min(gomath.Max(elev, c.MinElev), c.MaxElev)
}

func (c *GlobeCamera) clampTilt(rotX float64) float64 {
	return gomath.Min(gomath.Max(rotX, c.MinTilt), c.MaxTilt)
}

func clampLat(lat float64) float64 {
	return gomath.Min(gomath.Max(lat, geo.South), geo.North)
}

func radians(deg float64) float64 {
	return deg * gomath.Pi / 180
}
