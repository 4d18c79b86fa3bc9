// Package math provides double precision vector and matrix types for
// planet-scale geometry.
package math

// Vec2 is a 2D vector, used for map and window coordinates.
type Vec2 struct {
	X, Y float64
}
