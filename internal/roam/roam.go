// Package roam implements a ROAM (Real-time Optimally Adapting Mesh) sphere:
// a forest of binary triangle trees over an octahedron that split where the
// current view needs detail and merge where it does not, while keeping the
// surface free of T-junctions.
//
// A Sphere is safe for concurrent use. Every exported method takes the
// sphere lock for its whole duration, so consumers never observe a half
// updated topology.
package roam

import (
	"go.uber.org/zap"
)

// Index types into the sphere's arenas.
type (
	pointID   int32
	triID     int32
	diamondID int32
)

const none = -1

// Corner slots of a triangle. The apex is opposite the base edge.
const (
	left  = 0
	apex  = 1
	right = 2
)

// Neighbor slots of a triangle: across the left edge (left-apex), the base
// edge (left-right) and the right edge (apex-right).
const (
	nLeft  = 0
	nBase  = 1
	nRight = 2
)

// HeightSource provides surface elevation in meters. ok is false when no
// data is available for the position, which is treated as sea level.
//
// Height is called with the sphere lock held and must not call back into
// the sphere.
type HeightSource interface {
	Height(lat, lon float64) (elev float64, ok bool)
}

// HeightFunc adapts a plain function to HeightSource.
type HeightFunc func(lat, lon float64) (float64, bool)

// Height calls f(lat, lon).
func (f HeightFunc) Height(lat, lon float64) (float64, bool) {
	return f(lat, lon)
}

// Config holds the scheduler thresholds and limits.
type Config struct {
	// SplitThreshold is the screen-space error in pixels above which a
	// leaf is split.
	SplitThreshold float64
	// MergeThreshold is the diamond error in pixels below which a diamond
	// is merged. It should be lower than SplitThreshold.
	MergeThreshold float64
	// Budget bounds the leaf count change of one SplitMerge call.
	Budget int
	// MaxDepth is the deepest level the scheduler will split to.
	MaxDepth int
	// MaxTriangles caps the number of leaves.
	MaxTriangles int
}

// DefaultConfig returns the settings used by the viewer.
func DefaultConfig() Config {
	return Config{
		SplitThreshold: 2.0,
		MergeThreshold: 1.0,
		Budget:         64,
		MaxDepth:       40,
		MaxTriangles:   20000,
	}
}

// Option configures a Sphere.
type Option func(*Sphere)

// WithLogger sets the logger used for scheduler diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *Sphere) {
		if log != nil {
			s.log = log
		}
	}
}
