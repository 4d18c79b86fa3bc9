// Package debug provides debug visualization utilities.
package debug

import (
	gomath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// BoundsEdgeCount is the number of segments in the outline of a box that
// does not cross the antimeridian.
const BoundsEdgeCount = 4

// DefaultBoundsPadding is the default padding for highlighted boxes, in
// degrees.
const DefaultBoundsPadding = 0.5

// BoundsOutline returns the edges of a lat/lon box as segments of (lon,
// lat) points, expanded by padding degrees on all sides. Boxes crossing the
// antimeridian are cut into two outlines.
func BoundsOutline(b orb.Bound, padding float64) [][2]math.Vec2 {
	w, e := b.Left()-padding, b.Right()+padding
	s := gomath.Max(b.Bottom()-padding, geo.South)
	n := gomath.Min(b.Top()+padding, geo.North)

	if e < w {
		// Crosses the antimeridian
		out := boxEdges(w, s, geo.East, n)
		return append(out, boxEdges(geo.West, s, e, n)...)
	}
	return boxEdges(w, s, e, n)
}

func boxEdges(w, s, e, n float64) [][2]math.Vec2 {
	sw, se := math.Vec2{X: w, Y: s}, math.Vec2{X: e, Y: s}
	nw, ne := math.Vec2{X: w, Y: n}, math.Vec2{X: e, Y: n}
	return [][2]math.Vec2{
		{sw, se},
		{se, ne},
		{ne, nw},
		{nw, sw},
	}
}
