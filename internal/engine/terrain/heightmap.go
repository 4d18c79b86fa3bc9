// Package terrain provides height sources for the sphere mesh and a loader
// that binds them in the background.
package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/roamsphere/pkg/geo"
)

// Grid is a regular lat/lon elevation raster. Row 0 is the north edge and
// column 0 the west edge. Cells holding NaN have no data.
type Grid struct {
	bounds orb.Bound
	width  int
	height int
	data   []float64
}

// NewGrid wraps row-major samples covering bounds.
func NewGrid(bounds orb.Bound, width, height int, data []float64) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("grid data size mismatch: expected %d, got %d", width*height, len(data))
	}
	if bounds.Top() <= bounds.Bottom() {
		return nil, errors.New("grid bounds have no latitude extent")
	}
	return &Grid{bounds: bounds, width: width, height: height, data: data}, nil
}

// LoadBIL reads a band interleaved raster of little-endian signed 16-bit
// elevations in meters.
func LoadBIL(r io.Reader, bounds orb.Bound, width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	raw := make([]int16, width*height)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("failed to read BIL data: %w", err)
	}
	data := make([]float64, len(raw))
	for i, v := range raw {
		data[i] = float64(v)
	}
	return NewGrid(bounds, width, height, data)
}

// Bounds returns the area covered by the grid.
func (g *Grid) Bounds() orb.Bound {
	return g.bounds
}

// At returns the sample at row, col, clamped to the grid.
func (g *Grid) At(row, col int) float64 {
	row = clampi(row, 0, g.height-1)
	col = clampi(col, 0, g.width-1)
	return g.data[row*g.width+col]
}

// Height returns the bilinearly interpolated elevation at lat, lon. ok is
// false outside the grid or next to a cell without data.
func (g *Grid) Height(lat, lon float64) (float64, bool) {
	if !geo.Contains(g.bounds, geo.LatLon{Lat: lat, Lon: lon}) {
		return 0, false
	}

	west := g.bounds.Left()
	span := g.bounds.Right() - west
	if span <= 0 {
		span += 360
	}
	for lon < west {
		lon += 360
	}
	for lon > west+span {
		lon -= 360
	}

	x := (lon - west) / span * float64(g.width)
	y := (1 - (lat-g.bounds.Bottom())/(g.bounds.Top()-g.bounds.Bottom())) * float64(g.height)
	col, row := int(x), int(y)
	fracX := clampf(x-float64(col), 0, 1)
	fracY := clampf(y-float64(row), 0, 1)

	// Corners: 00 = top left, 10 = top right, 01 = bottom left, 11 = bottom right
	px00 := g.At(row, col)
	px10 := g.At(row, col+1)
	px01 := g.At(row+1, col)
	px11 := g.At(row+1, col+1)

	h := px00*(1-fracX)*(1-fracY) +
		px10*fracX*(1-fracY) +
		px01*(1-fracX)*fracY +
		px11*fracX*fracY
	if gomath.IsNaN(h) {
		return 0, false
	}
	return h, true
}

func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampi(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
