package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"github.com/Faultbox/roamsphere/internal/engine/lighting"
	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

// ScreenshotCapture writes timestamped PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
	}
}

// SetOutputDir sets the output directory for screenshots.
func (sc *ScreenshotCapture) SetOutputDir(dir string) {
	sc.outputDir = dir
}

// CaptureFromImage saves img under a generated name and returns the name.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image) (string, error) {
	filename := sc.GenerateFilename()
	if err := WritePNG(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", sc.prefix, timestamp)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}

// WritePNG encodes img to path, creating the parent directory if needed.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// MeshRender draws mesh facets on an equirectangular (plate carrée) map.
type MeshRender struct {
	Width, Height int
	Background    color.RGBA
	Wire          color.RGBA
	Fill          bool
	Sun           lighting.Sun
	// Highlight boxes are outlined on top of the mesh.
	Highlight      []orb.Bound
	HighlightColor color.RGBA
}

// depthPalette tints facets by depth so refinement is visible.
var depthPalette = []color.RGBA{
	{70, 130, 180, 255},
	{60, 179, 113, 255},
	{218, 165, 32, 255},
	{205, 92, 92, 255},
	{147, 112, 219, 255},
	{64, 224, 208, 255},
}

// NewMeshRender returns a filled, lit render of the given size.
func NewMeshRender(width, height int) MeshRender {
	return MeshRender{
		Width:          width,
		Height:         height,
		Background:     color.RGBA{0, 0, 0, 255},
		Wire:           color.RGBA{255, 255, 255, 255},
		Fill:           true,
		Sun:            lighting.NewSun(30, 0, 0.3),
		HighlightColor: color.RGBA{255, 0, 0, 255},
	}
}

// Render rasterizes the facets.
func (r MeshRender) Render(facets []roam.Facet) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = r.Background.R
		img.Pix[i+1] = r.Background.G
		img.Pix[i+2] = r.Background.B
		img.Pix[i+3] = r.Background.A
	}

	for _, f := range facets {
		poly := facetPolygon(f)
		for _, shift := range wrapShifts(poly) {
			pts := r.toPixels(poly, shift)
			if r.Fill {
				base := depthPalette[f.Depth%len(depthPalette)]
				fillPolygon(img, pts, shade(base, r.Sun.ShadeFacet(f)))
			}
			for i := range pts {
				drawLine(img, pts[i], pts[(i+1)%len(pts)], r.Wire)
			}
		}
	}

	for _, b := range r.Highlight {
		for _, seg := range BoundsOutline(b, DefaultBoundsPadding) {
			pts := r.toPixels([]math.Vec2{seg[0], seg[1]}, 0)
			drawLine(img, pts[0], pts[1], r.HighlightColor)
		}
	}
	return img
}

// facetPolygon returns the corners as (lon, lat) with longitudes unwrapped
// around the first non-pole corner. A pole corner becomes an edge along the
// pole at the longitudes of its neighbors.
func facetPolygon(f roam.Facet) []math.Vec2 {
	ref := 0.0
	for _, c := range f.Corners {
		if !geo.IsPole(c.Lat) {
			ref = c.Lon
			break
		}
	}
	unwrap := func(lon float64) float64 {
		for lon-ref > 180 {
			lon -= 360
		}
		for ref-lon > 180 {
			lon += 360
		}
		return lon
	}

	poly := make([]math.Vec2, 0, 4)
	for i, c := range f.Corners {
		if geo.IsPole(c.Lat) {
			prev := f.Corners[(i+2)%3]
			next := f.Corners[(i+1)%3]
			poly = append(poly,
				math.Vec2{X: unwrap(prev.Lon), Y: c.Lat},
				math.Vec2{X: unwrap(next.Lon), Y: c.Lat})
			continue
		}
		poly = append(poly, math.Vec2{X: unwrap(c.Lon), Y: c.Lat})
	}
	return poly
}

// wrapShifts lists the longitude offsets at which a polygon must be drawn
// to cover the map.
func wrapShifts(poly []math.Vec2) []float64 {
	lo, hi := gomath.Inf(1), gomath.Inf(-1)
	for _, p := range poly {
		lo = gomath.Min(lo, p.X)
		hi = gomath.Max(hi, p.X)
	}
	shifts := []float64{0}
	if lo < geo.West {
		shifts = append(shifts, 360)
	}
	if hi > geo.East {
		shifts = append(shifts, -360)
	}
	return shifts
}

func (r MeshRender) toPixels(poly []math.Vec2, shift float64) []image.Point {
	out := make([]image.Point, len(poly))
	for i, p := range poly {
		x := (p.X + shift - geo.West) / 360 * float64(r.Width-1)
		y := (geo.North - p.Y) / 180 * float64(r.Height-1)
		out[i] = image.Pt(int(gomath.Round(x)), int(gomath.Round(y)))
	}
	return out
}

func shade(c color.RGBA, light float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * light),
		G: uint8(float64(c.G) * light),
		B: uint8(float64(c.B) * light),
		A: 255,
	}
}

// fillPolygon fills pixels whose centers lie inside the polygon (even-odd
// rule).
func fillPolygon(img *image.RGBA, pts []image.Point, c color.RGBA) {
	b := img.Bounds()
	minY, maxY := b.Max.Y, b.Min.Y
	for _, p := range pts {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	minY = max(minY, b.Min.Y)
	maxY = min(maxY, b.Max.Y-1)

	var xs []float64
	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			a, d := pts[i], pts[(i+1)%len(pts)]
			ay, dy := float64(a.Y), float64(d.Y)
			if (ay <= fy) == (dy <= fy) {
				continue
			}
			t := (fy - ay) / (dy - ay)
			xs = append(xs, float64(a.X)+t*float64(d.X-a.X))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := max(int(gomath.Ceil(xs[i]-0.5)), b.Min.X)
			x1 := min(int(gomath.Floor(xs[i+1]-0.5)), b.Max.X-1)
			for x := x0; x <= x1; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawLine draws a segment with Bresenham's algorithm. Pixels outside the
// image are skipped.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		if (image.Point{x, y}).In(img.Bounds()) {
			img.SetRGBA(x, y, c)
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
