package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
)

func TestBoundsOutline(t *testing.T) {
	tests := []struct {
		name    string
		b       orb.Bound
		padding float64
		edges   int
		west    float64
		north   float64
	}{
		{"plain", geo.NewBounds(20, 10, 40, 30), 0, 4, 30, 20},
		{"padded", geo.NewBounds(20, 10, 40, 30), 1, 4, 29, 21},
		{"clamped at the pole", geo.NewBounds(90, 80, 10, 0), 1, 4, -1, 90},
		{"antimeridian", geo.NewBounds(10, -10, -170, 170), 0, 8, 170, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := BoundsOutline(tt.b, tt.padding)
			if len(segs) != tt.edges {
				t.Fatalf("got %d edges, want %d", len(segs), tt.edges)
			}
			// First segment starts at the south-west corner of the first box.
			if sw := segs[0][0]; sw.X != tt.west {
				t.Errorf("west = %f, want %f", sw.X, tt.west)
			}
			if ne := segs[1][1]; ne.Y != tt.north {
				t.Errorf("north = %f, want %f", ne.Y, tt.north)
			}
		})
	}
}

func TestFacetPolygon(t *testing.T) {
	s := roam.New(roam.DefaultConfig())
	for _, f := range s.Leaves() {
		poly := facetPolygon(f)
		// Every root has one pole corner.
		if len(poly) != 4 {
			t.Errorf("root facet %v: polygon has %d points, want 4", f.Bounds, len(poly))
		}
		lo, hi := poly[0].X, poly[0].X
		for _, p := range poly {
			lo = min(lo, p.X)
			hi = max(hi, p.X)
		}
		if hi-lo > 90+1e-9 {
			t.Errorf("root facet %v spans %f degrees of longitude", f.Bounds, hi-lo)
		}
	}
}

func TestRenderCoversMap(t *testing.T) {
	s := roam.New(roam.DefaultConfig())
	r := NewMeshRender(361, 181)
	img := r.Render(s.Leaves())

	if img.Bounds().Dx() != 361 || img.Bounds().Dy() != 181 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	background := 0
	for y := 0; y < 181; y++ {
		for x := 0; x < 361; x++ {
			if img.RGBAAt(x, y) == r.Background {
				background++
			}
		}
	}
	if background > 361*181/100 {
		t.Errorf("%d background pixels left uncovered", background)
	}
}

func TestRenderHighlight(t *testing.T) {
	r := NewMeshRender(361, 181)
	r.Fill = false
	r.Highlight = []orb.Bound{geo.NewBounds(10, -10.5, 20, 0.5)}
	img := r.Render(nil)

	// South-west corner of the padded box: lon 0, lat -11.
	x, y := 180, 101
	if got := img.RGBAAt(x, y); got != r.HighlightColor {
		t.Errorf("pixel (%d, %d) = %v, want highlight", x, y, got)
	}
	if got := img.RGBAAt(0, 0); got != r.Background {
		t.Errorf("corner pixel = %v, want background", got)
	}
}

func TestFillPolygon(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{255, 0, 0, 255}
	fillPolygon(img, []image.Point{{2, 2}, {8, 2}, {8, 8}, {2, 8}}, red)

	filled := 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if img.RGBAAt(x, y) == red {
				filled++
			}
		}
	}
	if filled != 36 {
		t.Errorf("filled %d pixels, want 36", filled)
	}
}

func TestWritePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "mesh")

	img := NewMeshRender(64, 32).Render(roam.New(roam.DefaultConfig()).Leaves())
	name, err := sc.CaptureFromImage(img)
	if err != nil {
		t.Fatalf("CaptureFromImage: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(name), "mesh_") || filepath.Dir(name) != dir {
		t.Errorf("unexpected file name %s", name)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
