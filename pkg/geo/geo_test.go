package geo

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/roamsphere/pkg/math"
)

func near(a, b, eps float64) bool {
	return gomath.Abs(a-b) <= eps
}

func TestLLEToXYZAxes(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     math.Vec3
	}{
		{"north pole", 90, 0, math.Vec3{X: 0, Y: EarthRadius, Z: 0}},
		{"south pole", -90, 0, math.Vec3{X: 0, Y: -EarthRadius, Z: 0}},
		{"prime meridian", 0, 0, math.Vec3{X: 0, Y: 0, Z: EarthRadius}},
		{"90 east", 0, 90, math.Vec3{X: EarthRadius, Y: 0, Z: 0}},
		{"90 west", 0, -90, math.Vec3{X: -EarthRadius, Y: 0, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LLEToXYZ(tt.lat, tt.lon, 0)
			if got.Distance(tt.want) > 1e-6 {
				t.Errorf("LLEToXYZ(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestXYZToLLERoundTrip(t *testing.T) {
	cases := [][3]float64{
		{45, 45, 0},
		{-33.9, 151.2, 120},
		{10, -179.5, 8848},
		{-60, -20, -400},
	}
	for _, c := range cases {
		lat, lon, elev := XYZToLLE(LLEToXYZ(c[0], c[1], c[2]))
		if !near(lat, c[0], 1e-9) || !near(lon, c[1], 1e-9) || !near(elev, c[2], 1e-6) {
			t.Errorf("round trip of %v = (%v, %v, %v)", c, lat, lon, elev)
		}
	}
}

func TestAngularDistance(t *testing.T) {
	a := UnitVector(0, 0)
	b := UnitVector(0, 90)
	if d := AngularDistance(a, b.Scale(3)); !near(d, 90, 1e-9) {
		t.Errorf("AngularDistance = %v, want 90", d)
	}
}

func TestSphericalAreaOctant(t *testing.T) {
	// One octant is an eighth of the sphere.
	got := SphericalArea(UnitVector(90, 0), UnitVector(0, 0), UnitVector(0, 90))
	if !near(got, 4*gomath.Pi/8, 1e-9) {
		t.Errorf("octant area = %v, want %v", got, gomath.Pi/2)
	}
}

func TestMidpoint(t *testing.T) {
	lat, lon := Midpoint(0, 0, 0, 90)
	if !near(lat, 0, 1e-9) || !near(lon, 45, 1e-9) {
		t.Errorf("Midpoint = (%v, %v), want (0, 45)", lat, lon)
	}
}

func TestLonAvg(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 20, 15},
		{170, -170, 180},
		{-170, 170, 180},
		{-10, 10, 0},
	}
	for _, tt := range tests {
		got := LonAvg(tt.a, tt.b)
		diff := gomath.Mod(got-tt.want+540, 360) - 180
		if !near(diff, 0, 1e-9) {
			t.Errorf("LonAvg(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestExtent(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		b := Extent(LatLon{10, 20}, LatLon{30, 40}, LatLon{20, 25})
		if b.Left() != 20 || b.Right() != 40 || b.Bottom() != 10 || b.Top() != 30 {
			t.Errorf("Extent = %v", b)
		}
	})

	t.Run("pole ignores longitude", func(t *testing.T) {
		b := Extent(LatLon{0, 0}, LatLon{90, 0}, LatLon{0, 90})
		if b.Left() != 0 || b.Right() != 90 || b.Top() != 90 {
			t.Errorf("Extent = %v", b)
		}
	})

	t.Run("antimeridian", func(t *testing.T) {
		b := Extent(LatLon{0, 180}, LatLon{90, 0}, LatLon{0, -90})
		if b.Left() != 180 || b.Right() != 270 {
			t.Errorf("Extent = %v, want lon [180, 270]", b)
		}
		if !Intersects(b, NewBounds(10, 0, -100, -120)) {
			t.Error("unwrapped box should intersect its western copy")
		}
		if Intersects(b, NewBounds(10, 0, 60, 40)) {
			t.Error("unwrapped box should not intersect the eastern hemisphere")
		}
	})
}

func TestIntersectsQueryAcrossAntimeridian(t *testing.T) {
	q := NewBounds(10, -10, -170, 170)
	if !Intersects(NewBounds(5, 0, 176, 172), q) {
		t.Error("expected overlap on the east side")
	}
	if !Intersects(NewBounds(5, 0, -172, -176), q) {
		t.Error("expected overlap on the west side")
	}
	if Intersects(NewBounds(5, 0, 10, 0), q) {
		t.Error("unexpected overlap at the prime meridian")
	}
}

func TestContains(t *testing.T) {
	b := NewBounds(10, 0, 200, 170)
	if !Contains(b, LatLon{5, -170}) {
		t.Error("expected wrapped longitude to be contained")
	}
	if Contains(b, LatLon{20, 175}) {
		t.Error("latitude outside the box should not be contained")
	}
	if !Contains(NewBounds(90, 80, 10, 0), LatLon{90, 123}) {
		t.Error("pole should be contained regardless of longitude")
	}
}

func TestPadAndSize(t *testing.T) {
	b := Pad(NewBounds(89, 80, 10, 0), 0.5)
	if b.Top() != North {
		t.Errorf("Pad should clamp at the pole, got top %v", b.Top())
	}
	if b.Left() >= 0 || b.Right() <= 10 {
		t.Errorf("Pad should grow longitude, got %v", b)
	}
	if s := Size(NewBounds(1, 0, 1, 0)); !near(s, 1, 1e-9) {
		t.Errorf("Size = %v, want 1", s)
	}
	if s := Size(NewBounds(61, 59, 10, 0)); !near(s, 10*gomath.Cos(60*gomath.Pi/180), 1e-9) {
		t.Errorf("Size at 60N = %v", s)
	}
}
