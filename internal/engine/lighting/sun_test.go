package lighting

import (
	gomath "math"
	"testing"
	"time"

	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
	"github.com/Faultbox/roamsphere/pkg/math"
)

func TestSubsolarPoint(t *testing.T) {
	tests := []struct {
		name   string
		at     time.Time
		lat    float64
		lon    float64
		latTol float64
	}{
		{"june solstice noon", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), 23.44, 0, 0.2},
		{"december solstice midnight", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC), -23.44, 180, 0.2},
		{"march equinox evening", time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC), 0, -90, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := SubsolarPoint(tt.at)
			if gomath.Abs(lat-tt.lat) > tt.latTol {
				t.Errorf("lat = %f, want %f", lat, tt.lat)
			}
			dLon := gomath.Abs(geo.NormalizeLon(lon - tt.lon))
			if dLon > 1e-9 {
				t.Errorf("lon = %f, want %f", lon, tt.lon)
			}
		})
	}
}

func TestIntensity(t *testing.T) {
	sun := NewSun(0, 0, 0.2)
	tests := []struct {
		name   string
		normal math.Vec3
		want   float64
	}{
		{"facing", SunDirection(0, 0), 1},
		{"grazing", SunDirection(0, 90), 0.2},
		{"night", SunDirection(0, 180), 0.2},
		{"oblique", SunDirection(0, 60), 0.2 + 0.8*0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sun.Intensity(tt.normal); gomath.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Intensity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestShadeFacet(t *testing.T) {
	s := roam.New(roam.DefaultConfig())
	sun := NewSun(45, 45, 0.1)

	lit, dark := 0, 0
	for _, f := range s.Leaves() {
		v := sun.ShadeFacet(f)
		if v < 0.1-1e-9 || v > 1+1e-9 {
			t.Errorf("shade %f out of range", v)
		}
		if v > 0.1+1e-9 {
			lit++
		} else {
			dark++
		}
	}
	// The sun sits above the center of one octant.
	if lit == 0 || dark == 0 {
		t.Errorf("expected both lit and dark facets, got %d lit, %d dark", lit, dark)
	}
}
