package terrain

import (
	gomath "math"

	"github.com/Faultbox/roamsphere/pkg/geo"
)

// NoiseParams controls fractal terrain generation.
type NoiseParams struct {
	Octaves     int
	Frequency   float64 // waves per planet radius for the first octave
	Amplitude   float64 // meters for the first octave
	Persistence float64
	Lacunarity  float64
	Seed        int64
}

// DefaultNoiseParams returns continent-scale relief of a few kilometers.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Octaves:     6,
		Frequency:   3,
		Amplitude:   4000,
		Persistence: 0.5,
		Lacunarity:  2.0,
		Seed:        1,
	}
}

// Fractal is a procedural height source built from octaves of sine waves.
// It is evaluated on the unit sphere so it has no seam at the antimeridian
// or the poles.
type Fractal struct {
	params NoiseParams
	phase  [][3]float64
}

// NewFractal creates a source with per-octave phases derived from the seed.
func NewFractal(p NoiseParams) *Fractal {
	f := &Fractal{params: p, phase: make([][3]float64, p.Octaves)}
	x := uint64(p.Seed)*0x9E3779B97F4A7C15 + 1
	for i := range f.phase {
		for j := range f.phase[i] {
			// xorshift
			x ^= x << 13
			x ^= x >> 7
			x ^= x << 17
			f.phase[i][j] = float64(x%10000) / 10000 * 2 * gomath.Pi
		}
	}
	return f
}

// MaxHeight bounds the absolute value of every sample.
func (f *Fractal) MaxHeight() float64 {
	total := 0.0
	amp := f.params.Amplitude
	for i := 0; i < f.params.Octaves; i++ {
		total += gomath.Abs(amp)
		amp *= f.params.Persistence
	}
	return total
}

// Height always has data.
func (f *Fractal) Height(lat, lon float64) (float64, bool) {
	u := geo.UnitVector(lat, lon)
	sum := 0.0
	amp := f.params.Amplitude
	freq := f.params.Frequency
	for i := 0; i < f.params.Octaves; i++ {
		ph := f.phase[i]
		sum += amp *
			gomath.Sin(u.X*freq+ph[0]) *
			gomath.Cos(u.Y*freq+ph[1]) *
			gomath.Sin(u.Z*freq+ph[2])
		amp *= f.params.Persistence
		freq *= f.params.Lacunarity
	}
	return sum, true
}
