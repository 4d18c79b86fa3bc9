// Package config handles roamsphere configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/roamsphere/internal/engine/terrain"
	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
)

// Config holds all settings.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Camera    CameraConfig    `yaml:"camera"`
	Height    HeightConfig    `yaml:"height"`
	Sim       SimConfig       `yaml:"sim"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EngineConfig holds mesh refinement thresholds and limits.
type EngineConfig struct {
	SplitThreshold float64 `yaml:"split_threshold"` // pixels
	MergeThreshold float64 `yaml:"merge_threshold"` // pixels
	Budget         int     `yaml:"budget"`
	MaxDepth       int     `yaml:"max_depth"`
	MaxTriangles   int     `yaml:"max_triangles"`
}

// Roam converts the section into the mesh configuration.
func (e EngineConfig) Roam() roam.Config {
	return roam.Config{
		SplitThreshold: e.SplitThreshold,
		MergeThreshold: e.MergeThreshold,
		Budget:         e.Budget,
		MaxDepth:       e.MaxDepth,
		MaxTriangles:   e.MaxTriangles,
	}
}

// SchedulerConfig holds the driver timer periods.
type SchedulerConfig struct {
	FastInterval  time.Duration `yaml:"fast_interval"`
	SlowInterval  time.Duration `yaml:"slow_interval"`
	ErrorInterval time.Duration `yaml:"error_interval"`
}

// CameraConfig holds the initial camera placement.
type CameraConfig struct {
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Elev    float64 `yaml:"elev"`    // meters
	Tilt    float64 `yaml:"tilt"`    // degrees, 0 = straight down, -90 = horizon
	Heading float64 `yaml:"heading"` // degrees
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
}

// HeightConfig selects the height sources bound to the sphere.
type HeightConfig struct {
	Source  string       `yaml:"source"` // none, fractal or tiles
	Workers int          `yaml:"workers"`
	Noise   NoiseConfig  `yaml:"noise"`
	Tiles   []TileConfig `yaml:"tiles"`
}

// NoiseConfig holds fractal terrain parameters.
type NoiseConfig struct {
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Amplitude   float64 `yaml:"amplitude"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Seed        int64   `yaml:"seed"`
}

// Params converts the section into fractal parameters.
func (n NoiseConfig) Params() terrain.NoiseParams {
	return terrain.NoiseParams{
		Octaves:     n.Octaves,
		Frequency:   n.Frequency,
		Amplitude:   n.Amplitude,
		Persistence: n.Persistence,
		Lacunarity:  n.Lacunarity,
		Seed:        n.Seed,
	}
}

// TileConfig describes one BIL elevation raster.
type TileConfig struct {
	Path   string  `yaml:"path"`
	North  float64 `yaml:"north"`
	South  float64 `yaml:"south"`
	West   float64 `yaml:"west"`
	East   float64 `yaml:"east"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// SimConfig holds headless simulation settings.
type SimConfig struct {
	Ticks    int    `yaml:"ticks"`
	Snapshot string `yaml:"snapshot"` // PNG path, empty to skip
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Height sources.
const (
	SourceNone    = "none"
	SourceFractal = "fractal"
	SourceTiles   = "tiles"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	rc := roam.DefaultConfig()
	np := terrain.DefaultNoiseParams()
	return &Config{
		Engine: EngineConfig{
			SplitThreshold: rc.SplitThreshold,
			MergeThreshold: rc.MergeThreshold,
			Budget:         rc.Budget,
			MaxDepth:       rc.MaxDepth,
			MaxTriangles:   rc.MaxTriangles,
		},
		Scheduler: SchedulerConfig{
			FastInterval:  33 * time.Millisecond,
			SlowInterval:  500 * time.Millisecond,
			ErrorInterval: 100 * time.Millisecond,
		},
		Camera: CameraConfig{
			Lat:    0,
			Lon:    0,
			Elev:   2 * geo.EarthRadius,
			Width:  800,
			Height: 600,
		},
		Height: HeightConfig{
			Source:  SourceFractal,
			Workers: 4,
			Noise: NoiseConfig{
				Octaves:     np.Octaves,
				Frequency:   np.Frequency,
				Amplitude:   np.Amplitude,
				Persistence: np.Persistence,
				Lacunarity:  np.Lacunarity,
				Seed:        np.Seed,
			},
		},
		Sim: SimConfig{
			Ticks: 600,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
