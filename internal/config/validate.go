package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/roamsphere/internal/logger"
)

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var err error
	add := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf(format, args...))
	}

	e := c.Engine
	if e.SplitThreshold <= 0 {
		add("engine.split_threshold must be positive, got %g", e.SplitThreshold)
	}
	if e.MergeThreshold < 0 || e.MergeThreshold >= e.SplitThreshold {
		add("engine.merge_threshold must be in [0, split_threshold), got %g", e.MergeThreshold)
	}
	// Forced split chains are advanced 2 leaves at a time.
	if e.Budget < 2 {
		add("engine.budget must be at least 2, got %d", e.Budget)
	}
	if e.MaxDepth < 0 || e.MaxDepth > 60 {
		add("engine.max_depth must be in [0, 60], got %d", e.MaxDepth)
	}
	if e.MaxTriangles < 8 {
		add("engine.max_triangles must be at least 8, got %d", e.MaxTriangles)
	}

	s := c.Scheduler
	if s.FastInterval <= 0 || s.SlowInterval <= 0 || s.ErrorInterval <= 0 {
		add("scheduler intervals must be positive")
	}
	if s.SlowInterval < s.FastInterval {
		add("scheduler.slow_interval %v is shorter than fast_interval %v", s.SlowInterval, s.FastInterval)
	}

	cam := c.Camera
	if cam.Lat < -90 || cam.Lat > 90 {
		add("camera.lat must be in [-90, 90], got %g", cam.Lat)
	}
	if cam.Elev <= 0 {
		add("camera.elev must be positive, got %g", cam.Elev)
	}
	if cam.Tilt < -90 || cam.Tilt > 0 {
		add("camera.tilt must be in [-90, 0], got %g", cam.Tilt)
	}
	if cam.Width <= 0 || cam.Height <= 0 {
		add("camera viewport must be positive, got %dx%d", cam.Width, cam.Height)
	}

	h := c.Height
	switch h.Source {
	case SourceNone:
	case SourceFractal:
		if h.Noise.Octaves < 1 {
			add("height.noise.octaves must be at least 1, got %d", h.Noise.Octaves)
		}
	case SourceTiles:
		if len(h.Tiles) == 0 {
			add("height.tiles is empty")
		}
		for i, t := range h.Tiles {
			if t.Path == "" {
				add("height.tiles[%d].path is empty", i)
			}
			if t.North <= t.South {
				add("height.tiles[%d] north %g is not above south %g", i, t.North, t.South)
			}
			if t.Width < 2 || t.Height < 2 {
				add("height.tiles[%d] size %dx%d is too small", i, t.Width, t.Height)
			}
		}
	default:
		add("height.source %q is not one of none, fractal, tiles", h.Source)
	}
	if h.Workers < 1 {
		add("height.workers must be at least 1, got %d", h.Workers)
	}

	if c.Sim.Ticks < 0 {
		add("sim.ticks must not be negative, got %d", c.Sim.Ticks)
	}

	if _, lerr := logger.ParseLevel(c.Logging.Level); lerr != nil {
		add("logging.level: %v", lerr)
	}
	return err
}
