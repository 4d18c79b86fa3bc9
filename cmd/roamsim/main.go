// Package main is the entry point for the headless mesh simulator.
//
// The simulator flies the camera along a fixed path (descend from orbit,
// pan across the target, climb back out), converging the mesh at every
// waypoint and logging how it refines and coarsens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/roamsphere/internal/app"
	"github.com/Faultbox/roamsphere/internal/config"
	"github.com/Faultbox/roamsphere/internal/engine/debug"
	"github.com/Faultbox/roamsphere/internal/engine/lighting"
	"github.com/Faultbox/roamsphere/internal/logger"
	"github.com/Faultbox/roamsphere/pkg/geo"
)

// waypoint is a camera position on the scripted path.
type waypoint struct {
	name           string
	lat, lon, elev float64
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== roamsim ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("simulation finished")
}

func run(cfg *config.Config) error {
	a, err := app.New(cfg, logger.Log)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	if err := a.LoadTerrain(context.Background()); err != nil {
		logger.Warn("terrain incomplete", zap.Error(err))
	}
	logger.Info("terrain loaded", zap.Duration("elapsed", time.Since(start)))

	path := flightPath(cfg.Camera)
	perStop := cfg.Sim.Ticks / len(path)
	if perStop < 1 {
		perStop = 1
	}
	for _, wp := range path {
		a.Camera.SetPosition(wp.lat, wp.lon, wp.elev)
		t0 := time.Now()
		ticks := a.Driver.Converge(perStop)
		st := a.Sphere.Stats()
		logger.Info("waypoint",
			zap.String("name", wp.name),
			zap.Float64("elev", wp.elev),
			zap.Int("ticks", ticks),
			zap.Bool("converged", ticks < perStop),
			zap.Int("leaves", st.Leaves),
			zap.Int("points", st.Points),
			zap.Int("max_depth", st.MaxDepth),
			zap.Float64("max_split_error", st.MaxSplitError),
			zap.Duration("elapsed", time.Since(t0)),
		)
	}

	// Refine the area under the final position as a renderer would before
	// texturing it.
	lat, lon, _ := a.Camera.Position()
	query := geo.NewBounds(lat+1, lat-1, lon+1, lon-1)
	facets := a.Sphere.GetIntersect(query, true)
	logger.Info("intersect", zap.Int("facets", len(facets)))

	if err := a.Sphere.Check(); err != nil {
		return fmt.Errorf("mesh invariants: %w", err)
	}

	st := a.Driver.Stats()
	logger.Info("driver totals",
		zap.Uint64("ticks", st.Ticks),
		zap.Uint64("splits", st.Splits),
		zap.Uint64("merges", st.Merges),
		zap.Uint64("view_updates", st.ViewUpdates),
	)

	if cfg.Sim.Snapshot != "" {
		r := debug.NewMeshRender(1440, 720)
		r.Sun = lighting.SunAt(time.Now(), 0.3)
		r.Highlight = append(r.Highlight, query)
		if err := debug.WritePNG(cfg.Sim.Snapshot, r.Render(a.Sphere.Leaves())); err != nil {
			return err
		}
		logger.Info("snapshot written", zap.String("path", cfg.Sim.Snapshot))
	}
	return nil
}

// flightPath descends onto the configured position, pans east and north,
// and climbs back to orbit.
func flightPath(c config.CameraConfig) []waypoint {
	orbit := 4 * geo.EarthRadius
	return []waypoint{
		{"orbit", c.Lat, c.Lon, orbit},
		{"approach", c.Lat, c.Lon, (orbit + c.Elev) / 2},
		{"target", c.Lat, c.Lon, c.Elev},
		{"pan east", c.Lat, geo.NormalizeLon(c.Lon + 2), c.Elev},
		{"pan north", clamp(c.Lat+2, geo.South, geo.North), geo.NormalizeLon(c.Lon + 2), c.Elev},
		{"climb", c.Lat, c.Lon, orbit},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
