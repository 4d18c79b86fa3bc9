// Package app wires the mesh, camera, driver and terrain loader together
// from a configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/roamsphere/internal/config"
	"github.com/Faultbox/roamsphere/internal/driver"
	"github.com/Faultbox/roamsphere/internal/engine/camera"
	"github.com/Faultbox/roamsphere/internal/engine/terrain"
	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
)

// App is a running globe.
type App struct {
	Sphere *roam.Sphere
	Camera *camera.GlobeCamera
	Driver *driver.Driver

	cfg    *config.Config
	log    *zap.Logger
	loader *terrain.Loader
	tiles  []terrain.Tile
}

// New creates the mesh and its collaborators. Nothing runs until Run or
// LoadTerrain is called.
func New(cfg *config.Config, log *zap.Logger, opts ...driver.Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing globe",
		zap.Float64("lat", cfg.Camera.Lat),
		zap.Float64("lon", cfg.Camera.Lon),
		zap.Float64("elev", cfg.Camera.Elev),
		zap.String("height_source", cfg.Height.Source),
	)

	tiles, err := Tiles(cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to set up terrain: %w", err)
	}

	a := &App{
		cfg:   cfg,
		log:   log,
		tiles: tiles,
	}
	a.Sphere = roam.New(cfg.Engine.Roam(), roam.WithLogger(log.Named("roam")))
	a.Camera = camera.NewGlobeCamera(cfg.Camera.Lat, cfg.Camera.Lon, cfg.Camera.Elev)
	a.Camera.SetRotation(cfg.Camera.Tilt, cfg.Camera.Heading)
	a.Camera.Resize(float64(cfg.Camera.Width), float64(cfg.Camera.Height))

	opts = append([]driver.Option{driver.WithLogger(log.Named("driver"))}, opts...)
	a.Driver = driver.New(a.Sphere, a.Camera, driver.Config{
		FastInterval:  cfg.Scheduler.FastInterval,
		SlowInterval:  cfg.Scheduler.SlowInterval,
		ErrorInterval: cfg.Scheduler.ErrorInterval,
	}, opts...)

	// Bind through the driver so new heights reach the next error update.
	a.loader = terrain.NewLoader(a.Driver, cfg.Height.Workers, log.Named("terrain"))

	log.Info("globe initialized", zap.Int("tiles", len(tiles)))
	return a, nil
}

// Tiles builds the height tiles selected by the config.
func Tiles(h config.HeightConfig) ([]terrain.Tile, error) {
	switch h.Source {
	case config.SourceNone, "":
		return nil, nil
	case config.SourceFractal:
		// One tile per octant so the workers share the binding.
		src := terrain.NewFractal(h.Noise.Params())
		var tiles []terrain.Tile
		for _, lat := range []float64{geo.South, 0} {
			for lon := geo.West; lon < geo.East; lon += 90 {
				tiles = append(tiles, terrain.SourceTile(
					geo.NewBounds(lat+90, lat, lon+90, lon), src))
			}
		}
		return tiles, nil
	case config.SourceTiles:
		tiles := make([]terrain.Tile, 0, len(h.Tiles))
		for _, t := range h.Tiles {
			tiles = append(tiles, terrain.BILTile(t.Path,
				geo.NewBounds(t.North, t.South, t.East, t.West), t.Width, t.Height))
		}
		return tiles, nil
	default:
		return nil, fmt.Errorf("unknown height source %q", h.Source)
	}
}

// LoadTerrain opens and binds every height tile, then refreshes errors.
// Tiles that fail are logged and reported together; the rest stay bound.
func (a *App) LoadTerrain(ctx context.Context) error {
	if len(a.tiles) == 0 {
		return nil
	}
	err := a.loader.Load(ctx, a.tiles)
	a.Driver.Invalidate()
	return err
}

// Run loads terrain in the background and drives the mesh until ctx is
// canceled. Terrain failures are logged, not fatal.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Driver.Run(ctx)
	})
	g.Go(func() error {
		start := time.Now()
		if err := a.LoadTerrain(ctx); err != nil && ctx.Err() == nil {
			a.log.Warn("terrain incomplete", zap.Error(err))
			return nil
		}
		a.log.Debug("terrain ready", zap.Duration("elapsed", time.Since(start)))
		return nil
	})
	return g.Wait()
}

// Close releases the mesh.
func (a *App) Close() {
	a.log.Info("closing globe", zap.Any("stats", a.Sphere.Stats()))
	a.Sphere.Close()
}
