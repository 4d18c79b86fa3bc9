// Package driver runs the periodic work that keeps a mesh adapted to a
// moving camera: two split/merge timers and an error update timer.
package driver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/roamsphere/internal/roam"
)

// Mesh is the part of roam.Sphere the driver needs.
type Mesh interface {
	SetView(v roam.View)
	UpdateErrors()
	SplitMerge() roam.TickResult
	SetHeightFunc(q orb.Bound, src roam.HeightSource, forceUpdate bool)
}

// ViewSource provides the camera. The version must change whenever the
// view does.
type ViewSource interface {
	Snapshot() (roam.View, uint64)
}

// Config holds the timer periods.
type Config struct {
	FastInterval  time.Duration
	SlowInterval  time.Duration
	ErrorInterval time.Duration
}

// DefaultConfig returns the periods used by the viewer.
func DefaultConfig() Config {
	return Config{
		FastInterval:  33 * time.Millisecond,
		SlowInterval:  500 * time.Millisecond,
		ErrorInterval: 100 * time.Millisecond,
	}
}

// Stats counts the work done so far.
type Stats struct {
	Ticks       uint64
	Splits      uint64
	Merges      uint64
	ViewUpdates uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithOnChange registers a callback run after every tick that changed the
// mesh, typically to schedule a redraw. It runs on a timer goroutine.
func WithOnChange(fn func(roam.TickResult)) Option {
	return func(d *Driver) {
		d.onChange = fn
	}
}

// Driver ties a mesh to a camera.
type Driver struct {
	mesh     Mesh
	views    ViewSource
	cfg      Config
	log      *zap.Logger
	onChange func(roam.TickResult)

	seen  atomic.Uint64 // last applied view version
	stale atomic.Bool   // heights were rebound since the last error update

	ticks, splits, merges, viewUpdates atomic.Uint64
}

// New creates a driver. Zero intervals in cfg fall back to the defaults.
func New(mesh Mesh, views ViewSource, cfg Config, opts ...Option) *Driver {
	def := DefaultConfig()
	if cfg.FastInterval <= 0 {
		cfg.FastInterval = def.FastInterval
	}
	if cfg.SlowInterval <= 0 {
		cfg.SlowInterval = def.SlowInterval
	}
	if cfg.ErrorInterval <= 0 {
		cfg.ErrorInterval = def.ErrorInterval
	}
	d := &Driver{
		mesh:  mesh,
		views: views,
		cfg:   cfg,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetHeightFunc binds a height source through the driver so that the
// next error update picks up the new heights. It lets the driver stand in
// for the mesh as a terrain binder.
func (d *Driver) SetHeightFunc(q orb.Bound, src roam.HeightSource, forceUpdate bool) {
	d.mesh.SetHeightFunc(q, src, forceUpdate)
	if !forceUpdate {
		d.stale.Store(true)
	}
}

// Invalidate requests an error update at the next error tick.
func (d *Driver) Invalidate() {
	d.stale.Store(true)
}

// SyncView installs the camera view if it changed since the last call,
// otherwise it refreshes errors when heights were rebound. It reports
// whether errors were recomputed.
func (d *Driver) SyncView() bool {
	view, v := d.views.Snapshot()
	if old := d.seen.Load(); v != old && d.seen.CompareAndSwap(old, v) {
		d.stale.Store(false)
		d.mesh.SetView(view)
		d.viewUpdates.Add(1)
		return true
	}
	if d.stale.CompareAndSwap(true, false) {
		d.mesh.UpdateErrors()
		return true
	}
	return false
}

// Step syncs the view and runs one split/merge tick. It is the
// synchronous equivalent of one round of Run.
func (d *Driver) Step() roam.TickResult {
	d.SyncView()
	return d.tick()
}

// Converge steps until a tick changes nothing or limit ticks have run, and
// returns the number of ticks used.
func (d *Driver) Converge(limit int) int {
	for i := 1; i <= limit; i++ {
		if !d.Step().Changed() {
			return i
		}
	}
	return limit
}

func (d *Driver) tick() roam.TickResult {
	res := d.mesh.SplitMerge()
	d.ticks.Add(1)
	if !res.Changed() {
		return res
	}
	d.splits.Add(uint64(res.Splits))
	d.merges.Add(uint64(res.Merges))
	if d.onChange != nil {
		d.onChange(res)
	}
	return res
}

// Stats returns the counters.
func (d *Driver) Stats() Stats {
	return Stats{
		Ticks:       d.ticks.Load(),
		Splits:      d.splits.Load(),
		Merges:      d.merges.Load(),
		ViewUpdates: d.viewUpdates.Load(),
	}
}

// Run drives the mesh until ctx is canceled. It always returns nil after
// a cancellation.
func (d *Driver) Run(ctx context.Context) error {
	d.log.Info("driver started",
		zap.Duration("fast", d.cfg.FastInterval),
		zap.Duration("slow", d.cfg.SlowInterval),
		zap.Duration("errors", d.cfg.ErrorInterval))

	d.SyncView()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(ctx, d.cfg.FastInterval, func() { d.tick() })
	})
	g.Go(func() error {
		statsTimer := time.Now()
		return every(ctx, d.cfg.SlowInterval, func() {
			d.tick()
			if time.Since(statsTimer) >= 5*time.Second {
				s := d.Stats()
				d.log.Debug("driver stats",
					zap.Uint64("ticks", s.Ticks),
					zap.Uint64("splits", s.Splits),
					zap.Uint64("merges", s.Merges),
					zap.Uint64("view_updates", s.ViewUpdates))
				statsTimer = time.Now()
			}
		})
	})
	g.Go(func() error {
		return every(ctx, d.cfg.ErrorInterval, func() { d.SyncView() })
	})
	err := g.Wait()

	d.log.Info("driver stopped")
	return err
}

// every calls fn on each tick of a ticker until ctx is done.
func every(ctx context.Context, period time.Duration, fn func()) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn()
		}
	}
}
