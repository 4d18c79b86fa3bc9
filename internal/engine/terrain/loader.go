package terrain

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/roamsphere/internal/roam"
)

// Binder attaches a height source to a region of a mesh.
type Binder interface {
	SetHeightFunc(q orb.Bound, src roam.HeightSource, forceUpdate bool)
}

// Tile is a height source covering a lat/lon box, opened on demand.
type Tile struct {
	Bounds orb.Bound
	Open   func(ctx context.Context) (roam.HeightSource, error)
}

// SourceTile wraps a source that is already in memory.
func SourceTile(bounds orb.Bound, src roam.HeightSource) Tile {
	return Tile{
		Bounds: bounds,
		Open: func(context.Context) (roam.HeightSource, error) {
			return src, nil
		},
	}
}

// BILTile reads a BIL raster from path when opened.
func BILTile(path string, bounds orb.Bound, width, height int) Tile {
	return Tile{
		Bounds: bounds,
		Open: func(context.Context) (roam.HeightSource, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open tile: %w", err)
			}
			defer f.Close()
			return LoadBIL(f, bounds, width, height)
		},
	}
}

// Loader opens tiles on a pool of workers and binds each one as soon as it
// is ready. Binding is deferred: heights show up at the next error update.
type Loader struct {
	binder  Binder
	workers int
	log     *zap.Logger
}

// NewLoader creates a loader with the given number of workers.
func NewLoader(b Binder, workers int, log *zap.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{binder: b, workers: workers, log: log}
}

// Load opens and binds every tile. Tiles that fail to open are skipped and
// their errors returned together; the others are still bound. Load stops
// early when ctx is canceled.
func (l *Loader) Load(ctx context.Context, tiles []Tile) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(l.workers)

	start := time.Now()
	for _, tile := range tiles {
		if ctx.Err() != nil {
			break
		}
		tile := tile
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := tile.Open(ctx)
			if err != nil {
				l.log.Warn("tile load failed", zap.Any("bounds", tile.Bounds), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("tile %v: %w", tile.Bounds, err))
				mu.Unlock()
				return nil
			}
			l.binder.SetHeightFunc(tile.Bounds, src, false)
			l.log.Debug("tile bound", zap.Any("bounds", tile.Bounds))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.log.Info("tiles loaded",
		zap.Int("count", len(tiles)),
		zap.Int("failed", len(multierr.Errors(errs))),
		zap.Duration("elapsed", time.Since(start)))
	return errs
}
