package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/roamsphere/internal/config"
	"github.com/Faultbox/roamsphere/pkg/geo"
)

func TestTiles(t *testing.T) {
	tests := []struct {
		name    string
		height  config.HeightConfig
		want    int
		wantErr bool
	}{
		{"none", config.HeightConfig{Source: config.SourceNone}, 0, false},
		{"fractal", config.Default().Height, 8, false},
		{"tiles", config.HeightConfig{Source: config.SourceTiles, Tiles: []config.TileConfig{
			{Path: "a.bil", North: 1, South: 0, East: 1, West: 0, Width: 2, Height: 2},
			{Path: "b.bil", North: 2, South: 1, East: 1, West: 0, Width: 2, Height: 2},
		}}, 2, false},
		{"unknown", config.HeightConfig{Source: "lidar"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles, err := Tiles(tt.height)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Tiles() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(tiles) != tt.want {
				t.Errorf("got %d tiles, want %d", len(tiles), tt.want)
			}
		})
	}
}

func TestNewAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Lat, cfg.Camera.Lon, cfg.Camera.Elev = 46.5, 7.9, 3000
	cfg.Camera.Tilt, cfg.Camera.Heading = -60, 90
	cfg.Engine.Budget = 16

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if lat, lon, elev := a.Camera.Position(); lat != 46.5 || lon != 7.9 || elev != 3000 {
		t.Errorf("camera at (%f, %f, %f)", lat, lon, elev)
	}
	if tilt, heading := a.Camera.Rotation(); tilt != -60 || heading != 90 {
		t.Errorf("camera rotation (%f, %f)", tilt, heading)
	}
	if got := a.Sphere.Config(); got != cfg.Engine.Roam() {
		t.Errorf("sphere config %+v, want %+v", got, cfg.Engine.Roam())
	}
	if vp := a.Camera.View().Viewport; vp[2] != 800 || vp[3] != 600 {
		t.Errorf("viewport %v", vp)
	}
}

func writeTile(t *testing.T, dir, name string, v int16) string {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, []int16{v, v, v, v}); err != nil {
		t.Fatalf("binary.Write: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write tile: %v", err)
	}
	return path
}

func TestLoadTerrainTiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Camera.Lat, cfg.Camera.Lon, cfg.Camera.Elev = 0.5, 0.5, 1e6
	cfg.Height.Source = config.SourceTiles
	cfg.Height.Tiles = []config.TileConfig{
		{Path: writeTile(t, dir, "n00e000.bil", 1000), North: 1, South: 0, East: 1, West: 0, Width: 2, Height: 2},
		{Path: filepath.Join(dir, "missing.bil"), North: 2, South: 1, East: 1, West: 0, Width: 2, Height: 2},
	}

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	err = a.LoadTerrain(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing.bil") {
		t.Errorf("expected the missing tile to be reported, got %v", err)
	}

	// Deferred heights show up once errors are recomputed.
	a.Driver.Step()

	found := false
	for _, f := range a.Sphere.GetIntersect(geo.NewBounds(1, 0, 1, 0), false) {
		for _, c := range f.Corners {
			if c.Elev == 1000 {
				found = true
			}
		}
	}
	if !found {
		t.Error("no corner took the tile height")
	}
	if err := a.Sphere.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Elev = 2e6
	cfg.Scheduler.FastInterval = time.Millisecond
	cfg.Scheduler.SlowInterval = 5 * time.Millisecond
	cfg.Scheduler.ErrorInterval = 2 * time.Millisecond

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if st := a.Sphere.Stats(); st.Leaves <= 8 {
		t.Errorf("expected refinement, got %d leaves", st.Leaves)
	}
	if err := a.Sphere.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}
