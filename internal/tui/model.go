// Package tui is a terminal wireframe viewer for the adaptive sphere. It
// only reads the mesh; refinement is left to a driver running alongside.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Faultbox/roamsphere/internal/driver"
	"github.com/Faultbox/roamsphere/internal/engine/camera"
	"github.com/Faultbox/roamsphere/internal/roam"
)

// Terminal cells are treated as 8x16 pixel boxes, so one braille dot
// covers 4x4 pixels.
const (
	cellPxW = 8.0
	cellPxH = 16.0
	dotPx   = 4.0
)

const refreshInterval = 100 * time.Millisecond

type refreshMsg time.Time

type Model struct {
	sphere *roam.Sphere
	cam    *camera.GlobeCamera
	drv    *driver.Driver // optional, for statistics

	home [3]float64 // lat, lon, elev restored by reset

	keys keyMap
	help help.Model

	width  int
	height int

	facets []roam.Facet
	stats  roam.Stats
	status string

	// hover state
	hovering   bool
	hoverCellX int
	hoverCellY int
	hoverLat   float64
	hoverLon   float64
	hoverFacet int // index into facets, -1 when none
}

// New creates a viewer for sphere seen through cam. drv may be nil.
func New(sphere *roam.Sphere, cam *camera.GlobeCamera, drv *driver.Driver) Model {
	lat, lon, elev := cam.Position()
	m := Model{
		sphere:     sphere,
		cam:        cam,
		drv:        drv,
		home:       [3]float64{lat, lon, elev},
		keys:       defaultKeyMap(),
		help:       help.New(),
		status:     "roamsphere ready",
		hoverFacet: -1,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd { return refreshCmd() }

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// refresh takes a new snapshot of the mesh.
func (m *Model) refresh() {
	m.facets = m.sphere.Leaves()
	m.stats = m.sphere.Stats()
}
