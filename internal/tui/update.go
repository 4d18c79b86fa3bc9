package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Faultbox/roamsphere/internal/engine/picking"
)

const headerHeight = 1

// layout returns the map area in cells.
func (m Model) layout() (w, h int) {
	footer := 1 + lipgloss.Height(m.help.View(m.keys))
	return max(10, m.width), max(4, m.height-headerHeight-footer)
}

// resizeCamera matches the camera viewport to the map area.
func (m Model) resizeCamera() {
	w, h := m.layout()
	m.cam.Resize(float64(w)*cellPxW, float64(h)*cellPxH)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeCamera()
	case refreshMsg:
		m.refresh()
		m.updateHover()
		return m, refreshCmd()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.cam.HandlePan(1, 0)
		case key.Matches(msg, m.keys.Down):
			m.cam.HandlePan(-1, 0)
		case key.Matches(msg, m.keys.Left):
			m.cam.HandlePan(0, -1)
		case key.Matches(msg, m.keys.Right):
			m.cam.HandlePan(0, 1)
		case key.Matches(msg, m.keys.ZoomIn):
			m.cam.HandleZoom(1)
		case key.Matches(msg, m.keys.ZoomOut):
			m.cam.HandleZoom(-1)
		case key.Matches(msg, m.keys.TiltUp):
			m.cam.HandleRotate(-5, 0)
		case key.Matches(msg, m.keys.TiltDown):
			m.cam.HandleRotate(5, 0)
		case key.Matches(msg, m.keys.TurnLeft):
			m.cam.HandleRotate(0, -10)
		case key.Matches(msg, m.keys.TurnRight):
			m.cam.HandleRotate(0, 10)
		case key.Matches(msg, m.keys.Split):
			m.status = fmt.Sprintf("split: %v", m.sphere.SplitOne())
			m.refresh()
		case key.Matches(msg, m.keys.Merge):
			m.status = fmt.Sprintf("merge: %v", m.sphere.MergeOne())
			m.refresh()
		case key.Matches(msg, m.keys.Reset):
			m.cam.SetPosition(m.home[0], m.home[1], m.home[2])
			m.cam.SetRotation(0, 0)
			m.status = "view reset"
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resizeCamera()
		}
		m.updateHover()
	case tea.MouseMsg:
		w, h := m.layout()
		cx, cy := msg.X, msg.Y-headerHeight
		m.hovering = cx >= 0 && cx < w && cy >= 0 && cy < h
		m.hoverCellX, m.hoverCellY = cx, cy
		m.updateHover()
	}
	return m, nil
}

// updateHover picks the surface and the facet under the hovered cell.
func (m *Model) updateHover() {
	m.hoverFacet = -1
	if !m.hovering {
		return
	}
	v := m.cam.View()
	px := (float64(m.hoverCellX) + 0.5) * cellPxW
	py := (float64(m.hoverCellY) + 0.5) * cellPxH
	lat, lon, ok := picking.PickSurface(v, px, py, 0)
	if !ok {
		m.hovering = false
		return
	}
	m.hoverLat, m.hoverLon = lat, lon
	m.hoverFacet, _ = picking.PickFacet(picking.ViewRay(v, px, py), m.facets)
}
