package tui

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Faultbox/roamsphere/pkg/math"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	w, h := m.layout()

	header := titleStyle.Render(" roamsphere ─ adaptive globe mesh ")
	header = lipgloss.NewStyle().Width(w).Render(header)

	raw := m.renderMesh(w, h)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = meshStyle.Render(l)
	}
	if m.hovering && m.hoverCellY >= 0 && m.hoverCellY < len(raw) {
		lines[m.hoverCellY] = overlayCursor(raw[m.hoverCellY], m.hoverCellX)
	}
	mapView := lipgloss.NewStyle().Width(w).Height(h).Render(strings.Join(lines, "\n"))

	footer := lipgloss.JoinVertical(lipgloss.Left,
		dimStyle.Render(" "+m.statusLine()+" "),
		m.help.View(m.keys))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, mapView, footer)
	return appStyle.Width(w).Height(m.height).Render(ui)
}

func (m Model) statusLine() string {
	lat, lon, elev := m.cam.Position()
	tilt, heading := m.cam.Rotation()
	parts := []string{
		fmt.Sprintf("cam %.3f,%.3f %.0fm tilt %.0f hdg %.0f", lat, lon, elev, tilt, heading),
		fmt.Sprintf("leaves %d depth %d", m.stats.Leaves, m.stats.MaxDepth),
	}
	if m.drv != nil {
		st := m.drv.Stats()
		parts = append(parts, fmt.Sprintf("splits %d merges %d", st.Splits, st.Merges))
	}
	if m.hovering {
		cur := fmt.Sprintf("cursor %.4f,%.4f", m.hoverLat, m.hoverLon)
		if m.hoverFacet >= 0 && m.hoverFacet < len(m.facets) {
			f := m.facets[m.hoverFacet]
			cur += fmt.Sprintf(" depth %d err %.2f", f.Depth, f.Error)
		}
		parts = append(parts, cur)
	}
	parts = append(parts, m.status)
	return strings.Join(parts, " │ ")
}

// renderMesh draws the front-facing edges of every facet on a braille
// canvas of w x h cells.
func (m Model) renderMesh(w, h int) []string {
	br := newBrailleBuf(w, h)
	v := m.cam.View()
	vpH := v.Viewport[3]
	limit := 4 * max(w*2, h*4)

	for _, f := range m.facets {
		if f.Normal().Dot(v.Eye.Sub(f.Corners[0].Pos)) <= 0 {
			continue // back-facing
		}
		var pts [3][2]int
		visible := true
		for i, c := range f.Corners {
			win, ok := math.Project(c.Pos, v.Model, v.Proj, v.Viewport)
			if !ok || win.Z < 0 || win.Z > 1 {
				visible = false
				break
			}
			mx := int(gomath.Floor(win.X / dotPx))
			my := int(gomath.Floor((vpH - win.Y) / dotPx))
			if abs(mx) > limit || abs(my) > limit {
				visible = false
				break
			}
			pts[i] = [2]int{mx, my}
		}
		if !visible {
			continue
		}
		for i := range pts {
			a, b := pts[i], pts[(i+1)%3]
			br.drawLineMicro(a[0], a[1], b[0], b[1])
		}
	}
	return br.toLines()
}

// overlayCursor replaces cell x of a plain canvas line with the cursor.
func overlayCursor(line string, x int) string {
	r := []rune(line)
	if x < 0 || x >= len(r) {
		return meshStyle.Render(line)
	}
	return meshStyle.Render(string(r[:x])) + cursorStyle.Render("+") + meshStyle.Render(string(r[x+1:]))
}
