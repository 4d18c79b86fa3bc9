package tui

import (
	gomath "math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Faultbox/roamsphere/internal/driver"
	"github.com/Faultbox/roamsphere/internal/engine/camera"
	"github.com/Faultbox/roamsphere/internal/roam"
	"github.com/Faultbox/roamsphere/pkg/geo"
)

func TestBrailleSetPixel(t *testing.T) {
	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, '⠁'},
		{1, 0, '⠈'},
		{0, 3, '⡀'},
		{1, 3, '⢀'},
		{0, 2, '⠄'},
	}
	for _, tt := range tests {
		b := newBrailleBuf(1, 1)
		b.setPixel(tt.x, tt.y)
		if got := []rune(b.toLines()[0])[0]; got != tt.want {
			t.Errorf("setPixel(%d, %d) = %U, want %U", tt.x, tt.y, got, tt.want)
		}
	}

	b := newBrailleBuf(1, 1)
	b.setPixel(-1, 0)
	b.setPixel(2, 0)
	b.setPixel(0, 4)
	if got := b.toLines()[0]; got != " " {
		t.Errorf("out of range pixels drawn: %q", got)
	}
}

func TestDrawLineMicro(t *testing.T) {
	b := newBrailleBuf(2, 1)
	b.drawLineMicro(0, 0, 3, 0)
	if got := b.toLines()[0]; got != "⠉⠉" {
		t.Errorf("horizontal line = %q", got)
	}

	b = newBrailleBuf(1, 1)
	b.drawLineMicro(0, 3, 0, 0)
	if got := b.toLines()[0]; got != "⡇" {
		t.Errorf("vertical line = %q", got)
	}
}

func newTestModel(t *testing.T) (Model, *camera.GlobeCamera, *roam.Sphere) {
	t.Helper()
	s := roam.New(roam.DefaultConfig())
	cam := camera.NewGlobeCamera(0, 0, 2*geo.EarthRadius)
	m := New(s, cam, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model), cam, s
}

func TestResizeSetsViewport(t *testing.T) {
	_, cam, _ := newTestModel(t)
	vp := cam.View().Viewport
	if vp[2] != 80*cellPxW {
		t.Errorf("viewport width = %f, want %f", vp[2], 80*cellPxW)
	}
	if vp[3] <= 0 || vp[3] > 30*cellPxH {
		t.Errorf("viewport height = %f", vp[3])
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeys(t *testing.T) {
	m, cam, _ := newTestModel(t)

	_, _, elev := cam.Position()
	next, _ := m.Update(keyMsg("+"))
	m = next.(Model)
	if _, _, got := cam.Position(); got >= elev {
		t.Errorf("zoom in: elevation %f, was %f", got, elev)
	}

	next, _ = m.Update(keyMsg("]"))
	m = next.(Model)
	if tilt, _ := cam.Rotation(); tilt != -5 {
		t.Errorf("tilt = %f, want -5", tilt)
	}

	next, _ = m.Update(keyMsg("r"))
	m = next.(Model)
	if _, _, got := cam.Position(); got != elev {
		t.Errorf("reset: elevation %f, want %f", got, elev)
	}
	if tilt, _ := cam.Rotation(); tilt != 0 {
		t.Errorf("reset: tilt %f, want 0", tilt)
	}

	next, _ = m.Update(keyMsg("?"))
	if !next.(Model).help.ShowAll {
		t.Error("help not expanded")
	}

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not quit")
	}
}

func TestSplitMergeKeys(t *testing.T) {
	m, _, s := newTestModel(t)
	s.SetView(m.cam.View())

	next, _ := m.Update(keyMsg("S"))
	m = next.(Model)
	if m.stats.Leaves <= 8 {
		t.Errorf("split key: %d leaves", m.stats.Leaves)
	}
	next, _ = m.Update(keyMsg("M"))
	m = next.(Model)
	if m.stats.Leaves != 8 {
		t.Errorf("merge key: %d leaves, want 8", m.stats.Leaves)
	}
}

func TestViewRendersMesh(t *testing.T) {
	m, cam, s := newTestModel(t)
	d := driver.New(s, cam, driver.Config{})
	d.Converge(500)

	next, _ := m.Update(refreshMsg{})
	m = next.(Model)
	out := m.View()
	if !strings.Contains(out, "roamsphere") {
		t.Error("header missing")
	}
	if !strings.Contains(out, "leaves") {
		t.Error("status line missing")
	}
	dots := 0
	for _, r := range out {
		if r > 0x2800 && r <= 0x28FF {
			dots++
		}
	}
	if dots == 0 {
		t.Error("no mesh drawn")
	}
}

func TestMouseHover(t *testing.T) {
	m, _, _ := newTestModel(t)
	w, h := m.layout()

	next, _ := m.Update(tea.MouseMsg{X: w / 2, Y: headerHeight + h/2, Action: tea.MouseActionMotion})
	m = next.(Model)
	if !m.hovering {
		t.Fatal("expected the map center to hit the globe")
	}
	if gomath.Abs(m.hoverLat) > 1 || gomath.Abs(m.hoverLon) > 1 {
		t.Errorf("hover = (%f, %f), want near (0, 0)", m.hoverLat, m.hoverLon)
	}
	if m.hoverFacet < 0 {
		t.Error("no facet under the cursor")
	}
	if !strings.Contains(m.View(), "cursor") {
		t.Error("cursor position not shown")
	}

	next, _ = m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	if next.(Model).hovering {
		t.Error("header row should not hover the map")
	}
}
