package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/session"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func TestCanvasMapping(t *testing.T) {
	c := newCanvas(120, 40, 1200, 800)
	tests := []struct {
		x, y     float64
		col, row int
	}{
		{0, 0, 0, 0},
		{600, 400, 60, 20},
		{1199, 799, 119, 39},
		{-5, 900, -1, 45},
	}
	for _, tt := range tests {
		col, row := c.toCell(tt.x, tt.y)
		if col != tt.col || row != tt.row {
			t.Errorf("toCell(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, col, row, tt.col, tt.row)
		}
	}

	if x, y := c.toWorld(60, 20); x != 605 || y != 410 {
		t.Errorf("toWorld(60, 20) = (%v, %v), want (605, 410)", x, y)
	}
	if c.inside(-1, 0) || c.inside(120, 0) || !c.inside(119, 39) {
		t.Error("inside() bounds wrong")
	}
}

func TestCanvasHit(t *testing.T) {
	c := newCanvas(120, 40, 1200, 800)
	scene := render.Scene{Nodes: []render.SceneNode{
		{ID: "near", X: 600, Y: 400},
		{ID: "far", X: 100, Y: 100},
	}}
	tests := []struct {
		col, row int
		want     string
	}{
		{60, 20, "near"},
		{61, 21, "near"},
		{62, 20, ""},
		{10, 5, "far"},
		{0, 39, ""},
	}
	for _, tt := range tests {
		if got := c.hit(scene, tt.col, tt.row); got != tt.want {
			t.Errorf("hit(%d, %d) = %q, want %q", tt.col, tt.row, got, tt.want)
		}
	}
}

func TestCanvasLine(t *testing.T) {
	c := newCanvas(10, 10, 100, 100)
	tests := []struct {
		name  string
		link  render.SceneLink
		cells int
	}{
		{"diagonal", render.SceneLink{X1: 5, Y1: 5, X2: 95, Y2: 95}, 10},
		{"horizontal", render.SceneLink{X1: 5, Y1: 50, X2: 95, Y2: 50}, 10},
		{"point", render.SceneLink{X1: 5, Y1: 5, X2: 6, Y2: 6}, 1},
		{"clipped", render.SceneLink{X1: -50, Y1: 5, X2: 45, Y2: 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n int
			c.line(tt.link, func(col, row int) {
				if !c.inside(col, row) {
					t.Errorf("plotted outside the canvas at (%d, %d)", col, row)
				}
				n++
			})
			if n != tt.cells {
				t.Errorf("plotted %d cells, want %d", n, tt.cells)
			}
		})
	}
}

func TestCanvasDraw(t *testing.T) {
	c := newCanvas(20, 5, 200, 50)
	scene := render.Scene{
		Nodes: []render.SceneNode{
			{ID: "n1", X: 55, Y: 25, Fill: "#1f77b4"},
			{ID: "n2", X: 155, Y: 25, Fill: "#ff7f0e", Pinned: true},
		},
		Links: []render.SceneLink{{Source: 0, Target: 1, X1: 55, Y1: 25, X2: 155, Y2: 25, Stroke: "#999"}},
	}

	out := c.draw(scene, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("drew %d rows, want 5", len(lines))
	}
	for _, want := range []string{"●", "◆", "·"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("row 2 %q missing %q", lines[2], want)
		}
	}
	if strings.Contains(out, "n1") {
		t.Error("labels drawn while disabled")
	}
	if out := c.draw(scene, true); !strings.Contains(out, "n1") {
		t.Error("labels missing")
	}
}

func newTestView(t *testing.T) viewModel {
	t.Helper()
	g, err := graph.Load(
		[]graph.Node{{ID: "a"}, {ID: "b"}},
		[]graph.Link{{Source: "a", Target: "b"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(g, sim.DefaultConfig(), force.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	m, err := newViewModel(s, sim.DefaultAlphaMin)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func update(t *testing.T, m viewModel, msg tea.Msg) (viewModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	vm, ok := next.(viewModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return vm, cmd
}

func TestViewTicksAndPauses(t *testing.T) {
	m := newTestView(t)

	m, cmd := update(t, m, frameMsg(time.Now()))
	if cmd == nil {
		t.Error("frame did not schedule the next frame")
	}
	if m.scene.Tick != 1 {
		t.Fatalf("tick = %d after one frame, want 1", m.scene.Tick)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.paused || m.session.Info().State != "stopped" {
		t.Fatalf("space did not pause: paused=%v state=%s", m.paused, m.session.Info().State)
	}
	m, _ = update(t, m, frameMsg(time.Now()))
	if m.scene.Tick != 1 {
		t.Errorf("paused view ticked to %d", m.scene.Tick)
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("status line does not show paused")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.paused || m.session.Info().State != "running" {
		t.Errorf("reheat did not resume: paused=%v state=%s", m.paused, m.session.Info().State)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if !m.labels {
		t.Error("l did not enable labels")
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewKeepsTickingWhenSettled(t *testing.T) {
	m := newTestView(t)
	if _, err := m.session.Tick(1000); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, frameMsg(time.Now()))
	if m.scene.Alpha >= sim.DefaultAlphaMin {
		t.Fatalf("alpha = %v, want a settled layout", m.scene.Alpha)
	}
	if !strings.Contains(m.View(), "settled") {
		t.Error("status line does not show settled")
	}

	tick := m.scene.Tick
	m, _ = update(t, m, frameMsg(time.Now()))
	if m.scene.Tick != tick+1 {
		t.Errorf("settled view at tick %d, want %d", m.scene.Tick, tick+1)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m, _ = update(t, m, frameMsg(time.Now()))
	if m.scene.Alpha < 0.2 {
		t.Errorf("alpha = %v after r, want the layout warmed up", m.scene.Alpha)
	}
	for i := 0; i < 400; i++ {
		m, _ = update(t, m, frameMsg(time.Now()))
	}
	if m.scene.Alpha >= sim.DefaultAlphaMin {
		t.Errorf("alpha = %v 400 frames after r, want it settled again", m.scene.Alpha)
	}
}

func TestViewResize(t *testing.T) {
	m := newTestView(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.canvas.cols != 100 || m.canvas.rows != 28 {
		t.Errorf("canvas = %d × %d, want 100 × 28", m.canvas.cols, m.canvas.rows)
	}
}

func TestViewDragAndHover(t *testing.T) {
	m := newTestView(t)
	n := m.scene.Nodes[0]
	col, row := m.canvas.toCell(n.X, n.Y)
	mouse := func(action tea.MouseAction, col, row int) tea.MouseMsg {
		return tea.MouseMsg{X: col, Y: row + 1, Action: action, Button: tea.MouseButtonLeft}
	}

	// Hover first, without a button held.
	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row + 1, Action: tea.MouseActionMotion})
	if m.hovered == "" || m.session.Info().Hovered != m.hovered {
		t.Fatalf("hover not dispatched: view %q, session %q", m.hovered, m.session.Info().Hovered)
	}

	m, _ = update(t, m, mouse(tea.MouseActionPress, col, row))
	if m.dragging == "" {
		t.Fatal("press on a node did not start a drag")
	}
	if got := m.session.Info().Dragging; got != 1 {
		t.Errorf("session dragging = %d, want 1", got)
	}

	m, _ = update(t, m, mouse(tea.MouseActionMotion, col+3, row))
	m, _ = update(t, m, frameMsg(time.Now()))
	wantX, wantY := m.canvas.toWorld(col+3, row)
	for _, sn := range m.scene.Nodes {
		if sn.ID == m.dragging && (sn.X != wantX || sn.Y != wantY || !sn.Pinned) {
			t.Errorf("dragged node at (%v, %v) pinned=%v, want (%v, %v)", sn.X, sn.Y, sn.Pinned, wantX, wantY)
		}
	}

	m, _ = update(t, m, mouse(tea.MouseActionRelease, col+3, row))
	if m.dragging != "" || m.session.Info().Dragging != 0 {
		t.Errorf("release left a drag active: view %q", m.dragging)
	}
	if m.notice != "" || m.err != nil {
		t.Errorf("unexpected notice %q / err %v", m.notice, m.err)
	}
}
