package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/session"
)

// frameInterval paces the live view at roughly 30 frames per second.
const frameInterval = 33 * time.Millisecond

// viewCommand creates the view command, a live terminal rendering of the
// simulation that accepts mouse drags and hovers.
func (c *CLI) viewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "Watch a graph settle in the terminal",
		Long: `Run the simulation live in the terminal.

Drag nodes with the mouse to pin and move them; release to let them go.
Hovering a node highlights its links.

Keys: space pause/resume, r reheat, l toggle labels, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.Options()
			flags.apply(cmd, &opts)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}

			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			s, err := session.New(g, opts.SimConfig(), opts.ForceConfig())
			if err != nil {
				return err
			}
			defer s.Close()

			c.Logger.Debug("starting view", "nodes", g.NodeCount(), "links", g.LinkCount(), "session", s.ID)
			return runView(cmd.Context(), s, opts.SimConfig().AlphaMin)
		},
	}
	flags.register(cmd)
	return cmd
}

func runView(ctx context.Context, s *session.Session, alphaMin float64) error {
	m, err := newViewModel(s, alphaMin)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if vm, ok := final.(viewModel); ok && vm.err != nil {
		return vm.err
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

type frameMsg time.Time

// viewModel is the bubbletea model for the live view. The session owns all
// simulation state; the model only tracks the pointer.
type viewModel struct {
	session  *session.Session
	scene    render.Scene
	canvas   canvas
	alphaMin float64

	dragging string
	hovered  string
	paused   bool
	labels   bool
	notice   string
	err      error
}

func newViewModel(s *session.Session, alphaMin float64) (viewModel, error) {
	scene, err := s.Scene()
	if err != nil {
		return viewModel{}, err
	}
	return viewModel{
		session:  s,
		scene:    scene,
		canvas:   newCanvas(80, 22, scene.Width, scene.Height),
		alphaMin: alphaMin,
	}, nil
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m viewModel) Init() tea.Cmd {
	return frame()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.step()
		return m, frame()

	case tea.WindowSizeMsg:
		m.canvas = newCanvas(msg.Width, msg.Height-2, m.scene.Width, m.scene.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.togglePause()
		case "r":
			m.paused = false
			m.fail(m.session.Reheat())
		case "l":
			m.labels = !m.labels
		}

	case tea.MouseMsg:
		m.pointer(tea.MouseEvent(msg))
	}
	return m, nil
}

// step advances one tick per frame until the user pauses. A settled layout
// keeps ticking at negligible alpha.
func (m *viewModel) step() {
	n := 1
	if m.paused {
		n = 0
	}
	scene, err := m.session.Tick(n)
	if m.fail(err) {
		return
	}
	m.scene = scene
}

func (m *viewModel) togglePause() {
	m.paused = !m.paused
	if m.paused {
		m.dragging = ""
		m.fail(m.session.Stop())
		return
	}
	m.fail(m.session.Reheat())
}

// pointer turns mouse input into drag and hover events.
func (m *viewModel) pointer(ev tea.MouseEvent) {
	row := ev.Y - 1 // header line
	x, y := m.canvas.toWorld(ev.X, row)

	var events []interact.Event
	switch {
	case ev.Action == tea.MouseActionPress && ev.Button == tea.MouseButtonLeft:
		if id := m.canvas.hit(m.scene, ev.X, row); id != "" && !m.paused {
			m.dragging = id
			events = append(events, interact.Event{Kind: interact.DragStart, Node: id})
		}
	case ev.Action == tea.MouseActionRelease:
		if m.dragging != "" {
			events = append(events, interact.Event{Kind: interact.DragEnd, Node: m.dragging})
			m.dragging = ""
		}
	case ev.Action == tea.MouseActionMotion:
		if m.dragging != "" {
			events = append(events, interact.Event{Kind: interact.DragMove, Node: m.dragging, X: x, Y: y})
			break
		}
		if id := m.canvas.hit(m.scene, ev.X, row); id != m.hovered {
			if m.hovered != "" {
				events = append(events, interact.Event{Kind: interact.HoverExit, Node: m.hovered})
			}
			if id != "" {
				events = append(events, interact.Event{Kind: interact.HoverEnter, Node: id})
			}
			m.hovered = id
		}
	}
	if len(events) == 0 {
		return
	}
	m.notice = ""
	if err := m.session.Dispatch(events...); err != nil {
		m.notice = err.Error()
	}
	if scene, err := m.session.Scene(); !m.fail(err) {
		m.scene = scene
	}
}

// fail records err and reports whether it was non-nil.
func (m *viewModel) fail(err error) bool {
	if err != nil {
		m.err = err
		return true
	}
	return false
}

var (
	viewHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

func (m viewModel) View() string {
	var b strings.Builder

	state := "running"
	switch {
	case m.paused:
		state = "paused"
	case m.scene.Alpha < m.alphaMin && m.dragging == "":
		state = "settled"
	}
	b.WriteString(viewHeaderStyle.Render(fmt.Sprintf("%s  %d nodes  %d links", appName, len(m.scene.Nodes), len(m.scene.Links))))
	b.WriteString("\n")
	b.WriteString(m.canvas.draw(m.scene, m.labels))
	b.WriteString("\n")

	status := fmt.Sprintf("tick %d  alpha %.3f  %s", m.scene.Tick, m.scene.Alpha, state)
	if m.hovered != "" {
		status += "  hover " + m.hovered
	}
	if m.dragging != "" {
		status += "  drag " + m.dragging
	}
	if m.notice != "" {
		status += "  " + m.notice
	}
	if m.err != nil {
		b.WriteString(viewErrorStyle.Render(m.err.Error()))
	} else {
		b.WriteString(viewStatusStyle.Render(status + "  (space pause · r reheat · l labels · q quit)"))
	}
	return b.String()
}

// =============================================================================
// Canvas
// =============================================================================

// canvas maps simulation coordinates onto a grid of terminal cells.
type canvas struct {
	cols, rows int
	w, h       float64
}

func newCanvas(cols, rows int, w, h float64) canvas {
	return canvas{cols: max(cols, 1), rows: max(rows, 1), w: w, h: h}
}

func (c canvas) toCell(x, y float64) (col, row int) {
	return int(math.Floor(x / c.w * float64(c.cols))), int(math.Floor(y / c.h * float64(c.rows)))
}

// toWorld returns the simulation coordinates of the centre of a cell.
func (c canvas) toWorld(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * c.w / float64(c.cols), (float64(row) + 0.5) * c.h / float64(c.rows)
}

func (c canvas) inside(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

// hit returns the node nearest to a cell, if one is drawn within a cell of it.
func (c canvas) hit(s render.Scene, col, row int) string {
	best, bestD := "", math.Inf(1)
	for _, n := range s.Nodes {
		nc, nr := c.toCell(n.X, n.Y)
		dc, dr := float64(nc-col), float64(nr-row)
		if d := dc*dc + dr*dr; d <= 2 && d < bestD {
			best, bestD = n.ID, d
		}
	}
	return best
}

type cell struct {
	r     rune
	color string
	bold  bool
}

// draw renders the scene: links first, then nodes, then labels.
func (c canvas) draw(s render.Scene, labels bool) string {
	grid := make([][]cell, c.rows)
	for i := range grid {
		grid[i] = make([]cell, c.cols)
	}
	set := func(col, row int, v cell) {
		if c.inside(col, row) {
			grid[row][col] = v
		}
	}

	for _, l := range s.Links {
		if l.Emphasized {
			continue
		}
		c.line(l, func(col, row int) { set(col, row, cell{r: '·', color: "#999999"}) })
	}
	// Emphasized links are drawn last so they stay visible where links cross.
	for _, l := range s.Links {
		if l.Emphasized {
			c.line(l, func(col, row int) { set(col, row, cell{r: '•', color: l.Stroke, bold: true}) })
		}
	}
	for _, n := range s.Nodes {
		col, row := c.toCell(n.X, n.Y)
		r := '●'
		if n.Pinned {
			r = '◆'
		}
		set(col, row, cell{r: r, color: n.Fill, bold: n.Emphasized})
		if labels {
			for i, ch := range []rune(n.ID) {
				set(col+2+i, row, cell{r: ch, color: "#dddddd"})
			}
		}
	}

	styles := map[cell]lipgloss.Style{}
	var b strings.Builder
	for row, line := range grid {
		if row > 0 {
			b.WriteByte('\n')
		}
		// Cells sharing a style are rendered as one run.
		var (
			run    []rune
			runKey cell
		)
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runKey.color == "" {
				b.WriteString(string(run))
			} else {
				st, ok := styles[runKey]
				if !ok {
					st = lipgloss.NewStyle().Foreground(lipgloss.Color(runKey.color)).Bold(runKey.bold)
					styles[runKey] = st
				}
				b.WriteString(st.Render(string(run)))
			}
			run = run[:0]
		}
		for _, v := range line {
			r, key := v.r, cell{color: v.color, bold: v.bold}
			if r == 0 {
				r, key = ' ', cell{}
			}
			if key != runKey {
				flush()
				runKey = key
			}
			run = append(run, r)
		}
		flush()
	}
	return b.String()
}

// line walks the cells of a link segment with Bresenham's algorithm.
func (c canvas) line(l render.SceneLink, plot func(col, row int)) {
	x0, y0 := c.toCell(l.X1, l.Y1)
	x1, y1 := c.toCell(l.X2, l.Y2)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for steps := 0; steps <= 4*(c.cols+c.rows); steps++ {
		if c.inside(x0, y0) {
			plot(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
