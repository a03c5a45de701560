// Package sim runs the force-directed layout simulation.
//
// An [Engine] owns the kinematic state of a loaded graph. Each call to
// [Engine.Tick] cools alpha toward its target, applies the registered forces
// and integrates velocities into positions, then hands a [Frame] to every
// listener. The engine never stops by itself: it keeps ticking at negligible
// alpha until [Engine.Stop] or [Engine.Invalidate] is called. Batch callers
// use [Engine.Settle] instead.
//
// Engines are not safe for concurrent use. Drive one from a single goroutine
// (a frame clock, a UI loop) and serialize any external access.
package sim

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// ErrNotRunning is returned by Tick when the engine is stopped or invalidated.
var ErrNotRunning = errors.New("simulation not running")

// Unplaced nodes are seeded on a phyllotaxis spiral.
const initialRadius = 10

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// State is the engine's run state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Engine is a running layout simulation over one graph.
type Engine struct {
	g      *graph.Graph
	forces *force.Registry
	cfg    Config
	rnd    *rand.Rand

	alpha       float64
	alphaTarget float64
	state       State
	disposed    bool
	ticks       int

	lastX, lastY []float64

	before    []func()
	listeners []func(Frame)
}

// New initializes a simulation: it validates cfg, seeds unplaced nodes on a
// spiral around the canvas centre, binds the forces and starts in the Running
// state with alpha 1. A nil registry gets the default forces.
func New(g *graph.Graph, forces *force.Registry, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if forces == nil {
		forces = force.NewDefaultRegistry(force.DefaultConfig(), cfg.Width, cfg.Height)
	}

	e := &Engine{
		g:      g,
		forces: forces,
		cfg:    cfg,
		rnd:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		alpha:  1,
		state:  Running,
		lastX:  make([]float64, len(g.Nodes)),
		lastY:  make([]float64, len(g.Nodes)),
	}
	e.seed()
	forces.Initialize(g, e.rnd.Float64)
	return e, nil
}

func (e *Engine) seed() {
	cx, cy := e.cfg.Width/2, e.cfg.Height/2
	for i := range e.g.Nodes {
		n := &e.g.Nodes[i]
		switch {
		case n.Pinned():
			n.X, n.Y = *n.FX, *n.FY
		case !n.Placed || !finite(n.X, n.Y):
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X, n.Y = cx+r*math.Cos(a), cy+r*math.Sin(a)
		}
		if !finite(n.VX, n.VY) {
			n.VX, n.VY = 0, 0
		}
		n.Placed = true
		e.lastX[i], e.lastY[i] = n.X, n.Y
	}
}

// Tick advances the simulation by one step and returns the resulting frame.
// It returns ErrNotRunning unless the engine is Running.
func (e *Engine) Tick() (Frame, error) {
	if e.state != Running {
		return Frame{}, ErrNotRunning
	}
	for _, fn := range e.before {
		fn()
	}

	e.alpha += (e.alphaTarget - e.alpha) * e.cfg.AlphaDecay
	e.alpha = math.Max(0, math.Min(1, e.alpha))

	e.forces.Apply(e.alpha)
	e.integrate()
	e.ticks++

	observability.Simulation().OnTick(e.ticks, e.alpha)
	f := newFrame(e.g, e.ticks, e.alpha)
	for _, fn := range e.listeners {
		fn(f)
	}
	return f, nil
}

func (e *Engine) integrate() {
	keep := 1 - e.cfg.VelocityDecay
	for i := range e.g.Nodes {
		n := &e.g.Nodes[i]
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
		} else {
			n.VX *= keep
			n.VY *= keep
			n.X += n.VX
			n.Y += n.VY
		}

		if !finite(n.X, n.Y) || !finite(n.VX, n.VY) {
			n.VX, n.VY = 0, 0
			n.X, n.Y = e.lastX[i], e.lastY[i]
			observability.Simulation().OnInstability(e.ticks+1, n.ID)
			continue
		}
		e.lastX[i], e.lastY[i] = n.X, n.Y
	}
}

// Reheat raises alphaTarget so the layout keeps moving, and restarts a
// stopped engine. A non-positive target uses Config.ReheatTarget. Reheat has
// no effect after Invalidate.
func (e *Engine) Reheat(target float64) {
	if e.disposed {
		return
	}
	if target <= 0 || math.IsNaN(target) {
		target = e.cfg.ReheatTarget
	}
	e.alphaTarget = math.Min(target, 1)
	e.state = Running
}

// Restart sets alpha to x and resumes a stopped engine. alphaTarget is left
// alone, so a layout restarted outside a drag cools down again. A
// non-positive x uses Config.ReheatTarget. Restart has no effect after
// Invalidate.
func (e *Engine) Restart(x float64) {
	if e.disposed {
		return
	}
	if x <= 0 || math.IsNaN(x) {
		x = e.cfg.ReheatTarget
	}
	e.alpha = math.Min(x, 1)
	e.state = Running
}

// Cool resets alphaTarget to zero so alpha decays to rest.
func (e *Engine) Cool() { e.alphaTarget = 0 }

// Stop halts ticking. It is idempotent; Reheat or Restart resumes it.
func (e *Engine) Stop() { e.state = Stopped }

// Invalidate stops the engine for good and drops its listeners. No later
// call produces another tick.
func (e *Engine) Invalidate() {
	e.Stop()
	e.disposed = true
	e.listeners = nil
	e.before = nil
}

// OnFrame registers a listener called with every frame.
func (e *Engine) OnFrame(fn func(Frame)) {
	if !e.disposed {
		e.listeners = append(e.listeners, fn)
	}
}

// BeforeTick registers fn to run at the start of every tick, before alpha
// and forces are updated. Event queues drain here.
func (e *Engine) BeforeTick(fn func()) {
	if !e.disposed {
		e.before = append(e.before, fn)
	}
}

// State returns the run state.
func (e *Engine) State() State { return e.state }

// Invalidated reports whether Invalidate has been called.
func (e *Engine) Invalidated() bool { return e.disposed }

// Alpha returns the current alpha.
func (e *Engine) Alpha() float64 { return e.alpha }

// AlphaTarget returns the value alpha decays toward.
func (e *Engine) AlphaTarget() float64 { return e.alphaTarget }

// Ticks returns the number of ticks run so far.
func (e *Engine) Ticks() int { return e.ticks }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Graph returns the simulated graph.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Forces returns the force registry.
func (e *Engine) Forces() *force.Registry { return e.forces }

// Index returns the arena index of the node with the given id.
func (e *Engine) Index(id string) (int, bool) { return e.g.Index(id) }

// Position returns node i's current position.
func (e *Engine) Position(i int) (x, y float64) {
	n := &e.g.Nodes[i]
	return n.X, n.Y
}

// Pin fixes node i at (x, y) from the next tick on.
func (e *Engine) Pin(i int, x, y float64) { e.g.Pin(i, x, y) }

// Unpin releases node i.
func (e *Engine) Unpin(i int) { e.g.Unpin(i) }

// Frame returns a snapshot of the current positions without ticking.
func (e *Engine) Frame() Frame { return newFrame(e.g, e.ticks, e.alpha) }

// Layout returns the current positions as a serializable layout.
func (e *Engine) Layout() graph.Layout {
	return graph.NewLayout(e.g, e.cfg.Width, e.cfg.Height, e.ticks, e.alpha)
}

func finite(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0) && !math.IsNaN(b) && !math.IsInf(b, 0)
}
