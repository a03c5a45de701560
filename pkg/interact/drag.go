// Package interact turns pointer gestures into simulation constraints and
// hover emphasis.
//
// [Drag] is a per-node Idle/Dragging state machine: starting a drag pins the
// node where it is and reheats the simulation, moving updates the pin, and
// ending releases it and lets the layout cool. [Highlighter] tracks which
// node and links are emphasized while the pointer hovers a node. Both are
// driven by [Event] values, normally through a [Queue] drained before every
// tick so events apply in arrival order.
package interact

import (
	"errors"
	"math"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

// ErrNotDragging is returned when a move or end arrives for a node that has
// no active gesture, such as a stale move after the gesture ended.
var ErrNotDragging = errors.New("node is not being dragged")

// Simulation is the part of the engine a drag needs.
type Simulation interface {
	Index(id string) (int, bool)
	Position(i int) (x, y float64)
	Pin(i int, x, y float64)
	Unpin(i int)
	Reheat(target float64)
	Cool()
}

// DragState is the gesture state of one node.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Drag tracks drag gestures on any number of nodes. Gestures on different
// nodes are independent; the simulation is reheated when the first one
// starts and cooled when the last one ends.
type Drag struct {
	sim    Simulation
	target float64
	active map[int]bool
}

// NewDrag creates a drag controller. reheatTarget is passed to
// Simulation.Reheat; zero selects the simulation's default.
func NewDrag(sim Simulation, reheatTarget float64) *Drag {
	return &Drag{sim: sim, target: reheatTarget, active: make(map[int]bool)}
}

// Start begins a gesture on id, pinning the node at its current position.
// Starting a node that is already dragging re-pins it in place.
func (d *Drag) Start(id string) error {
	i, err := d.lookup(id)
	if err != nil {
		return err
	}
	first := len(d.active) == 0
	d.active[i] = true
	x, y := d.sim.Position(i)
	d.sim.Pin(i, x, y)
	if first {
		d.sim.Reheat(d.target)
	}
	return nil
}

// Move sets the pin of a dragging node to the pointer position. It returns
// ErrNotDragging if id has no active gesture.
func (d *Drag) Move(id string, x, y float64) error {
	i, err := d.lookup(id)
	if err != nil {
		return err
	}
	if !d.active[i] {
		return ErrNotDragging
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return errs.New(errs.ErrCodeInvalidEvent, "non-finite pointer position (%v, %v)", x, y)
	}
	d.sim.Pin(i, x, y)
	return nil
}

// End releases a dragging node. The simulation cools once no gesture is
// left.
func (d *Drag) End(id string) error {
	i, err := d.lookup(id)
	if err != nil {
		return err
	}
	if !d.active[i] {
		return ErrNotDragging
	}
	delete(d.active, i)
	d.sim.Unpin(i)
	if len(d.active) == 0 {
		d.sim.Cool()
	}
	return nil
}

// Cancel ends every active gesture.
func (d *Drag) Cancel() {
	if len(d.active) == 0 {
		return
	}
	for i := range d.active {
		d.sim.Unpin(i)
	}
	clear(d.active)
	d.sim.Cool()
}

// State returns the gesture state of id.
func (d *Drag) State(id string) DragState {
	if i, ok := d.sim.Index(id); ok && d.active[i] {
		return Dragging
	}
	return Idle
}

// Active returns the number of nodes being dragged.
func (d *Drag) Active() int { return len(d.active) }

func (d *Drag) lookup(id string) (int, error) {
	i, ok := d.sim.Index(id)
	if !ok {
		return 0, errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return i, nil
}
