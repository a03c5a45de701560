package interact

import (
	"errors"
	"math"
	"testing"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

type fakeSim struct {
	ids      map[string]int
	x, y     []float64
	pins     map[int][2]float64
	reheats  int
	cools    int
	lastHeat float64
}

func newFakeSim(ids ...string) *fakeSim {
	s := &fakeSim{ids: make(map[string]int), pins: make(map[int][2]float64)}
	for i, id := range ids {
		s.ids[id] = i
		s.x = append(s.x, float64(i*10))
		s.y = append(s.y, float64(i*20))
	}
	return s
}

func (s *fakeSim) Index(id string) (int, bool) {
	i, ok := s.ids[id]
	return i, ok
}

func (s *fakeSim) Position(i int) (float64, float64) { return s.x[i], s.y[i] }
func (s *fakeSim) Pin(i int, x, y float64)         { s.pins[i] = [2]float64{x, y} }
func (s *fakeSim) Unpin(i int)                     { delete(s.pins, i) }
func (s *fakeSim) Reheat(t float64)                { s.reheats++; s.lastHeat = t }
func (s *fakeSim) Cool()                           { s.cools++ }

func TestDragLifecycle(t *testing.T) {
	s := newFakeSim("a", "b")
	d := NewDrag(s, 0.3)

	if err := d.Start("b"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if d.State("b") != Dragging {
		t.Fatalf("State(b) = %v, want dragging", d.State("b"))
	}
	if pin := s.pins[1]; pin != [2]float64{10, 20} {
		t.Errorf("start pin = %v, want current position (10, 20)", pin)
	}
	if s.reheats != 1 || s.lastHeat != 0.3 {
		t.Errorf("reheats = %d (target %v), want 1 (0.3)", s.reheats, s.lastHeat)
	}

	if err := d.Move("b", 55, 66); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if pin := s.pins[1]; pin != [2]float64{55, 66} {
		t.Errorf("move pin = %v, want (55, 66)", pin)
	}

	if err := d.End("b"); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, pinned := s.pins[1]; pinned {
		t.Error("node still pinned after End")
	}
	if s.cools != 1 || d.State("b") != Idle || d.Active() != 0 {
		t.Errorf("cools = %d, state = %v, active = %d", s.cools, d.State("b"), d.Active())
	}
}

func TestDragStaleEventsRejected(t *testing.T) {
	s := newFakeSim("a")
	d := NewDrag(s, 0)

	if err := d.Move("a", 1, 1); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Move() before Start error = %v, want ErrNotDragging", err)
	}
	d.Start("a")
	d.End("a")
	if err := d.Move("a", 1, 1); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Move() after End error = %v, want ErrNotDragging", err)
	}
	if err := d.End("a"); !errors.Is(err, ErrNotDragging) {
		t.Errorf("second End() error = %v, want ErrNotDragging", err)
	}
	if len(s.pins) != 0 {
		t.Errorf("stale events pinned nodes: %v", s.pins)
	}
}

func TestDragConcurrentGestures(t *testing.T) {
	s := newFakeSim("a", "b")
	d := NewDrag(s, 0)

	d.Start("a")
	d.Start("b")
	if s.reheats != 1 {
		t.Errorf("reheats = %d, want 1 for overlapping gestures", s.reheats)
	}
	d.End("a")
	if s.cools != 0 {
		t.Error("cooled while a gesture was still active")
	}
	if d.State("b") != Dragging {
		t.Error("ending a changed b's gesture")
	}
	d.End("b")
	if s.cools != 1 {
		t.Errorf("cools = %d, want 1", s.cools)
	}
}

func TestDragErrors(t *testing.T) {
	s := newFakeSim("a")
	d := NewDrag(s, 0)

	if err := d.Start("missing"); !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("Start(missing) error = %v, want NODE_NOT_FOUND", err)
	}
	d.Start("a")
	if err := d.Move("a", math.NaN(), 0); !errs.Is(err, errs.ErrCodeInvalidEvent) {
		t.Errorf("Move(NaN) error = %v, want INVALID_EVENT", err)
	}
	if pin := s.pins[0]; pin != [2]float64{0, 0} {
		t.Errorf("NaN move changed pin to %v", pin)
	}
}

func TestDragCancel(t *testing.T) {
	s := newFakeSim("a", "b")
	d := NewDrag(s, 0)
	d.Cancel()
	if s.cools != 0 {
		t.Error("Cancel with no gestures cooled the simulation")
	}
	d.Start("a")
	d.Start("b")
	d.Cancel()
	if len(s.pins) != 0 || d.Active() != 0 || s.cools != 1 {
		t.Errorf("after Cancel: pins %v, active %d, cools %d", s.pins, d.Active(), s.cools)
	}
}
