package interact

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestQueueAppliesInOrder(t *testing.T) {
	s := newFakeSim("a", "b")
	g := star(t)
	q := NewQueue(NewDrag(s, 0), NewHighlighter(g))

	q.Push(
		Event{Kind: DragStart, Node: "a"},
		Event{Kind: DragMove, Node: "a", X: 1, Y: 1},
		Event{Kind: DragMove, Node: "a", X: 2, Y: 3},
		Event{Kind: HoverEnter, Node: "hub"},
	)
	if q.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", q.Len())
	}
	if err := q.Drain(); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if q.Len() != 0 {
		t.Error("Drain left events behind")
	}
	if pin := s.pins[0]; pin != [2]float64{2, 3} {
		t.Errorf("pin = %v, want the last move (2, 3)", pin)
	}
	if q.highlight.Emphasis().Node != "hub" {
		t.Error("hover event not applied")
	}
}

func TestQueueRejectsStaleMove(t *testing.T) {
	s := newFakeSim("a")
	q := NewQueue(NewDrag(s, 0), nil)

	q.Push(
		Event{Kind: DragStart, Node: "a"},
		Event{Kind: DragEnd, Node: "a"},
		Event{Kind: DragMove, Node: "a", X: 9, Y: 9},
		Event{Kind: HoverEnter, Node: "a"},
	)
	err := q.Drain()
	if !errors.Is(err, ErrNotDragging) {
		t.Fatalf("Drain() error = %v, want ErrNotDragging", err)
	}
	if len(s.pins) != 0 {
		t.Errorf("stale move pinned node: %v", s.pins)
	}
}

func TestEventJSON(t *testing.T) {
	var ev Event
	if err := json.Unmarshal([]byte(`{"kind":"drag-move","node":"Ada","x":3,"y":4}`), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ev.Kind != DragMove || ev.Node != "Ada" || ev.X != 3 || ev.Y != 4 {
		t.Errorf("event = %+v", ev)
	}

	data, err := json.Marshal(Event{Kind: HoverExit, Node: "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"kind":"hover_exit","node":"Ada"}` {
		t.Errorf("Marshal() = %s", got)
	}

	if err := json.Unmarshal([]byte(`{"kind":"explode"}`), &ev); err == nil {
		t.Error("unknown kind accepted")
	}
}
