package interact_test

import (
	"testing"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func TestDragWithEngine(t *testing.T) {
	g, err := graph.Load(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]graph.Link{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}, {Source: "A", Target: "C"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	e, err := sim.New(g, nil, sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	e.Settle(t.Context(), 400)

	q := interact.NewQueue(interact.NewDrag(e, 0), interact.NewHighlighter(g))
	e.BeforeTick(func() { q.Drain() })

	const px, py = 100.0, 100.0
	q.Push(
		interact.Event{Kind: interact.DragStart, Node: "A"},
		interact.Event{Kind: interact.DragMove, Node: "A", X: px, Y: py},
	)
	if _, err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	if x, y := e.Position(0); x != px || y != py {
		t.Fatalf("dragged node at (%v, %v), want (%v, %v)", x, y, px, py)
	}
	if e.AlphaTarget() != sim.DefaultReheatTarget {
		t.Errorf("AlphaTarget() = %v while dragging", e.AlphaTarget())
	}

	q.Push(interact.Event{Kind: interact.DragEnd, Node: "A"})
	if _, err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	if g.IsPinned(0) {
		t.Error("node still pinned after drag end")
	}
	if x, y := e.Position(0); x == px && y == py {
		t.Error("released node still forced to the drag position")
	}
	if e.AlphaTarget() != 0 {
		t.Errorf("AlphaTarget() = %v after drag end", e.AlphaTarget())
	}
}
