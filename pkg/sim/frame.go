package sim

import "github.com/matzehuels/forcegraph/pkg/graph"

// Frame is the position update emitted after every tick.
type Frame struct {
	Tick  int         `json:"tick"`
	Alpha float64     `json:"alpha"`
	Nodes []NodeFrame `json:"nodes"`
	Links []LinkFrame `json:"links"`
}

// NodeFrame is a node's position in a frame.
type NodeFrame struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned,omitempty"`
}

// LinkFrame is a link's endpoint coordinates in a frame.
type LinkFrame struct {
	Index int     `json:"index"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
}

func newFrame(g *graph.Graph, tick int, alpha float64) Frame {
	f := Frame{
		Tick:  tick,
		Alpha: alpha,
		Nodes: make([]NodeFrame, len(g.Nodes)),
		Links: make([]LinkFrame, len(g.Links)),
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		f.Nodes[i] = NodeFrame{ID: n.ID, X: n.X, Y: n.Y, Pinned: n.Pinned()}
	}
	for i := range g.Links {
		l := &g.Links[i]
		s, t := &g.Nodes[l.S], &g.Nodes[l.T]
		f.Links[i] = LinkFrame{Index: i, X1: s.X, Y1: s.Y, X2: t.X, Y2: t.Y}
	}
	return f
}
