package graph

import (
	"math"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

// Graph is the loaded node-link model. Nodes and Links are arenas: links
// reference nodes by index, and controllers address nodes by id through
// [Graph.Index].
type Graph struct {
	Nodes []Node
	Links []Link

	index    map[string]int
	incident [][]int
}

// Load builds a Graph from nodes and links.
//
// Loading fails with INVALID_INPUT for an empty or malformed node id, DUPLICATE_NODE_ID
// when two nodes share an id and INVALID_REFERENCE when a link names an
// unknown node. Self-loops are accepted. Nodes without a radius get
// [DefaultRadius]. The slices are copied.
func Load(nodes []Node, links []Link) (*Graph, error) {
	g := &Graph{
		Nodes:    make([]Node, len(nodes)),
		Links:    make([]Link, len(links)),
		index:    make(map[string]int, len(nodes)),
		incident: make([][]int, len(nodes)),
	}

	for i, n := range nodes {
		if err := errs.ValidateNodeID(n.ID); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "node %d", i)
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, errs.New(errs.ErrCodeDuplicateNodeID, "duplicate node id %q", n.ID)
		}
		if n.R <= 0 || math.IsNaN(n.R) || math.IsInf(n.R, 0) {
			n.R = DefaultRadius
		}
		g.index[n.ID] = i
		g.Nodes[i] = n
	}

	for i, l := range links {
		s, ok := g.index[l.Source]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidReference, "link %d: unknown source %q", i, l.Source)
		}
		t, ok := g.index[l.Target]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidReference, "link %d: unknown target %q", i, l.Target)
		}
		l.S, l.T = s, t
		g.Links[i] = l
		g.incident[s] = append(g.incident[s], i)
		if t != s {
			g.incident[t] = append(g.incident[t], i)
		}
	}

	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.Links) }

// Index returns the arena index of the node with the given id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return &g.Nodes[i]
}

// Incident returns the indices of links touching node i. The slice is shared;
// callers must not modify it.
func (g *Graph) Incident(i int) []int {
	if i < 0 || i >= len(g.incident) {
		return nil
	}
	return g.incident[i]
}

// Degree returns the number of links touching node i. A self-loop counts
// twice.
func (g *Graph) Degree(i int) int {
	d := 0
	for _, li := range g.Incident(i) {
		d++
		if g.Links[li].SelfLoop() {
			d++
		}
	}
	return d
}

// Neighbors returns the distinct nodes linked to node i, in link order.
func (g *Graph) Neighbors(i int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, li := range g.Incident(i) {
		l := &g.Links[li]
		j := l.T
		if j == i {
			j = l.S
		}
		if j == i || seen[j] {
			continue
		}
		seen[j] = true
		out = append(out, j)
	}
	return out
}

// Pin fixes node i at (x, y).
func (g *Graph) Pin(i int, x, y float64) {
	n := &g.Nodes[i]
	fx, fy := x, y
	n.FX, n.FY = &fx, &fy
}

// Unpin releases node i so the forces move it again.
func (g *Graph) Unpin(i int) {
	n := &g.Nodes[i]
	n.FX, n.FY = nil, nil
}

// IsPinned returns true if node i is pinned.
func (g *Graph) IsPinned(i int) bool { return g.Nodes[i].Pinned() }

// Groups returns the distinct node groups in first-seen order.
func (g *Graph) Groups() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range g.Nodes {
		grp := g.Nodes[i].Group
		if seen[grp] {
			continue
		}
		seen[grp] = true
		out = append(out, grp)
	}
	return out
}

// Document returns the graph as an input document, carrying current
// positions.
func (g *Graph) Document() Document {
	doc := Document{
		Nodes: make([]Node, len(g.Nodes)),
		Links: make([]Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		n.VX, n.VY = 0, 0
		n.FX, n.FY = nil, nil
		doc.Nodes[i] = n
	}
	copy(doc.Links, g.Links)
	return doc
}
