package force

import "github.com/matzehuels/forcegraph/pkg/graph"

// Center translates all nodes so that their centroid moves toward (X, Y).
// Strength 1 moves it all the way each tick. Center shifts positions rather
// than velocities and ignores alpha.
type Center struct {
	X, Y     float64
	Strength float64

	g *graph.Graph
}

// NewCenter creates a centering force.
func NewCenter(x, y, strength float64) *Center {
	return &Center{X: x, Y: y, Strength: strength}
}

// Initialize binds the force to g.
func (f *Center) Initialize(g *graph.Graph, _ func() float64) { f.g = g }

// Apply shifts every node by the centroid offset.
func (f *Center) Apply(float64) {
	if f.g == nil || len(f.g.Nodes) == 0 {
		return
	}
	nodes := f.g.Nodes
	var sx, sy float64
	for i := range nodes {
		sx += nodes[i].X
		sy += nodes[i].Y
	}
	n := float64(len(nodes))
	sx = (sx/n - f.X) * f.Strength
	sy = (sy/n - f.Y) * f.Strength
	for i := range nodes {
		nodes[i].X -= sx
		nodes[i].Y -= sy
	}
}
