package force

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Link pulls linked nodes toward a rest distance.
//
// Each link's strength is 1/min(deg(source), deg(target)) so links touching
// hubs are weaker. The correction is split between the endpoints by degree:
// the target moves by deg(s)/(deg(s)+deg(t)) of it and the source by the
// rest, so the better-connected endpoint moves less. Self-loops are ignored.
type Link struct {
	Distance   float64
	Iterations int

	g         *graph.Graph
	rnd       func() float64
	strengths []float64
	bias      []float64
}

// NewLink creates a link force from cfg.
func NewLink(cfg Config) *Link {
	return &Link{Distance: cfg.LinkDistance, Iterations: max(cfg.LinkIterations, 1)}
}

// Initialize precomputes per-link strength and bias from node degrees.
func (f *Link) Initialize(g *graph.Graph, rnd func() float64) {
	f.g, f.rnd = g, rnd
	f.strengths = make([]float64, len(g.Links))
	f.bias = make([]float64, len(g.Links))

	count := make([]float64, len(g.Nodes))
	for i := range g.Nodes {
		count[i] = float64(g.Degree(i))
	}
	for i := range g.Links {
		l := &g.Links[i]
		cs, ct := count[l.S], count[l.T]
		f.bias[i] = cs / (cs + ct)
		f.strengths[i] = 1 / math.Min(cs, ct)
	}
}

// Strength returns the precomputed strength of link i.
func (f *Link) Strength(i int) float64 { return f.strengths[i] }

// Apply moves linked nodes' velocities toward the rest distance, using the
// positions they would reach this tick.
func (f *Link) Apply(alpha float64) {
	if f.g == nil {
		return
	}
	nodes := f.g.Nodes
	for k := 0; k < f.Iterations; k++ {
		for i := range f.g.Links {
			l := &f.g.Links[i]
			if l.SelfLoop() {
				continue
			}
			s, t := &nodes[l.S], &nodes[l.T]

			x := t.X + t.VX - s.X - s.VX
			if x == 0 {
				x = jiggle(f.rnd)
			}
			y := t.Y + t.VY - s.Y - s.VY
			if y == 0 {
				y = jiggle(f.rnd)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - f.Distance) / d * alpha * f.strengths[i]
			x *= d
			y *= d

			b := f.bias[i]
			t.VX -= x * b
			t.VY -= y * b
			b = 1 - b
			s.VX += x * b
			s.VY += y * b
		}
	}
}
