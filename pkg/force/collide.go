package force

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// Collide treats nodes as circles of radius Multiplier × node.R and pushes
// overlapping pairs apart.
//
// Each of Iterations relaxation passes rebuilds a quadtree over predicted
// positions (p + v) and, for every overlapping pair, moves both velocities
// apart in proportion to the overlap depth. The smaller circle moves more:
// each side's share is weighted by the other's squared radius. Collide does
// not scale with alpha.
type Collide struct {
	Multiplier float64
	Strength   float64
	Iterations int

	g     *graph.Graph
	rnd   func() float64
	radii []float64
	xs    []float64
	ys    []float64
}

// NewCollide creates a collision force from cfg.
func NewCollide(cfg Config) *Collide {
	return &Collide{
		Multiplier: cfg.CollideMultiplier,
		Strength:   cfg.CollideStrength,
		Iterations: max(cfg.CollideIterations, 1),
	}
}

// Initialize computes each node's collision radius.
func (f *Collide) Initialize(g *graph.Graph, rnd func() float64) {
	f.g, f.rnd = g, rnd
	f.radii = make([]float64, len(g.Nodes))
	f.xs = make([]float64, len(g.Nodes))
	f.ys = make([]float64, len(g.Nodes))
	for i := range g.Nodes {
		f.radii[i] = f.Multiplier * g.Nodes[i].R
	}
}

// Radius returns the collision radius of node i.
func (f *Collide) Radius(i int) float64 { return f.radii[i] }

// Apply runs the relaxation passes.
func (f *Collide) Apply(float64) {
	if f.g == nil || len(f.g.Nodes) == 0 {
		return
	}
	nodes := f.g.Nodes
	for k := 0; k < f.Iterations; k++ {
		for i := range nodes {
			f.xs[i] = nodes[i].X + nodes[i].VX
			f.ys[i] = nodes[i].Y + nodes[i].VY
		}
		tree := quadtree.Build(f.xs, f.ys)
		tree.VisitAfter(f.prepare)

		for i := range nodes {
			node := &nodes[i]
			ri := f.radii[i]
			ri2 := ri * ri
			xi, yi := node.X+node.VX, node.Y+node.VY

			tree.Visit(func(q *quadtree.Quad) bool {
				if !q.Leaf() {
					r := ri + q.R
					return q.X0 > xi+r || q.X1 < xi-r || q.Y0 > yi+r || q.Y1 < yi-r
				}
				for _, j := range q.Points {
					if j <= i {
						continue
					}
					other := &nodes[j]
					rj := f.radii[j]
					r := ri + rj
					x := xi - other.X - other.VX
					y := yi - other.Y - other.VY
					l := x*x + y*y
					if l >= r*r {
						continue
					}
					if x == 0 {
						x = jiggle(f.rnd)
						l += x * x
					}
					if y == 0 {
						y = jiggle(f.rnd)
						l += y * y
					}
					l = math.Sqrt(l)
					l = (r - l) / l * f.Strength
					x *= l
					y *= l
					rj2 := rj * rj
					share := rj2 / (ri2 + rj2)
					node.VX += x * share
					node.VY += y * share
					share = 1 - share
					other.VX -= x * share
					other.VY -= y * share
				}
				return true
			})
		}
	}
}

// prepare stores the largest radius found under each quad.
func (f *Collide) prepare(q *quadtree.Quad) {
	q.R = 0
	if q.Leaf() {
		for _, j := range q.Points {
			q.R = math.Max(q.R, f.radii[j])
		}
		return
	}
	for _, c := range q.Children {
		if c != nil {
			q.R = math.Max(q.R, c.R)
		}
	}
}
