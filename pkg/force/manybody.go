package force

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/quadtree"
)

// ManyBody applies a charge between every pair of nodes, approximated with
// the Barnes–Hut quadtree. Negative strength repels.
//
// A quad whose width w satisfies w/d < Theta (d = distance to its centroid)
// is treated as a single body. Distances are clamped below at DistanceMin;
// pairs farther apart than DistanceMax (when non-zero) are ignored.
type ManyBody struct {
	Strength    float64
	Theta       float64
	DistanceMin float64
	DistanceMax float64

	g   *graph.Graph
	rnd func() float64
	xs  []float64
	ys  []float64
}

// NewManyBody creates a many-body force from cfg.
func NewManyBody(cfg Config) *ManyBody {
	return &ManyBody{
		Strength:    cfg.ChargeStrength,
		Theta:       cfg.Theta,
		DistanceMin: cfg.DistanceMin,
		DistanceMax: cfg.DistanceMax,
	}
}

// Initialize binds the force to g.
func (f *ManyBody) Initialize(g *graph.Graph, rnd func() float64) {
	f.g, f.rnd = g, rnd
	f.xs = make([]float64, len(g.Nodes))
	f.ys = make([]float64, len(g.Nodes))
}

// Apply adds the charge contribution to every node's velocity.
func (f *ManyBody) Apply(alpha float64) {
	if f.g == nil || len(f.g.Nodes) == 0 {
		return
	}
	nodes := f.g.Nodes
	for i := range nodes {
		f.xs[i], f.ys[i] = nodes[i].X, nodes[i].Y
	}
	tree := quadtree.Build(f.xs, f.ys)
	tree.VisitAfter(f.accumulate)

	theta2 := f.Theta * f.Theta
	dmin2 := f.DistanceMin * f.DistanceMin
	dmax2 := math.Inf(1)
	if f.DistanceMax > 0 {
		dmax2 = f.DistanceMax * f.DistanceMax
	}

	for i := range nodes {
		node := &nodes[i]
		tree.Visit(func(q *quadtree.Quad) bool {
			if q.Value == 0 {
				return true
			}
			x, y := q.CX-node.X, q.CY-node.Y
			w := q.Size()
			l := x*x + y*y

			// Far enough away: treat the quad as one body.
			if w*w/theta2 < l {
				if l < dmax2 {
					if x == 0 {
						x = jiggle(f.rnd)
						l += x * x
					}
					if y == 0 {
						y = jiggle(f.rnd)
						l += y * y
					}
					if l < dmin2 {
						l = math.Sqrt(dmin2 * l)
					}
					node.VX += x * q.Value * alpha / l
					node.VY += y * q.Value * alpha / l
				}
				return true
			}
			if !q.Leaf() || l >= dmax2 {
				return q.Leaf()
			}

			for _, j := range q.Points {
				if j == i {
					continue
				}
				px, py := f.xs[j]-node.X, f.ys[j]-node.Y
				pl := px*px + py*py
				if px == 0 {
					px = jiggle(f.rnd)
					pl += px * px
				}
				if py == 0 {
					py = jiggle(f.rnd)
					pl += py * py
				}
				if pl < dmin2 {
					pl = math.Sqrt(dmin2 * pl)
				}
				s := f.Strength * alpha / pl
				node.VX += px * s
				node.VY += py * s
			}
			return true
		})
	}
}

// accumulate sets each quad's total strength and strength-weighted centroid.
func (f *ManyBody) accumulate(q *quadtree.Quad) {
	if q.Leaf() {
		q.Value = f.Strength * float64(len(q.Points))
		if len(q.Points) > 0 {
			q.CX, q.CY = f.xs[q.Points[0]], f.ys[q.Points[0]]
		}
		return
	}
	var strength, weight, x, y float64
	for _, c := range q.Children {
		if c == nil || c.Value == 0 {
			continue
		}
		a := math.Abs(c.Value)
		strength += c.Value
		weight += a
		x += a * c.CX
		y += a * c.CY
	}
	q.Value = strength
	if weight > 0 {
		q.CX, q.CY = x/weight, y/weight
	}
}
