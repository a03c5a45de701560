// Package quadtree implements the region quadtree used by the Barnes–Hut
// many-body approximation and by collision detection.
//
// A [Tree] indexes points by their position in a square that covers all of
// them. Each [Quad] is either internal (up to four children) or a leaf holding
// one or more point indices; several indices share a leaf only when their
// points coincide (or the depth limit is reached). Quads carry scratch
// aggregate fields (Value, CX, CY, R) that forces fill in with
// [Tree.VisitAfter] and read back with [Tree.Visit].
package quadtree

import "math"

// MaxDepth bounds subdivision so that nearly coincident points cannot recurse
// without limit.
const MaxDepth = 48

// Quadrant indices into Quad.Children.
const (
	NW = iota
	NE
	SW
	SE
)

// Quad is a square region of the tree.
type Quad struct {
	X0, Y0, X1, Y1 float64

	Children [4]*Quad
	Points   []int // leaf only

	// Aggregates filled in by callers.
	Value  float64
	CX, CY float64
	R      float64
}

// Leaf returns true if the quad has no children.
func (q *Quad) Leaf() bool {
	return q.Children[NW] == nil && q.Children[NE] == nil && q.Children[SW] == nil && q.Children[SE] == nil
}

// Size returns the side length of the quad.
func (q *Quad) Size() float64 { return q.X1 - q.X0 }

// Tree is a quadtree over a fixed set of points.
type Tree struct {
	Root *Quad
	xs   []float64
	ys   []float64
	n    int
}

// Build indexes the points (xs[i], ys[i]). Points with a non-finite
// coordinate are left out.
func Build(xs, ys []float64) *Tree {
	t := &Tree{xs: xs, ys: ys}
	x0, y0, x1, y1, ok := extent(xs, ys)
	if !ok {
		return t
	}
	size := math.Max(x1-x0, y1-y0)
	if size == 0 {
		size = 1
	}
	t.Root = &Quad{X0: x0, Y0: y0, X1: x0 + size, Y1: y0 + size}
	for i := range xs {
		if finite(xs[i], ys[i]) {
			t.insert(i)
		}
	}
	return t
}

// Len returns the number of indexed points.
func (t *Tree) Len() int { return t.n }

// X returns the indexed x coordinate of point i.
func (t *Tree) X(i int) float64 { return t.xs[i] }

// Y returns the indexed y coordinate of point i.
func (t *Tree) Y(i int) float64 { return t.ys[i] }

func (t *Tree) insert(i int) {
	x, y := t.xs[i], t.ys[i]
	q := t.Root
	for depth := 0; ; depth++ {
		if q.Leaf() {
			if len(q.Points) == 0 {
				q.Points = []int{i}
				t.n++
				return
			}
			j := q.Points[0]
			if (t.xs[j] == x && t.ys[j] == y) || depth >= MaxDepth {
				q.Points = append(q.Points, i)
				t.n++
				return
			}
			old := q.Points
			q.Points = nil
			k := q.quadrant(t.xs[j], t.ys[j])
			q.Children[k] = q.child(k)
			q.Children[k].Points = old
		}

		k := q.quadrant(x, y)
		if q.Children[k] == nil {
			q.Children[k] = q.child(k)
			q.Children[k].Points = []int{i}
			t.n++
			return
		}
		q = q.Children[k]
	}
}

func (q *Quad) quadrant(x, y float64) int {
	xm, ym := (q.X0+q.X1)/2, (q.Y0+q.Y1)/2
	k := NW
	if x >= xm {
		k |= NE
	}
	if y >= ym {
		k |= SW
	}
	return k
}

func (q *Quad) child(k int) *Quad {
	xm, ym := (q.X0+q.X1)/2, (q.Y0+q.Y1)/2
	c := &Quad{X0: q.X0, Y0: q.Y0, X1: xm, Y1: ym}
	if k&NE != 0 {
		c.X0, c.X1 = xm, q.X1
	}
	if k&SW != 0 {
		c.Y0, c.Y1 = ym, q.Y1
	}
	return c
}

// Visit walks the tree in pre-order. Returning true from fn skips the quad's
// children.
func (t *Tree) Visit(fn func(q *Quad) bool) {
	if t.Root == nil {
		return
	}
	stack := []*Quad{t.Root}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fn(q) {
			continue
		}
		for k := SE; k >= NW; k-- {
			if c := q.Children[k]; c != nil {
				stack = append(stack, c)
			}
		}
	}
}

// VisitAfter walks the tree in post-order, so every quad is visited after
// all of its children.
func (t *Tree) VisitAfter(fn func(q *Quad)) {
	if t.Root == nil {
		return
	}
	visitAfter(t.Root, fn)
}

func visitAfter(q *Quad, fn func(q *Quad)) {
	for _, c := range q.Children {
		if c != nil {
			visitAfter(c, fn)
		}
	}
	fn(q)
}

func extent(xs, ys []float64) (x0, y0, x1, y1 float64, ok bool) {
	for i := range xs {
		x, y := xs[i], ys[i]
		if !finite(x, y) {
			continue
		}
		if !ok {
			x0, x1, y0, y1, ok = x, x, y, y, true
			continue
		}
		x0, x1 = math.Min(x0, x), math.Max(x1, x)
		y0, y1 = math.Min(y0, y), math.Max(y1, y)
	}
	return
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}
