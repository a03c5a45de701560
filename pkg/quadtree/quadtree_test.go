package quadtree

import (
	"math"
	"sort"
	"testing"
)

func collect(t *Tree) []int {
	var got []int
	t.Visit(func(q *Quad) bool {
		got = append(got, q.Points...)
		return false
	})
	sort.Ints(got)
	return got
}

func TestBuildIndexesEveryPoint(t *testing.T) {
	xs := []float64{0, 10, 10, 3, -4, 7.5}
	ys := []float64{0, 10, 0, 8, 2, 7.5}
	tree := Build(xs, ys)

	if tree.Len() != len(xs) {
		t.Fatalf("Len() = %d, want %d", tree.Len(), len(xs))
	}
	got := collect(tree)
	for i := range xs {
		if got[i] != i {
			t.Fatalf("visited points = %v", got)
		}
	}
}

func TestPointsLieInsideTheirLeaf(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	ys := []float64{9, 1, 8, 2, 7, 3, 6, 4, 5}
	tree := Build(xs, ys)

	tree.Visit(func(q *Quad) bool {
		for _, i := range q.Points {
			if xs[i] < q.X0 || xs[i] > q.X1 || ys[i] < q.Y0 || ys[i] > q.Y1 {
				t.Errorf("point %d (%v, %v) outside quad [%v,%v]x[%v,%v]", i, xs[i], ys[i], q.X0, q.X1, q.Y0, q.Y1)
			}
		}
		if !q.Leaf() && len(q.Points) > 0 {
			t.Error("internal quad holds points")
		}
		return false
	})
}

func TestCoincidentPointsShareLeaf(t *testing.T) {
	tree := Build([]float64{5, 5, 5, 9}, []float64{5, 5, 5, 1})
	var shared int
	tree.Visit(func(q *Quad) bool {
		if len(q.Points) > 1 {
			shared = len(q.Points)
		}
		return false
	})
	if shared != 3 {
		t.Errorf("coincident leaf size = %d, want 3", shared)
	}
}

func TestNearlyCoincidentPointsTerminate(t *testing.T) {
	x := 1.0
	tree := Build([]float64{x, math.Nextafter(x, 2), 100}, []float64{0, 0, 100})
	if tree.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tree.Len())
	}
}

func TestBuildSkipsNonFinite(t *testing.T) {
	tree := Build([]float64{0, math.NaN(), 1, math.Inf(1)}, []float64{0, 0, 1, 0})
	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
	empty := Build(nil, nil)
	if empty.Root != nil || empty.Len() != 0 {
		t.Error("empty tree has a root")
	}
	empty.Visit(func(*Quad) bool { t.Error("visited empty tree"); return false })
}

func TestVisitAfterIsPostOrder(t *testing.T) {
	xs := []float64{0, 10, 0, 10}
	ys := []float64{0, 0, 10, 10}
	tree := Build(xs, ys)

	// Sum point counts bottom-up; the root must see all of them.
	tree.VisitAfter(func(q *Quad) {
		if q.Leaf() {
			q.Value = float64(len(q.Points))
			return
		}
		q.Value = 0
		for _, c := range q.Children {
			if c != nil {
				q.Value += c.Value
			}
		}
	})
	if tree.Root.Value != 4 {
		t.Errorf("root aggregate = %v, want 4", tree.Root.Value)
	}
}

func TestVisitSkip(t *testing.T) {
	tree := Build([]float64{0, 10, 0, 10}, []float64{0, 0, 10, 10})
	visited := 0
	tree.Visit(func(q *Quad) bool {
		visited++
		return true
	})
	if visited != 1 {
		t.Errorf("visited = %d, want 1 when root skips children", visited)
	}
}

func TestRootIsSquare(t *testing.T) {
	tree := Build([]float64{0, 40}, []float64{0, 10})
	r := tree.Root
	if r.X1-r.X0 != r.Y1-r.Y0 {
		t.Errorf("root = [%v,%v]x[%v,%v], want square", r.X0, r.X1, r.Y0, r.Y1)
	}
	if r.Size() != 40 {
		t.Errorf("Size() = %v, want 40", r.Size())
	}
}
