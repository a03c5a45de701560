package graph

import (
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Layout - Serialized Simulation Result
// =============================================================================

// Layout is the serialized state of a simulation: canvas, progress and the
// positions of every node and link segment. Renderers and caches work on
// Layouts rather than live engines.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ticks  int     `json:"ticks"`
	Alpha  float64 `json:"alpha"`

	Nodes []LayoutNode `json:"nodes"`
	Links []LayoutLink `json:"links"`
}

// LayoutNode is a positioned node.
type LayoutNode struct {
	ID     string  `json:"id"`
	Group  string  `json:"group,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	R      float64 `json:"r"`
	Pinned bool    `json:"pinned,omitempty"`
}

// LayoutLink is a positioned link segment. Source and Target index into
// Layout.Nodes.
type LayoutLink struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// NewLayout snapshots the current positions of g.
func NewLayout(g *Graph, width, height float64, ticks int, alpha float64) Layout {
	l := Layout{
		Width:  width,
		Height: height,
		Ticks:  ticks,
		Alpha:  alpha,
		Nodes:  make([]LayoutNode, len(g.Nodes)),
		Links:  make([]LayoutLink, len(g.Links)),
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		l.Nodes[i] = LayoutNode{ID: n.ID, Group: n.Group, X: n.X, Y: n.Y, R: n.R, Pinned: n.Pinned()}
	}
	for i := range g.Links {
		lk := &g.Links[i]
		s, t := &g.Nodes[lk.S], &g.Nodes[lk.T]
		l.Links[i] = LayoutLink{
			Source: lk.S, Target: lk.T, Weight: lk.Weight(),
			X1: s.X, Y1: s.Y, X2: t.X, Y2: t.Y,
		}
	}
	return l
}

// Apply copies the layout's positions onto the matching nodes of g (by id)
// and marks them placed. Nodes absent from the layout are left alone.
func (l Layout) Apply(g *Graph) int {
	n := 0
	for _, ln := range l.Nodes {
		i, ok := g.Index(ln.ID)
		if !ok {
			continue
		}
		node := &g.Nodes[i]
		node.X, node.Y = ln.X, ln.Y
		node.VX, node.VY = 0, 0
		node.Placed = true
		n++
	}
	return n
}

// Bounds returns the bounding box of node centres.
func (l Layout) Bounds() (minX, minY, maxX, maxY float64) {
	for i, n := range l.Nodes {
		if i == 0 {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			continue
		}
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	return
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that link
// endpoints index into the node list.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	for i, lk := range l.Links {
		if lk.Source < 0 || lk.Source >= len(l.Nodes) || lk.Target < 0 || lk.Target >= len(l.Nodes) {
			return Layout{}, errs.New(errs.ErrCodeInvalidReference, "layout link %d: endpoint out of range", i)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
