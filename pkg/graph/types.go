package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultRadius is the radius attribute given to nodes that do not set one.
const DefaultRadius = 1.0

// =============================================================================
// Node
// =============================================================================

// Node is a single entity in the graph.
//
// ID and Group are loaded from input and never change. X, Y, VX and VY are
// owned by the simulation. FX and FY are non-nil only while the node is
// pinned (dragged); a pinned node sits exactly at (FX, FY).
type Node struct {
	ID    string
	Group string
	R     float64 // radius attribute, scaled by the collide force

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	// Placed reports whether X and Y hold a position, either from input or
	// from a previous simulation. Unplaced nodes are seeded by the engine.
	Placed bool
}

// Pinned returns true if the node has a fixed position.
func (n *Node) Pinned() bool { return n.FX != nil && n.FY != nil }

// nodeJSON is the wire shape of a node. Group accepts strings and numbers.
type nodeJSON struct {
	ID    string          `json:"id"`
	Group json.RawMessage `json:"group,omitempty"`
	R     *float64        `json:"r,omitempty"`
	X     *float64        `json:"x,omitempty"`
	Y     *float64        `json:"y,omitempty"`
}

// MarshalJSON writes the node's id, group, radius and, when placed, position.
func (n Node) MarshalJSON() ([]byte, error) {
	w := nodeJSON{ID: n.ID}
	if n.Group != "" {
		g, err := json.Marshal(n.Group)
		if err != nil {
			return nil, err
		}
		w.Group = g
	}
	if n.R != 0 && n.R != DefaultRadius {
		r := n.R
		w.R = &r
	}
	if n.Placed {
		x, y := n.X, n.Y
		w.X, w.Y = &x, &y
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a node. A position is taken only when both x and y are
// present.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Node{ID: w.ID, Group: groupString(w.Group), R: DefaultRadius}
	if w.R != nil {
		n.R = *w.R
	}
	if w.X != nil && w.Y != nil {
		n.X, n.Y = *w.X, *w.Y
		n.Placed = true
	}
	return nil
}

func groupString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// =============================================================================
// Link
// =============================================================================

// Link is an undirected relationship between two nodes.
//
// Source and Target are the ids as loaded. S and T are the resolved indices
// into Graph.Nodes and are only meaningful after [Load].
type Link struct {
	Source string          `json:"source"`
	Target string          `json:"target"`
	Value  json.RawMessage `json:"value,omitempty"`

	S int `json:"-"`
	T int `json:"-"`
}

// Weight returns the link's numeric weight. Values that are not a positive
// finite number (or a string holding one) weigh 1.
func (l *Link) Weight() float64 {
	return weightOf(l.Value)
}

// SelfLoop returns true if both endpoints are the same node.
func (l *Link) SelfLoop() bool { return l.S == l.T }

// NumberValue builds a link value from a number.
func NumberValue(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

func weightOf(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 1
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 1
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 1
		}
		v = f
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}

// =============================================================================
// Document
// =============================================================================

// Document is the {nodes, links} input document.
type Document struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}
