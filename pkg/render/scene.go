package render

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
)

// Node drawing constants. A node with radius attribute R is drawn with
// radius NodeRadius*R.
const (
	NodeRadius      = 10.0
	NodeStroke      = "#fff"
	NodeStrokeWidth = 1.0

	LabelDX       = 10.0
	LabelDY       = 5.0
	LabelFontSize = 10.0
)

// Scene is a frame ready to draw.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Tick   int     `json:"tick"`
	Alpha  float64 `json:"alpha"`

	Nodes    []SceneNode       `json:"nodes"`
	Links    []SceneLink       `json:"links"`
	Emphasis interact.Emphasis `json:"emphasis"`
}

// SceneNode is a node as drawn.
type SceneNode struct {
	ID         string  `json:"id"`
	Group      string  `json:"group,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	Fill       string  `json:"fill"`
	BaseFill   string  `json:"base_fill"`
	Pinned     bool    `json:"pinned,omitempty"`
	Emphasized bool    `json:"emphasized,omitempty"`
}

// SceneLink is a link segment as drawn.
type SceneLink struct {
	Source     int     `json:"source"`
	Target     int     `json:"target"`
	Weight     float64 `json:"weight"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Stroke     string  `json:"stroke"`
	Width      float64 `json:"width"`
	Opacity    float64 `json:"opacity"`
	Emphasized bool    `json:"emphasized,omitempty"`
}

// NewScene builds a scene from a layout. A nil palette uses a fresh
// Category10 palette seeded with the layout's groups; a nil highlighter
// draws the resting state. The highlighter must belong to the graph the
// layout was taken from.
func NewScene(l graph.Layout, p *Palette, hl *interact.Highlighter) Scene {
	if p == nil {
		p = NewPalette()
		for _, n := range l.Nodes {
			p.Color(n.Group)
		}
	}

	s := Scene{
		Width:  l.Width,
		Height: l.Height,
		Tick:   l.Ticks,
		Alpha:  l.Alpha,
		Nodes:  make([]SceneNode, len(l.Nodes)),
		Links:  make([]SceneLink, len(l.Links)),
	}
	if hl != nil {
		s.Emphasis = hl.Emphasis()
	}

	for i, n := range l.Nodes {
		base := p.Color(n.Group)
		sn := SceneNode{
			ID:       n.ID,
			Group:    n.Group,
			X:        n.X,
			Y:        n.Y,
			Radius:   NodeRadius * n.R,
			Fill:     base,
			BaseFill: base,
			Pinned:   n.Pinned,
		}
		if hl != nil {
			sn.Fill = hl.NodeFill(i, base)
			sn.Emphasized = hl.NodeEmphasized(i)
		}
		s.Nodes[i] = sn
	}

	for i, lk := range l.Links {
		hint := interact.DefaultHint(lk.Weight)
		emphasized := false
		if hl != nil {
			hint = hl.LinkHint(i)
			emphasized = hl.LinkEmphasized(i)
		}
		s.Links[i] = SceneLink{
			Source:     lk.Source,
			Target:     lk.Target,
			Weight:     lk.Weight,
			X1:         lk.X1,
			Y1:         lk.Y1,
			X2:         lk.X2,
			Y2:         lk.Y2,
			Stroke:     hint.Stroke,
			Width:      hint.Width,
			Opacity:    hint.Opacity,
			Emphasized: emphasized,
		}
	}
	return s
}

// Bounds returns the box containing every node disc, or the canvas when
// there are no nodes.
func (s Scene) Bounds() (minX, minY, maxX, maxY float64) {
	if len(s.Nodes) == 0 {
		return 0, 0, s.Width, s.Height
	}
	minX, minY = s.Nodes[0].X-s.Nodes[0].Radius, s.Nodes[0].Y-s.Nodes[0].Radius
	maxX, maxY = s.Nodes[0].X+s.Nodes[0].Radius, s.Nodes[0].Y+s.Nodes[0].Radius
	for _, n := range s.Nodes[1:] {
		minX = min(minX, n.X-n.Radius)
		minY = min(minY, n.Y-n.Radius)
		maxX = max(maxX, n.X+n.Radius)
		maxY = max(maxY, n.Y+n.Radius)
	}
	return minX, minY, maxX, maxY
}
