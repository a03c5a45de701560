package interact

import (
	"math"
	"slices"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Colors and widths used for hover emphasis.
const (
	EmphasisColor    = "firebrick"
	DimmedLinkColor  = "black"
	DefaultLinkColor = "#999"

	EmphasisWidth   = 4.0
	DimmedLinkWidth = 1.0
	LinkOpacity     = 0.7
)

// Emphasis is the hover state: the hovered node and its incident links.
// The zero value means nothing is emphasized.
type Emphasis struct {
	Node  string `json:"node,omitempty"`
	Links []int  `json:"links,omitempty"`
}

// Active returns true if a node is emphasized.
func (e Emphasis) Active() bool { return e.Node != "" }

// Equal reports whether two emphasis states are the same.
func (e Emphasis) Equal(o Emphasis) bool {
	return e.Node == o.Node && slices.Equal(e.Links, o.Links)
}

// Hint is how a renderer should stroke a link.
type Hint struct {
	Stroke  string
	Width   float64
	Opacity float64
}

// Highlighter tracks hover emphasis over a graph. It never touches physics.
type Highlighter struct {
	g     *graph.Graph
	node  int
	links map[int]bool
}

// NewHighlighter creates a highlighter with nothing emphasized.
func NewHighlighter(g *graph.Graph) *Highlighter {
	return &Highlighter{g: g, node: -1, links: make(map[int]bool)}
}

// Enter emphasizes id and every link incident to it. Entering the node that
// is already emphasized changes nothing; entering another node moves the
// emphasis there.
func (h *Highlighter) Enter(id string) error {
	i, ok := h.g.Index(id)
	if !ok {
		return errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id)
	}
	if h.node == i {
		return nil
	}
	h.clear()
	h.node = i
	for _, li := range h.g.Incident(i) {
		h.links[li] = true
	}
	return nil
}

// Exit clears all emphasis. Exiting with nothing emphasized is a no-op.
func (h *Highlighter) Exit(string) {
	h.clear()
}

func (h *Highlighter) clear() {
	h.node = -1
	clear(h.links)
}

// Emphasis returns the current state with links in ascending order.
func (h *Highlighter) Emphasis() Emphasis {
	if h.node < 0 {
		return Emphasis{}
	}
	e := Emphasis{Node: h.g.Nodes[h.node].ID, Links: make([]int, 0, len(h.links))}
	for li := range h.links {
		e.Links = append(e.Links, li)
	}
	slices.Sort(e.Links)
	return e
}

// Active returns true if a node is emphasized.
func (h *Highlighter) Active() bool { return h.node >= 0 }

// NodeEmphasized reports whether node i is the hovered node.
func (h *Highlighter) NodeEmphasized(i int) bool { return h.node >= 0 && h.node == i }

// LinkEmphasized reports whether link li touches the hovered node.
func (h *Highlighter) LinkEmphasized(li int) bool { return h.links[li] }

// LinkHint returns the stroke for link li. While a node is hovered its links
// are drawn thick in the emphasis colour and every other link thin and black;
// otherwise links are grey with width sqrt(weight).
func (h *Highlighter) LinkHint(li int) Hint {
	switch {
	case h.links[li]:
		return Hint{Stroke: EmphasisColor, Width: EmphasisWidth, Opacity: LinkOpacity}
	case h.Active():
		return Hint{Stroke: DimmedLinkColor, Width: DimmedLinkWidth, Opacity: LinkOpacity}
	default:
		return DefaultHint(h.g.Links[li].Weight())
	}
}

// NodeFill returns the fill for node i given its category colour.
func (h *Highlighter) NodeFill(i int, base string) string {
	if h.NodeEmphasized(i) {
		return EmphasisColor
	}
	return base
}

// DefaultHint is the resting stroke of a link with the given weight.
func DefaultHint(weight float64) Hint {
	return Hint{Stroke: DefaultLinkColor, Width: math.Sqrt(weight), Opacity: LinkOpacity}
}
