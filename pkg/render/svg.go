package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/matzehuels/forcegraph/pkg/interact"
)

// svgMargin pads the view box around the outermost node.
const svgMargin = 20.0

var hoverJS = fmt.Sprintf(`
    const links = document.querySelectorAll('.link');
    document.querySelectorAll('.node').forEach(n => {
      n.addEventListener('mouseover', () => {
        const i = n.dataset.index;
        n.setAttribute('fill', '%[1]s');
        links.forEach(l => {
          const hit = l.dataset.source === i || l.dataset.target === i;
          l.setAttribute('stroke', hit ? '%[1]s' : '%[2]s');
          l.setAttribute('stroke-width', hit ? %[3]g : %[4]g);
        });
      });
      n.addEventListener('mouseout', () => {
        n.setAttribute('fill', n.dataset.fill);
        links.forEach(l => {
          l.setAttribute('stroke', '%[5]s');
          l.setAttribute('stroke-width', l.dataset.width);
        });
      });
    });`,
	interact.EmphasisColor, interact.DimmedLinkColor,
	interact.EmphasisWidth, interact.DimmedLinkWidth, interact.DefaultLinkColor)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels bool
	hover  bool
	title  string
}

// WithLabels draws each node id next to its disc.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithHover embeds a script that emphasizes a node and its links on mouseover.
func WithHover() SVGOption { return func(r *svgRenderer) { r.hover = true } }

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws a scene as a standalone SVG document. Links are drawn below
// nodes, labels above.
func RenderSVG(s Scene, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := s.Bounds()
	minX = min(0, minX-svgMargin)
	minY = min(0, minY-svgMargin)
	maxX = max(s.Width, maxX+svgMargin)
	maxY = max(s.Height, maxY+svgMargin)
	w, h := maxX-minX, maxY-minY

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}

	renderLinks(&buf, s.Links)
	renderNodes(&buf, s.Nodes)
	if r.labels {
		renderLabels(&buf, s.Nodes)
	}
	if r.hover {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", hoverJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLinks(buf *bytes.Buffer, links []SceneLink) {
	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range links {
		fmt.Fprintf(buf, `    <line class="link" data-source="%d" data-target="%d" data-width="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%g" stroke-width="%s"/>`+"\n",
			l.Source, l.Target, fmtWidth(restingWidth(l)),
			l.X1, l.Y1, l.X2, l.Y2,
			l.Stroke, l.Opacity, fmtWidth(l.Width))
	}
	buf.WriteString("  </g>\n")
}

// restingWidth is the width a link returns to when the pointer leaves.
func restingWidth(l SceneLink) float64 {
	return interact.DefaultHint(l.Weight).Width
}

func renderNodes(buf *bytes.Buffer, nodes []SceneNode) {
	fmt.Fprintf(buf, `  <g class="nodes" stroke="%s" stroke-width="%g">`+"\n", NodeStroke, NodeStrokeWidth)
	for i, n := range nodes {
		fmt.Fprintf(buf, `    <circle class="node" data-index="%d" data-fill="%s" cx="%.2f" cy="%.2f" r="%g" fill="%s"><title>%s</title></circle>`+"\n",
			i, n.BaseFill, n.X, n.Y, n.Radius, n.Fill, html.EscapeString(n.ID))
	}
	buf.WriteString("  </g>\n")
}

func renderLabels(buf *bytes.Buffer, nodes []SceneNode) {
	fmt.Fprintf(buf, `  <g class="labels" font-family="sans-serif" font-size="%g">`+"\n", LabelFontSize)
	for _, n := range nodes {
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f">%s</text>`+"\n",
			n.X+LabelDX, n.Y+LabelDY, html.EscapeString(n.ID))
	}
	buf.WriteString("  </g>\n")
}

func fmtWidth(w float64) string {
	return strconv.FormatFloat(w, 'f', 3, 64)
}
