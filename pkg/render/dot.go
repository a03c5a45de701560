package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts scene units to Graphviz node sizes, which are in
// inches. Positions are already in points.
const pointsPerInch = 72.0

// ToDOT converts a scene to an undirected Graphviz graph. Every node carries
// pos="x,y!" so that neato keeps it where the simulation put it; y is
// negated because Graphviz's y axis points up.
func ToDOT(s Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, color=%q, penwidth=%g, fontsize=%g, label=\"\"];\n",
		NodeStroke, NodeStrokeWidth, LabelFontSize)
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		d := fmtInches(2 * n.Radius)
		fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\", width=%s, height=%s, fillcolor=%q, tooltip=%q];\n",
			n.ID, fmtPoint(n.X), fmtPoint(-n.Y), d, d, n.Fill, n.ID)
	}

	buf.WriteString("\n")
	for _, l := range s.Links {
		fmt.Fprintf(&buf, "  %q -- %q [color=%q, penwidth=%s];\n",
			s.Nodes[l.Source].ID, s.Nodes[l.Target].ID, strokeColor(l), fmtWidth(l.Width))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// strokeColor folds opacity into an #rrggbbaa colour where possible.
func strokeColor(l SceneLink) string {
	hex, ok := expandHex(l.Stroke)
	if !ok {
		return l.Stroke
	}
	return fmt.Sprintf("%s%02x", hex, int(l.Opacity*255+0.5))
}

// expandHex turns #rgb and #rrggbb into #rrggbb.
func expandHex(c string) (string, bool) {
	switch {
	case len(c) == 7 && c[0] == '#':
		return c, true
	case len(c) == 4 && c[0] == '#':
		return string([]byte{'#', c[1], c[1], c[2], c[2], c[3], c[3]}), true
	}
	return "", false
}

func fmtPoint(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fmtInches(v float64) string {
	return strconv.FormatFloat(v/pointsPerInch, 'f', 4, 64)
}

// RenderGraphvizSVG renders a DOT graph to SVG with the neato engine.
func RenderGraphvizSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
