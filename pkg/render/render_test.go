package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
)

// star returns a hub with three spokes placed on a cross, the last link
// carrying weight 4.
func star(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Load(
		[]graph.Node{
			{ID: "hub", Group: "core", X: 100, Y: 100},
			{ID: "a", Group: "leaf", X: 150, Y: 100},
			{ID: "b", Group: "leaf", X: 100, Y: 150},
			{ID: "c", Group: "other", X: 50, Y: 100, R: 2},
		},
		[]graph.Link{
			{Source: "hub", Target: "a"},
			{Source: "hub", Target: "b"},
			{Source: "hub", Target: "c", Value: graph.NumberValue(4)},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestPalette(t *testing.T) {
	p := NewPalette()
	if got := p.Color("x"); got != Category10[0] {
		t.Errorf("first group = %s, want %s", got, Category10[0])
	}
	if got := p.Color("y"); got != Category10[1] {
		t.Errorf("second group = %s, want %s", got, Category10[1])
	}
	if got := p.Color("x"); got != Category10[0] {
		t.Errorf("repeat lookup = %s, want %s", got, Category10[0])
	}

	for i := 0; i < 10; i++ {
		p.Color(string(rune('a' + i)))
	}
	if p.Len() != 12 {
		t.Errorf("Len = %d, want 12", p.Len())
	}
	// The twelfth group wraps around to the second colour.
	if got := p.Color("j"); got != Category10[11%10] {
		t.Errorf("wrapped colour = %s, want %s", got, Category10[1])
	}
}

func TestPaletteSeed(t *testing.T) {
	p := NewPaletteWith([]string{"red", "blue"})
	p.Seed([]string{"b", "a"})
	if p.Color("a") != "blue" || p.Color("b") != "red" {
		t.Errorf("seeded colours: a=%s b=%s", p.Color("a"), p.Color("b"))
	}
}

func TestNewSceneResting(t *testing.T) {
	g := star(t)
	s := NewScene(graph.NewLayout(g, 200, 200, 0, 1), nil, nil)

	if len(s.Nodes) != 4 || len(s.Links) != 3 {
		t.Fatalf("scene has %d nodes, %d links", len(s.Nodes), len(s.Links))
	}
	if s.Nodes[0].Fill != Category10[0] || s.Nodes[1].Fill != Category10[1] || s.Nodes[3].Fill != Category10[2] {
		t.Errorf("fills = %s %s %s", s.Nodes[0].Fill, s.Nodes[1].Fill, s.Nodes[3].Fill)
	}
	if s.Nodes[3].Radius != 2*NodeRadius {
		t.Errorf("radius = %v, want %v", s.Nodes[3].Radius, 2*NodeRadius)
	}
	for i, l := range s.Links {
		if l.Stroke != interact.DefaultLinkColor || l.Opacity != interact.LinkOpacity {
			t.Errorf("link %d stroke %s opacity %v", i, l.Stroke, l.Opacity)
		}
	}
	if s.Links[0].Width != 1 || s.Links[2].Width != 2 {
		t.Errorf("widths = %v, %v; want 1, 2", s.Links[0].Width, s.Links[2].Width)
	}
	if s.Emphasis.Active() {
		t.Error("resting scene has emphasis")
	}
}

func TestNewSceneHover(t *testing.T) {
	g := star(t)
	hl := interact.NewHighlighter(g)
	if err := hl.Enter("a"); err != nil {
		t.Fatal(err)
	}
	s := NewScene(graph.NewLayout(g, 200, 200, 0, 1), nil, hl)

	if !s.Nodes[1].Emphasized || s.Nodes[1].Fill != interact.EmphasisColor {
		t.Errorf("hovered node = %+v", s.Nodes[1])
	}
	if s.Nodes[1].BaseFill != Category10[1] {
		t.Errorf("base fill = %s, want %s", s.Nodes[1].BaseFill, Category10[1])
	}
	if s.Nodes[0].Emphasized {
		t.Error("neighbour should not be emphasized")
	}

	tests := []struct {
		link   int
		stroke string
		width  float64
	}{
		{0, interact.EmphasisColor, interact.EmphasisWidth},
		{1, interact.DimmedLinkColor, interact.DimmedLinkWidth},
		{2, interact.DimmedLinkColor, interact.DimmedLinkWidth},
	}
	for _, tt := range tests {
		l := s.Links[tt.link]
		if l.Stroke != tt.stroke || l.Width != tt.width {
			t.Errorf("link %d = %s/%v, want %s/%v", tt.link, l.Stroke, l.Width, tt.stroke, tt.width)
		}
	}
	if s.Emphasis.Node != "a" {
		t.Errorf("Emphasis.Node = %q", s.Emphasis.Node)
	}
}

func TestSceneBounds(t *testing.T) {
	s := NewScene(graph.NewLayout(star(t), 200, 200, 0, 1), nil, nil)
	minX, minY, maxX, maxY := s.Bounds()
	if minX != 30 || minY != 80 || maxX != 160 || maxY != 160 {
		t.Errorf("Bounds = %v %v %v %v", minX, minY, maxX, maxY)
	}

	empty := Scene{Width: 10, Height: 20}
	if _, _, w, h := empty.Bounds(); w != 10 || h != 20 {
		t.Errorf("empty Bounds = %v x %v", w, h)
	}
}

func TestRenderSVG(t *testing.T) {
	s := NewScene(graph.NewLayout(star(t), 200, 200, 0, 1), nil, nil)

	svg := string(RenderSVG(s))
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatal("output is not an svg document")
	}
	if n := strings.Count(svg, `class="node"`); n != 4 {
		t.Errorf("%d nodes drawn, want 4", n)
	}
	if n := strings.Count(svg, `class="link"`); n != 3 {
		t.Errorf("%d links drawn, want 3", n)
	}
	if strings.Contains(svg, "<script") || strings.Contains(svg, "<text") {
		t.Error("labels and script should be opt-in")
	}
	if !strings.Contains(svg, `stroke="#fff" stroke-width="1"`) {
		t.Error("missing white node stroke")
	}
	// Links come before nodes so nodes are drawn on top.
	if strings.Index(svg, `class="links"`) > strings.Index(svg, `class="nodes"`) {
		t.Error("links should be drawn below nodes")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	s := NewScene(graph.NewLayout(star(t), 200, 200, 0, 1), nil, nil)
	svg := string(RenderSVG(s, WithLabels(), WithHover(), WithTitle("a<b")))

	if !strings.Contains(svg, `<text x="160.00" y="105.00">a</text>`) {
		t.Error("label for a not at (x+10, y+5)")
	}
	if !strings.Contains(svg, `font-size="10"`) {
		t.Error("labels should use font size 10")
	}
	if !strings.Contains(svg, "mouseover") || !strings.Contains(svg, "firebrick") {
		t.Error("hover script missing")
	}
	if !strings.Contains(svg, "<title>a&lt;b</title>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(svg, `data-width="2.000"`) {
		t.Error("weighted link should rest at width sqrt(4)")
	}
}

func TestToDOT(t *testing.T) {
	s := NewScene(graph.NewLayout(star(t), 200, 200, 0, 1), nil, nil)
	dot := ToDOT(s)

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`"hub" [pos="100.00,-100.00!"`,
		`"hub" -- "c"`,
		`color="#999999b3"`,
		"penwidth=2.000",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
}

func TestExpandHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#999", "#999999", true},
		{"#1f77b4", "#1f77b4", true},
		{"firebrick", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := expandHex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("expandHex(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRenderGraphvizSVG(t *testing.T) {
	s := NewScene(graph.NewLayout(star(t), 200, 200, 0, 1), nil, nil)
	svg, err := RenderGraphvizSVG(context.Background(), ToDOT(s))
	if err != nil {
		t.Fatalf("RenderGraphvizSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output missing <svg> tag")
	}
}

func TestRenderGraphvizSVGInvalid(t *testing.T) {
	if _, err := RenderGraphvizSVG(context.Background(), "graph G { a -- "); err == nil {
		t.Error("invalid DOT should fail")
	}
}

func TestToPNGRequiresRsvg(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert installed")
	}
	if _, err := ToPNG([]byte("<svg/>"), 2); err == nil {
		t.Error("ToPNG without rsvg-convert should fail")
	}
}
