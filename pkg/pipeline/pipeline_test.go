package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/cache"
	errs "github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Load(
		[]graph.Node{{ID: "A", Group: "1"}, {ID: "B", Group: "1"}, {ID: "C", Group: "2"}},
		[]graph.Link{
			{Source: "A", Target: "B", Value: graph.NumberValue(1)},
			{Source: "B", Target: "C", Value: graph.NumberValue(2)},
			{Source: "C", Target: "A", Value: graph.NumberValue(3)},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{"native", false},
		{"graphviz", false},
		{"neato", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEngine(tt.engine)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %v, got %v", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %v, got %v", DefaultHeight, opts.Height)
	}
	if opts.MaxTicks != DefaultMaxTicks {
		t.Errorf("MaxTicks should be %d, got %d", DefaultMaxTicks, opts.MaxTicks)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
	if opts.Sim == nil || opts.Forces == nil {
		t.Fatal("Sim and Forces should be defaulted")
	}
	if *opts.Forces != force.DefaultConfig() {
		t.Errorf("Forces = %+v", *opts.Forces)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Engine != EngineNative {
		t.Errorf("Engine should be %s, got %s", EngineNative, opts.Engine)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
}

func TestSimConfigOverrides(t *testing.T) {
	c := sim.DefaultConfig()
	c.VelocityDecay = 0.2
	opts := Options{Width: 300, Height: 200, Seed: 7, Sim: &c}

	got := opts.SimConfig()
	if got.Width != 300 || got.Height != 200 || got.Seed != 7 {
		t.Errorf("canvas/seed not applied: %+v", got)
	}
	if got.VelocityDecay != 0.2 {
		t.Errorf("VelocityDecay = %v, want 0.2", got.VelocityDecay)
	}
	if c.Width != sim.DefaultWidth {
		t.Error("SimConfig should not modify the caller's config")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"defaults", Options{}, ""},
		{"negative width", Options{Width: -1}, errs.ErrCodeInvalidConfig},
		{"negative ticks", Options{MaxTicks: -5}, errs.ErrCodeInvalidConfig},
		{"bad format", Options{Formats: []string{"gif"}}, errs.ErrCodeInvalidFormat},
		{"bad engine", Options{Engine: "dot"}, errs.ErrCodeInvalidConfig},
		{"bad force", Options{Forces: &force.Config{}}, errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	forces := opts.Forces
	formats := opts.Formats

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Forces != forces {
		t.Error("Forces changed on second call")
	}
	if len(opts.Formats) != len(formats) {
		t.Error("Formats changed on second call")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Labels: true, Hover: true, Engine: EngineNative, Scale: 3}

	svg := opts.ArtifactKeyOpts(FormatSVG)
	if !svg.Hover || !svg.Labels || svg.Scale != 0 {
		t.Errorf("svg key = %+v", svg)
	}
	png := opts.ArtifactKeyOpts(FormatPNG)
	if png.Hover || png.Scale != 3 {
		t.Errorf("png key = %+v", png)
	}
	js := opts.ArtifactKeyOpts(FormatJSON)
	if js.Labels || js.Engine != "" {
		t.Errorf("json key should ignore drawing options: %+v", js)
	}
}

func TestGenerateLayout(t *testing.T) {
	ctx := context.Background()

	l1, ticks, err := GenerateLayout(ctx, triangle(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ticks < 250 || ticks > 350 {
		t.Errorf("ticks = %d, want about 300", ticks)
	}
	if l1.Alpha > 0.01 {
		t.Errorf("alpha = %v, want <= 0.01", l1.Alpha)
	}

	l2, _, err := GenerateLayout(ctx, triangle(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := range l1.Nodes {
		if l1.Nodes[i].X != l2.Nodes[i].X || l1.Nodes[i].Y != l2.Nodes[i].Y {
			t.Errorf("node %d differs between runs: %+v vs %+v", i, l1.Nodes[i], l2.Nodes[i])
		}
	}
}

func TestGenerateLayoutMaxTicks(t *testing.T) {
	l, ticks, err := GenerateLayout(context.Background(), triangle(t), Options{MaxTicks: 10})
	if err != nil {
		t.Fatal(err)
	}
	if ticks != 10 || l.Ticks != 10 {
		t.Errorf("ticks = %d (layout %d), want 10", ticks, l.Ticks)
	}
}

func TestRender(t *testing.T) {
	l, _, err := GenerateLayout(context.Background(), triangle(t), Options{MaxTicks: 50})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(context.Background(), l, Options{
		Formats: []string{FormatSVG, FormatJSON, FormatDOT},
		Labels:  true,
		Hover:   true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if svg := string(out[FormatSVG]); !strings.Contains(svg, "<text") || !strings.Contains(svg, "<script") {
		t.Error("svg should carry labels and hover script")
	}
	if dot := string(out[FormatDOT]); !strings.Contains(dot, "layout=neato") {
		t.Error("dot output missing neato layout")
	}
	var decoded graph.Layout
	if err := json.Unmarshal(out[FormatJSON], &decoded); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(decoded.Nodes) != 3 || decoded.Ticks != 50 {
		t.Errorf("decoded layout: %d nodes, %d ticks", len(decoded.Nodes), decoded.Ticks)
	}
}

func TestRenderUnsupported(t *testing.T) {
	if _, err := Render(context.Background(), graph.Layout{}, Options{Formats: []string{"gif"}}); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestRunnerCaching(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{FormatJSON, FormatDOT}}

	first, err := r.Execute(ctx, triangle(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 3 || first.Stats.LinkCount != 3 {
		t.Errorf("stats = %+v", first.Stats)
	}

	g := triangle(t)
	second, err := r.Execute(ctx, g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.GraphHash != first.GraphHash {
		t.Error("same input should hash the same")
	}
	if string(second.Artifacts[FormatDOT]) != string(first.Artifacts[FormatDOT]) {
		t.Error("cached artifact differs")
	}
	// A cache hit still positions the caller's graph.
	if g.Nodes[0].X != first.Layout.Nodes[0].X || g.Nodes[0].Y != first.Layout.Nodes[0].Y {
		t.Error("cached layout not applied to graph")
	}

	refresh := opts
	refresh.Refresh = true
	third, err := r.Execute(ctx, triangle(t), refresh)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh should bypass the layout cache")
	}
}

func TestGenerateLayoutReportsFrames(t *testing.T) {
	var ticks []int
	opts := Options{MaxTicks: 20, OnFrame: func(f sim.Frame) { ticks = append(ticks, f.Tick) }}
	if _, n, err := GenerateLayout(context.Background(), triangle(t), opts); err != nil || n != 20 {
		t.Fatalf("GenerateLayout() ran %d ticks, err %v", n, err)
	}
	if len(ticks) != 20 || ticks[0] != 1 || ticks[19] != 20 {
		t.Errorf("frames seen for ticks %v", ticks)
	}
}

func TestHashGraph(t *testing.T) {
	a, err := HashGraph(triangle(t))
	if err != nil || a == "" {
		t.Fatalf("HashGraph() = %q, %v", a, err)
	}
	if b, _ := HashGraph(triangle(t)); b != a {
		t.Errorf("same graph hashed %q and %q", a, b)
	}

	g := triangle(t)
	g.Nodes[0].X, g.Nodes[0].Placed = math.NaN(), true
	if h, err := HashGraph(g); err == nil || h != "" {
		t.Errorf("HashGraph() with a NaN position = %q, %v; want an error", h, err)
	}
}

func TestRunnerSkipsCacheForUnhashableGraph(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)

	unhashable := func(id string) *graph.Graph {
		g, err := graph.Load([]graph.Node{{ID: id, X: math.Inf(1), Placed: true}}, nil)
		if err != nil {
			t.Fatal(err)
		}
		return g
	}

	for _, id := range []string{"first", "second"} {
		l, hit, err := r.LayoutWithCacheInfo(ctx, unhashable(id), Options{MaxTicks: 10})
		if err != nil {
			t.Fatalf("layout %s: %v", id, err)
		}
		if hit {
			t.Errorf("layout %s came from the cache", id)
		}
		if len(l.Nodes) != 1 || l.Nodes[0].ID != id {
			t.Errorf("layout %s holds %+v", id, l.Nodes)
		}
	}
}

func TestRunnerOptionsChangeKey(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)

	if _, hit, err := r.LayoutWithCacheInfo(ctx, triangle(t), Options{Seed: 1}); err != nil || hit {
		t.Fatalf("first layout: hit %v err %v", hit, err)
	}
	if _, hit, err := r.LayoutWithCacheInfo(ctx, triangle(t), Options{Seed: 2}); err != nil || hit {
		t.Fatalf("different seed should miss: hit %v err %v", hit, err)
	}
	if _, hit, err := r.LayoutWithCacheInfo(ctx, triangle(t), Options{Seed: 1}); err != nil || !hit {
		t.Fatalf("same seed should hit: hit %v err %v", hit, err)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(ctx, triangle(t), Options{Formats: []string{FormatJSON}}); err == nil {
		t.Error("cancelled context should fail the layout")
	}
}
