// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// By centralizing this logic, every entry point settles graphs with the same
// defaults and shares the same layout and artifact caches.
//
// # Architecture
//
// The pipeline consists of two stages after loading:
//
//  1. Layout: run a simulation until it cools down (or MaxTicks ticks) and
//     snapshot the positions as a [graph.Layout]
//  2. Render: draw the layout in the requested formats (SVG, PNG, PDF,
//     JSON, DOT)
//
// Each stage is cached independently: layouts by graph content plus every
// option that changes the simulation, artifacts by layout content plus the
// render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, _ := graph.ReadGraphFile("miserables.json")
//	result, err := runner.Execute(ctx, g, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	    Labels:  true,
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	errs "github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = sim.DefaultWidth

	// DefaultHeight is the default canvas height.
	DefaultHeight = sim.DefaultHeight

	// DefaultMaxTicks bounds a batch layout. With the default decay alpha
	// falls below its minimum after about 300 ticks, so the bound only bites
	// on reheated or slowed-down simulations.
	DefaultMaxTicks = 1000

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = sim.DefaultSeed

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// SVG engines.
const (
	EngineNative   = "native"
	EngineGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidEngines is the set of supported SVG engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Width    float64       `json:"width,omitempty"`
	Height   float64       `json:"height,omitempty"`
	MaxTicks int           `json:"max_ticks,omitempty"`
	Seed     uint64        `json:"seed,omitempty"`
	Sim      *sim.Config   `json:"sim,omitempty"`
	Forces   *force.Config `json:"forces,omitempty"`
	Refresh  bool          `json:"refresh,omitempty"` // Ignore cached layouts

	// Render options
	Formats []string `json:"formats,omitempty"`
	Engine  string   `json:"engine,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Hover   bool     `json:"hover,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// OnFrame, when set, receives every frame of an uncached layout.
	OnFrame func(sim.Frame) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph, positioned by the layout.
	Graph *graph.Graph

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Layout contains the settled positions.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an SVG engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errs.New(errs.ErrCodeInvalidConfig, "invalid engine: %q (must be one of: native, graphviz)", engine)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every stage.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Sim == nil {
		c := sim.DefaultConfig()
		o.Sim = &c
	}
	if o.Forces == nil {
		c := force.DefaultConfig()
		o.Forces = &c
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates the simulation and
// force settings.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.MaxTicks < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "max_ticks must not be negative, got %d", o.MaxTicks)
	}
	if err := o.SimConfig().Validate(); err != nil {
		return err
	}
	return o.Forces.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates formats and engine.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "scale must be positive, got %v", o.Scale)
	}
	return ValidateEngine(o.Engine)
}

// SimConfig returns the simulation settings with the canvas and seed taken
// from the top-level options.
func (o *Options) SimConfig() sim.Config {
	c := sim.DefaultConfig()
	if o.Sim != nil {
		c = *o.Sim
	}
	c.Width, c.Height, c.Seed = o.Width, o.Height, o.Seed
	return c
}

// ForceConfig returns the force settings.
func (o *Options) ForceConfig() force.Config {
	if o.Forces == nil {
		return force.DefaultConfig()
	}
	return *o.Forces
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		MaxTicks: o.MaxTicks,
		Seed:     o.Seed,
		Sim:      o.SimConfig(),
		Forces:   o.ForceConfig(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		k.Engine = o.Engine
		k.Labels = o.Labels
		k.Title = o.Title
		k.Hover = o.Hover && format == FormatSVG
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// String summarizes the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("%gx%g ticks=%d seed=%d formats=%v", o.Width, o.Height, o.MaxTicks, o.Seed, o.Formats)
}
