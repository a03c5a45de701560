package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

const (
	layoutSuffix = ".layout.json"

	// progressEvery is how often, in ticks, the spinner shows progress.
	progressEvery = 25
)

// renderFlags holds the render command's flags. Only flags the user sets
// override the config file.
type renderFlags struct {
	layoutFlags
	output     string
	formats    string
	engine     string
	labels     bool
	hover      bool
	scale      float64
	title      string
	noCache    bool
	fromLayout bool
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [graph.json | graph.layout.json]",
		Short: "Render a graph or a saved layout",
		Long: `Render a graph to SVG, PNG, PDF, DOT or layout JSON.

A graph input is settled first (using the layout cache). A layout file written
by 'forcegraph layout' is rendered as is; files ending in .layout.json are
recognized automatically, others need --from-layout.

PNG and PDF output require rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(cmd, &f)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, &f)
		},
	}

	f.register(cmd)

	return cmd
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVar(&f.engine, "engine", pipeline.EngineNative, "SVG engine: native, graphviz")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "draw node labels")
	cmd.Flags().BoolVar(&f.hover, "hover", false, "embed the hover highlight script (svg only)")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().StringVar(&f.title, "title", "", "document title")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.fromLayout, "from-layout", false, "treat the input as a layout file")
	f.layoutFlags.register(cmd)
}

// renderOptions merges config-file settings with explicitly set flags.
func (c *CLI) renderOptions(cmd *cobra.Command, f *renderFlags) (pipeline.Options, error) {
	opts := c.Config.Options()
	f.layoutFlags.apply(cmd, &opts)

	set := cmd.Flags().Changed
	if set("format") {
		opts.Formats = parseFormats(f.formats)
		if err := validateFormats(opts.Formats); err != nil {
			return opts, err
		}
	}
	if set("engine") {
		opts.Engine = f.engine
	}
	if set("labels") {
		opts.Labels = f.labels
	}
	if set("hover") {
		opts.Hover = f.hover
	}
	if set("scale") {
		opts.Scale = f.scale
	}
	opts.Title = f.title
	if f.output != "" && !set("format") {
		// -o graph.png implies --format png.
		if ext := strings.TrimPrefix(filepath.Ext(f.output), "."); pipeline.ValidFormats[ext] {
			opts.Formats = []string{ext}
		}
	}

	if !render.Available() {
		opts.Formats = dropRasterFormats(opts.Formats)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	opts.Logger = c.Logger
	return opts, nil
}

// dropRasterFormats removes png and pdf, warning about each.
func dropRasterFormats(formats []string) []string {
	kept := formats[:0:0]
	for _, f := range formats {
		if f == pipeline.FormatPNG || f == pipeline.FormatPDF {
			printWarning("skipping %s: rsvg-convert not found", f)
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		kept = []string{pipeline.FormatSVG}
	}
	return kept
}

// runRender lays out (or loads) the input, renders every format and writes
// the artifacts next to it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, f *renderFlags) error {
	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	opts.OnFrame = settleProgress(spinner, filepath.Base(input))

	var (
		artifacts    map[string][]byte
		nodes, links int
		ticks        int
		cached       bool
	)
	if f.fromLayout || strings.HasSuffix(input, layoutSuffix) {
		l, err := graph.ReadLayoutFile(input)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("load layout %s: %w", input, err)
		}
		if artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, opts); err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		nodes, links, ticks = len(l.Nodes), len(l.Links), l.Ticks
	} else {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("load graph %s: %w", input, err)
		}
		result, err := runner.Execute(ctx, g, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		artifacts = result.Artifacts
		nodes, links, ticks = result.Stats.NodeCount, result.Stats.LinkCount, result.Stats.Ticks
		cached = result.CacheInfo.LayoutHit
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, input, f.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(input))
	for _, p := range paths {
		printFile(p)
	}
	printStats(nodes, links, ticks, cached)
	return nil
}

// writeArtifacts writes each format to its output path and returns the
// paths in format order. A path that would overwrite the input is skipped.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(input, output, format, len(formats))
		if filepath.Clean(path) == filepath.Clean(input) {
			printWarning("not overwriting input %s", input)
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath names the output for format. With a single format, output
// is used as given. Otherwise output (or the input) is a base path and the
// format decides the extension.
func artifactPath(input, output, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	base := output
	if base == "" {
		base = input
	}
	if strings.HasSuffix(base, layoutSuffix) {
		base = strings.TrimSuffix(base, layoutSuffix)
	} else {
		base = outputBase(base)
	}
	if format == pipeline.FormatJSON {
		return base + layoutSuffix
	}
	return base + "." + format
}

// settleProgress reports the simulation's progress on the spinner every
// progressEvery ticks.
func settleProgress(s *Spinner, name string) func(sim.Frame) {
	return func(f sim.Frame) {
		if f.Tick%progressEvery == 0 {
			s.SetMessage(fmt.Sprintf("Settling %s (tick %d, alpha %.3f)...", name, f.Tick, f.Alpha))
		}
	}
}
