package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// Render generates output artifacts in the requested formats. The SVG is
// drawn once and shared by the svg, png and pdf outputs.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	scene := render.NewScene(l, nil, nil)

	var svg []byte
	svgFor := func(hover bool) ([]byte, error) {
		if opts.Engine == EngineGraphviz {
			if svg == nil {
				var err error
				if svg, err = render.RenderGraphvizSVG(ctx, render.ToDOT(scene)); err != nil {
					return nil, err
				}
			}
			return svg, nil
		}
		return render.RenderSVG(scene, buildSVGOptions(opts, hover)...), nil
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = svgFor(opts.Hover)
		case FormatPNG:
			if data, err = svgFor(false); err == nil {
				data, err = render.ToPNG(data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgFor(false); err == nil {
				data, err = render.ToPDF(data)
			}
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatDOT:
			data = []byte(render.ToDOT(scene))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds native SVG options. Rasterized outputs never carry
// the hover script.
func buildSVGOptions(opts Options, hover bool) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.Labels {
		svgOpts = append(svgOpts, render.WithLabels())
	}
	if hover {
		svgOpts = append(svgOpts, render.WithHover())
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.Title))
	}
	return svgOpts
}

// RenderFromLayoutData renders output from serialized layout data.
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return Render(ctx, l, opts)
}
