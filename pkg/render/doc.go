// Package render turns layouts into pictures.
//
// # Overview
//
// A [Scene] is the renderer-neutral view of one simulation frame: positioned
// nodes with their category colour and emphasis, and link segments with the
// stroke a renderer should use. Scenes are built from a [graph.Layout] and an
// optional [interact.Highlighter], so the same code serves static exports,
// the terminal viewer and the HTTP server.
//
// # Formats
//
//   - [RenderSVG]: standalone SVG, optionally with labels and an embedded
//     hover script that reproduces the live highlight behaviour
//   - [ToDOT] and [RenderGraphvizSVG]: Graphviz DOT with every node pinned at
//     its simulated position, rendered by the neato engine
//   - [ToPNG] and [ToPDF]: conversions of any SVG via rsvg-convert
//
//	scene := render.NewScene(layout, render.NewPalette(), nil)
//	svg := render.RenderSVG(scene, render.WithLabels(), render.WithHover())
//	png, err := render.ToPNG(svg, 2.0)
//
// [graph.Layout]: github.com/matzehuels/forcegraph/pkg/graph.Layout
// [interact.Highlighter]: github.com/matzehuels/forcegraph/pkg/interact.Highlighter
package render
