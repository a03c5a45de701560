// Package pkg provides the core libraries for forcegraph force-directed
// layouts.
//
// # Overview
//
// forcegraph places the nodes of a node-link graph by simulating forces
// between them: links act as springs, nodes repel each other, discs do not
// overlap and the whole drawing is pulled towards the canvas centre. The
// simulation cools over a few hundred ticks until the layout settles, and
// can be warmed up again when a user drags a node.
//
// # Architecture
//
// The typical data flow:
//
//	graph JSON (nodes + links)
//	         ↓
//	    [graph] package (load, validate, index)
//	         ↓
//	    [sim] package with [force] forces (tick until settled)
//	         ↓
//	    [render] package (scene, SVG, DOT, PNG/PDF)
//
// Live layouts add [interact] (drag and hover) on top of a running
// simulation, and [session] keeps such simulations alive between HTTP
// requests.
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("miserables.json")
//
//	cfg := sim.DefaultConfig()
//	engine, _ := sim.New(g, force.NewDefaultRegistry(force.DefaultConfig(), cfg.Width, cfg.Height), cfg)
//	engine.Settle(ctx, 300)
//
//	svg := render.RenderSVG(render.NewScene(engine.Layout(), nil, nil), render.WithLabels())
//
// Or through the cached pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"svg", "json"}})
//
// # Main Packages
//
// ## Domain
//
//   - [graph]: nodes, links, pinning and the JSON document formats
//   - [quadtree]: Barnes–Hut spatial index used by the many-body and collide forces
//   - [force]: link, many-body, collide and center forces
//   - [sim]: the tick loop, alpha cooling and settling
//   - [interact]: drag and hover controllers and their event queue
//   - [render]: scenes, palettes and the SVG, DOT, PNG and PDF outputs
//
// ## Infrastructure
//
//   - [pipeline]: layout and render with caching
//   - [cache]: file, Redis and null caches
//   - [session]: live simulations with expiry
//   - [config]: TOML and YAML configuration files
//   - [observability]: hooks for metrics and tracing
//   - [errors]: coded errors shared by every package
//   - [buildinfo]: version information set at build time
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/graph
// [quadtree]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/quadtree
// [force]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/force
// [sim]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/sim
// [interact]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/interact
// [render]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/buildinfo
package pkg
