package pipeline

import (
	"context"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// GenerateLayout runs a simulation on g until it cools down or MaxTicks ticks
// have run and returns the settled positions. g is positioned in place.
func GenerateLayout(ctx context.Context, g *graph.Graph, opts Options) (graph.Layout, int, error) {
	opts.SetLayoutDefaults()
	cfg := opts.SimConfig()

	forces := force.NewDefaultRegistry(opts.ForceConfig(), cfg.Width, cfg.Height)
	engine, err := sim.New(g, forces, cfg)
	if err != nil {
		return graph.Layout{}, 0, err
	}
	defer engine.Invalidate()
	if opts.OnFrame != nil {
		engine.OnFrame(opts.OnFrame)
	}

	ticks, err := engine.Settle(ctx, opts.MaxTicks)
	if err != nil {
		return graph.Layout{}, ticks, err
	}

	opts.Logger.Debug("simulation settled",
		"ticks", ticks,
		"alpha", engine.Alpha())

	return engine.Layout(), ticks, nil
}
