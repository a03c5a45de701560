package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// layoutResult is the outcome of laying out one input file.
type layoutResult struct {
	input  string
	output string
	nodes  int
	links  int
	ticks  int
	cached bool
}

// layoutCommand creates the layout command for settling graphs into layout files.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		jobs    int
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json...]",
		Short: "Settle graphs and write their layouts",
		Long: `Settle one or more graphs with the force simulation and write each
layout to <input>.layout.json. The layout file records node positions and link
segments and can be rendered with 'forcegraph render'.

Several inputs are laid out concurrently. Results are cached locally, keyed by
the graph content and the simulation settings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output requires a single input, got %d", len(args))
			}
			opts := c.Config.Options()
			flags.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), args, opts, output, noCache, jobs)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "graphs to lay out concurrently")
	flags.register(cmd)

	return cmd
}

// runLayout lays out every input, at most jobs at a time, and reports the
// results in input order.
func (c *CLI) runLayout(ctx context.Context, inputs []string, opts pipeline.Options, output string, noCache bool, jobs int) error {
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Settling %d graph(s)...", len(inputs)))
	spinner.Start()
	prog := newProgress(c.Logger)

	results := make([]layoutResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, input := range inputs {
		g.Go(func() error {
			dst := output
			if dst == "" {
				dst = outputBase(input) + ".layout.json"
			}
			res, err := layoutFile(gctx, runner, input, dst, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("laid out graphs", "count", len(inputs))

	printSuccess("Layout complete")
	for _, r := range results {
		printFile(r.output)
		printStats(r.nodes, r.links, r.ticks, r.cached)
	}
	printNewline()
	printNextStep("Render", appName+" render "+results[0].output)
	return nil
}

// layoutFile settles the graph in input and writes its layout to output.
func layoutFile(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) (layoutResult, error) {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return layoutResult{}, fmt.Errorf("load graph %s: %w", input, err)
	}
	layout, cached, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return layoutResult{}, fmt.Errorf("layout %s: %w", input, err)
	}
	if err := graph.WriteLayoutFile(layout, output); err != nil {
		return layoutResult{}, fmt.Errorf("write output %s: %w", output, err)
	}
	return layoutResult{
		input:  input,
		output: output,
		nodes:  g.NodeCount(),
		links:  g.LinkCount(),
		ticks:  layout.Ticks,
		cached: cached,
	}, nil
}
