package sim

import (
	"context"
	"time"

	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Run ticks once per value received from frames until ctx is cancelled or
// frames is closed. The engine is invalidated when Run returns. Frames that
// arrive while the engine is stopped are skipped; a later Reheat resumes
// ticking.
func (e *Engine) Run(ctx context.Context, frames <-chan time.Time) error {
	defer e.Invalidate()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			if e.state != Running {
				continue
			}
			if _, err := e.Tick(); err != nil {
				return err
			}
		}
	}
}

// Settle ticks until alpha drops below Config.AlphaMin, maxTicks ticks have
// run (when maxTicks > 0) or ctx is done. It returns the number of ticks run.
// The engine is left Running.
func (e *Engine) Settle(ctx context.Context, maxTicks int) (int, error) {
	start := time.Now()
	observability.Simulation().OnLayoutStart(ctx, e.g.NodeCount(), e.g.LinkCount())

	n, err := e.settle(ctx, maxTicks)
	observability.Simulation().OnLayoutComplete(ctx, n, time.Since(start), err)
	return n, err
}

func (e *Engine) settle(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for maxTicks <= 0 || n < maxTicks {
		if e.alpha < e.cfg.AlphaMin && e.alphaTarget < e.cfg.AlphaMin {
			return n, nil
		}
		if n%32 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if _, err := e.Tick(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
