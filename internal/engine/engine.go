// Package engine resolves an operator call against concrete tensors, plans
// it for a platform and runs the plan.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/tiler/internal/kernel"
	"github.com/samcharles93/tiler/internal/logger"
	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/platform"
	"github.com/samcharles93/tiler/internal/tensor"
	"github.com/samcharles93/tiler/internal/tiling"
)

// Call is one operator invocation.
type Call struct {
	Op     string
	Inputs []*tensor.Tensor
	Attrs  *ops.Attrs
}

// Result holds the outputs of an invocation. Plan and Stats are nil for
// scans, which run on the host without a tiling plan.
type Result struct {
	Outputs   []*tensor.Tensor
	Signature *ops.Signature
	Plan      *tiling.Plan
	Stats     *kernel.Stats
	Elapsed   time.Duration
}

// Engine ties the planner, executor and platform together. A zero Engine
// plans with the default config on the host.
type Engine struct {
	Planner  *tiling.Planner
	Executor *kernel.Executor
	Platform platform.Query
	Log      logger.Logger
}

// New returns an engine for plat.
func New(plat platform.Query, cfg tiling.Config, log logger.Logger) *Engine {
	log = logger.OrDiscard(log)
	return &Engine{
		Planner:  tiling.NewPlanner(cfg, log),
		Executor: &kernel.Executor{Log: log},
		Platform: plat,
		Log:      log,
	}
}

func (e *Engine) planner() *tiling.Planner {
	if e.Planner == nil {
		return tiling.Default()
	}
	return e.Planner
}

func (e *Engine) platform() platform.Query {
	if e.Platform == nil {
		return platform.Host()
	}
	return e.Platform
}

func (e *Engine) executor() *kernel.Executor {
	if e.Executor == nil {
		return &kernel.Executor{Log: e.Log}
	}
	return e.Executor
}

// Resolve looks up c.Op and infers its output signature.
func (e *Engine) Resolve(c Call) (*ops.Signature, error) {
	spec, err := ops.Lookup(c.Op)
	if err != nil {
		return nil, err
	}
	return spec.Resolve(c.Inputs, c.Attrs)
}

// PlanOnly resolves c and returns its plan without running it.
func (e *Engine) PlanOnly(c Call) (*tiling.Plan, *ops.Signature, error) {
	sig, err := e.Resolve(c)
	if err != nil {
		return nil, nil, err
	}
	if sig.Op.Kind == ops.Scan {
		return nil, sig, fmt.Errorf("%s: %w: scans run on the host and have no plan", c.Op, tiling.ErrUnsupportedShape)
	}
	p, err := e.plan(sig)
	if err != nil {
		return nil, sig, fmt.Errorf("%s: %w", c.Op, err)
	}
	return p, sig, nil
}

func (e *Engine) plan(sig *ops.Signature) (*tiling.Plan, error) {
	plat := e.platform()
	return e.planner().Plan(sig.Request(plat.AvailableUnits(), plat.BufferCapacityBytes()))
}

// Invoke runs c to completion.
func (e *Engine) Invoke(ctx context.Context, c Call) (*Result, error) {
	log := logger.OrDiscard(e.Log)
	start := time.Now()

	sig, err := e.Resolve(c)
	if err != nil {
		return nil, err
	}

	if sig.Op.Kind == ops.Scan {
		in := c.Inputs[0]
		if in.Len() == 0 && !sig.Op.AllowEmpty {
			return nil, fmt.Errorf("%s: %w: empty input", c.Op, tiling.ErrUnsupportedShape)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, idx, err := sig.RunScan(in, c.Attrs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Op, err)
		}
		res := &Result{Outputs: []*tensor.Tensor{vals, idx}, Signature: sig, Elapsed: time.Since(start)}
		log.Info("op invoked", "op", c.Op, "shape", sig.Shape, "dtype", sig.Out, "elapsed", res.Elapsed)
		return res, nil
	}

	p, err := e.plan(sig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Op, err)
	}
	out, err := tensor.New(sig.Out, sig.Shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Op, err)
	}
	stats, err := e.executor().Run(ctx, p, sig.Factory(out, c.Inputs, c.Attrs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Op, err)
	}

	res := &Result{
		Outputs:   []*tensor.Tensor{out},
		Signature: sig,
		Plan:      p,
		Stats:     stats,
		Elapsed:   time.Since(start),
	}
	log.Info("op invoked",
		"op", c.Op,
		"shape", sig.Shape,
		"dtype", sig.Out,
		"units", p.UnitCount,
		"tile", p.TileElements,
		"tiles", stats.Tiles,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
