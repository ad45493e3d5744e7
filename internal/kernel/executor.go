package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/tiler/internal/logger"
	"github.com/samcharles93/tiler/internal/tiling"
)

// ErrUnitPanic wraps a panic raised inside a unit's kernel.
var ErrUnitPanic = errors.New("unit panicked")

// UnitStats records what one unit did.
type UnitStats struct {
	Unit     int           `json:"unit"`
	Offset   int64         `json:"offset"`
	Elements int64         `json:"elements"`
	Tiles    int64         `json:"tiles"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Stats summarises one Run.
type Stats struct {
	Units   []UnitStats   `json:"units"`
	Tiles   int64         `json:"tiles"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Executor fans a plan's units out over goroutines.
type Executor struct {
	// Workers caps concurrently running units. Zero runs every unit at once.
	Workers int
	Log     logger.Logger
}

// Run executes every unit of p with a kernel from factory and waits for all
// of them. Units share nothing, so the only failures are a cancelled
// context and a panicking kernel; either fails the whole run and no partial
// result is reported.
func (e *Executor) Run(ctx context.Context, p *tiling.Plan, factory Factory) (*Stats, error) {
	log := logger.OrDiscard(e.Log)
	workers := e.Workers
	if workers <= 0 {
		workers = p.UnitCount
	}

	stats := &Stats{Units: make([]UnitStats, p.UnitCount)}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for u := range p.UnitCount {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			tiles, err := safeRunUnit(p, u, factory)
			if err != nil {
				return err
			}
			r := p.Unit(u)
			stats.Units[u] = UnitStats{
				Unit:     u,
				Offset:   r.Offset,
				Elements: r.Valid,
				Tiles:    tiles,
				Elapsed:  time.Since(t0),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, us := range stats.Units {
		stats.Tiles += us.Tiles
	}
	stats.Elapsed = time.Since(start)
	log.Debug("plan executed",
		"units", p.UnitCount,
		"workers", workers,
		"tiles", stats.Tiles,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

func safeRunUnit(p *tiling.Plan, unit int, factory Factory) (tiles int64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: unit %d: %v", ErrUnitPanic, unit, rec)
		}
	}()
	return RunUnit(p, unit, factory(unit)), nil
}
