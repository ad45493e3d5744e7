// Package kernel runs a partition plan: one goroutine per unit, each
// streaming its slice of the tensor through a staging buffer tile by tile.
package kernel

import (
	"github.com/samcharles93/tiler/internal/tiling"
)

// Kernel is the per-unit side of an operator. Each unit gets its own
// instance, so implementations need no locking.
//
// progress is the unit-local element index of the tile's first element;
// n is the tile length, never zero.
type Kernel interface {
	// Init receives the unit's range before the first tile.
	Init(r tiling.UnitRange, tileElems int)
	CopyIn(progress int64, n int)
	Compute(progress int64, n int)
	CopyOut(progress int64, n int)
}

// Factory builds the kernel for unit id.
type Factory func(unit int) Kernel

// RunUnit drives one unit's tile loop and returns the number of tiles
// processed. The final tile is the unit's tail; tiles are clipped to the
// unit's valid range so padding past the tensor end is never visited.
//
// The plan is trusted. A zero tile size or an out-of-range unit is a
// planner defect and panics.
func RunUnit(p *tiling.Plan, unit int, k Kernel) int64 {
	if p.TileElements <= 0 {
		panic("kernel: plan has zero tile size")
	}
	r := p.Unit(unit)
	k.Init(r, p.TileElements)

	var done int64
	for i := range r.Tiles {
		progress, n := r.Tile(i, p.TileElements)
		if n == 0 {
			break
		}
		k.CopyIn(progress, n)
		k.Compute(progress, n)
		k.CopyOut(progress, n)
		done++
	}
	return done
}
