// Package tiling computes the static work partition for one operator
// invocation: how many parallel units run, which contiguous slice of the
// flat tensor each unit owns, and how each slice is cut into tiles that fit
// the unit's staging buffer.
//
// The tensor is measured in blocks of Config.BlockBytes. Blocks are divided
// as evenly as possible across units; the remainder goes one block each to
// the lowest-numbered units ("big" units). A tile is the largest whole
// number of blocks for which Buffering*WorkingSet copies fit the usable
// buffer.
package tiling

import (
	"math"

	"github.com/samcharles93/tiler/internal/logger"
)

// Planner computes plans. The zero value is not usable; use NewPlanner.
type Planner struct {
	cfg Config
	log logger.Logger
}

func NewPlanner(cfg Config, log logger.Logger) *Planner {
	return &Planner{cfg: cfg.withDefaults(), log: logger.OrDiscard(log)}
}

// Default returns a planner using DefaultConfig and a discarding logger.
func Default() *Planner {
	return NewPlanner(DefaultConfig(), nil)
}

// Config returns the planner's effective configuration.
func (p *Planner) Config() Config { return p.cfg }

// Plan computes the partition for req. It has no side effects other than
// debug logging, so identical requests produce identical plans.
func (p *Planner) Plan(req Request) (*Plan, error) {
	cfg := p.cfg
	block := int64(cfg.BlockBytes)

	if req.Units <= 0 {
		return nil, planErr(ErrInvalidPlatformInfo, "units", "platform reports %d units", req.Units)
	}
	usable := req.BufferBytes - cfg.ReservedBytes
	if usable <= 0 {
		return nil, planErr(ErrInvalidPlatformInfo, "buffer_bytes",
			"%d bytes leave nothing after the %d byte reserve", req.BufferBytes, cfg.ReservedBytes)
	}
	eb := req.ElementBytes
	if eb < 1 || cfg.BlockBytes%eb != 0 {
		return nil, planErr(ErrUnsupportedDtype, "element_bytes",
			"element width %d does not divide the %d byte block", eb, cfg.BlockBytes)
	}
	if req.WorkingSet <= 0 {
		return nil, planErr(ErrUnsupportedDtype, "working_set",
			"no working-set multiplier for %d byte elements", eb)
	}
	if req.TotalElements < 0 {
		return nil, planErr(ErrUnsupportedShape, "total_elements", "negative element count %d", req.TotalElements)
	}
	if req.TotalElements > (math.MaxInt64-block)/int64(eb) {
		return nil, planErr(ErrUnsupportedShape, "total_elements",
			"%d elements of %d bytes overflow the byte count", req.TotalElements, eb)
	}
	buffering := req.Buffering
	if buffering <= 0 {
		buffering = cfg.DefaultBuffering
	}
	units := req.Units
	if units > cfg.MaxUnits {
		p.log.Debug("clamping unit count", "requested", units, "max", cfg.MaxUnits)
		units = cfg.MaxUnits
	}

	blocksPerTile := usable / int64(buffering) / block / int64(req.WorkingSet)
	if blocksPerTile < 1 {
		blocksPerTile = 1
	}
	tileElems := blocksPerTile * block / int64(eb)
	if tileElems < 1 {
		tileElems = 1
	}

	if req.TotalElements == 0 {
		if !req.AllowEmpty {
			return nil, planErr(ErrUnsupportedShape, "total_elements", "empty input is not accepted")
		}
		return emptyPlan(eb, int(blocksPerTile), tileElems), nil
	}

	totalBlocks := ceilDiv(req.TotalElements*int64(eb), block)
	unitCount := int64(units)
	if totalBlocks < unitCount {
		unitCount = totalBlocks
	}
	unitCount = max(unitCount, 1)

	base := totalBlocks / unitCount
	bigUnits := totalBlocks % unitCount

	small := profile(base, blocksPerTile, tileElems, block, eb)
	big := profile(base+1, blocksPerTile, tileElems, block, eb)

	plan := &Plan{
		TotalElements: req.TotalElements,
		ElementBytes:  eb,
		UnitCount:     int(unitCount),
		TileElements:  int(tileElems),
		BlocksPerTile: int(blocksPerTile),
		TotalBlocks:   totalBlocks,
		BigUnits:      int(bigUnits),
		Small:         small,
		Big:           big,
		Elements:      make([]int64, unitCount),
		Tiles:         make([]int64, unitCount),
		Tails:         make([]int64, unitCount),
	}
	var assigned int64
	for u := range int(unitCount) {
		row := small
		if u < int(bigUnits) {
			row = big
		}
		plan.Elements[u] = row.Elements
		plan.Tiles[u] = row.Tiles
		plan.Tails[u] = row.Tail
		assigned += row.Elements
	}
	plan.Padding = assigned - req.TotalElements

	p.log.Debug("plan computed",
		"elements", plan.TotalElements,
		"element_bytes", eb,
		"units", plan.UnitCount,
		"big_units", plan.BigUnits,
		"tile", plan.TileElements,
		"padding", plan.Padding,
	)
	return plan, nil
}

// profile derives one unit class from its block count. The tail is the
// remainder after whole tiles, or a full tile when there is no remainder.
func profile(blocks, blocksPerTile, tileElems, block int64, eb int) UnitProfile {
	elems := blocks * block / int64(eb)
	tail := elems - tileElems*(elems/tileElems)
	if tail == 0 {
		tail = tileElems
	}
	return UnitProfile{
		Blocks:   blocks,
		Elements: elems,
		Tiles:    ceilDiv(blocks, blocksPerTile),
		Tail:     tail,
	}
}

func emptyPlan(eb, blocksPerTile int, tileElems int64) *Plan {
	row := UnitProfile{Tail: tileElems}
	return &Plan{
		ElementBytes:  eb,
		UnitCount:     1,
		TileElements:  int(tileElems),
		BlocksPerTile: blocksPerTile,
		Small:         row,
		Big:           row,
		Elements:      []int64{0},
		Tiles:         []int64{0},
		Tails:         []int64{tileElems},
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
