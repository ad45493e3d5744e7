package tiling

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRequests(n int) []Request {
	rng := rand.New(rand.NewPCG(7, 1009))
	widths := []int{1, 2, 4, 8}
	out := make([]Request, n)
	for i := range out {
		out[i] = Request{
			TotalElements: rng.Int64N(1<<22) + 1,
			ElementBytes:  widths[rng.IntN(len(widths))],
			Units:         rng.IntN(64) + 1,
			BufferBytes:   int64(rng.IntN(256*1024)) + 513,
			Buffering:     rng.IntN(3),
			WorkingSet:    rng.IntN(25) + 1,
		}
	}
	return out
}

func TestPlanProperties(t *testing.T) {
	t.Parallel()

	pl := Default()
	block := int64(pl.Config().BlockBytes)

	for _, req := range randomRequests(2000) {
		p, err := pl.Plan(req)
		require.NoError(t, err, "request %+v", req)
		require.NoError(t, p.Validate(), "request %+v", req)

		blockElems := block / int64(req.ElementBytes)

		var sum, lo, hi int64
		lo = p.Elements[0]
		for u := range p.UnitCount {
			e := p.Elements[u]
			sum += e
			lo = min(lo, e)
			hi = max(hi, e)

			assert.GreaterOrEqual(t, p.Tiles[u], int64(1), "unit %d of %+v", u, req)
			want := e - int64(p.TileElements)*(p.Tiles[u]-1)
			if want <= 0 {
				want = int64(p.TileElements)
			}
			assert.Equal(t, want, p.Tails[u], "tail of unit %d for %+v", u, req)
			assert.LessOrEqual(t, p.Tails[u], int64(p.TileElements))
		}

		assert.Equal(t, req.TotalElements, sum-p.Padding, "coverage for %+v", req)
		assert.Less(t, p.Padding, blockElems, "padding exceeds a block for %+v", req)
		assert.LessOrEqual(t, hi-lo, blockElems, "balance for %+v", req)
		assert.GreaterOrEqual(t, p.TileElements, 1)
		assert.LessOrEqual(t, p.UnitCount, min(req.Units, DefaultMaxUnits))
		assert.LessOrEqual(t, int64(p.UnitCount), p.TotalBlocks)

		// The tile never overflows the usable buffer unless clamped to one block.
		if p.BlocksPerTile > 1 {
			buffering := int64(req.Buffering)
			if buffering <= 0 {
				buffering = DefaultBufferingRate
			}
			used := int64(p.TileElements) * int64(req.ElementBytes) * buffering * int64(req.WorkingSet)
			assert.LessOrEqual(t, used, req.BufferBytes-DefaultReservedBytes, "overflow for %+v", req)
		}
	}
}

func TestPlanIdempotent(t *testing.T) {
	t.Parallel()

	pl := Default()
	for _, req := range randomRequests(200) {
		a, err := pl.Plan(req)
		require.NoError(t, err)
		b, err := pl.Plan(req)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestUnitRangesContiguous(t *testing.T) {
	t.Parallel()

	for _, req := range randomRequests(300) {
		p, err := Default().Plan(req)
		require.NoError(t, err)

		var next, valid int64
		for _, r := range p.Units() {
			require.Equal(t, next, r.Offset, "gap before unit %d in %+v", r.Unit, req)
			next += r.Elements
			valid += r.Valid

			var covered int64
			for i := range r.Tiles {
				start, n := r.Tile(i, p.TileElements)
				require.Equal(t, covered, start)
				covered += int64(n)
			}
			require.Equal(t, r.Valid, covered, "tiles of unit %d in %+v", r.Unit, req)
		}
		require.Equal(t, req.TotalElements+p.Padding, next)
		require.Equal(t, req.TotalElements, valid)
	}
}
