package ops

import (
	"math"

	"github.com/samcharles93/tiler/internal/tensor"
)

func scanSpecs() []*Spec {
	return []*Spec{
		{
			Name:   "cummin",
			Kind:   Scan,
			Arity:  1,
			Doc:    "running minimum along attrs.dim with the index of each minimum",
			DTypes: numeric,
			Scan: ScanFuncs{
				Float: cumulative(func(cur, x float64) bool { return x <= cur || math.IsNaN(x) }),
				Int:   cumulative(func(cur, x int64) bool { return x <= cur }),
				Uint:  cumulative(func(cur, x uint64) bool { return x <= cur }),
			},
		},
		{
			Name:   "cummax",
			Kind:   Scan,
			Arity:  1,
			Doc:    "running maximum along attrs.dim with the index of each maximum",
			DTypes: numeric,
			Scan: ScanFuncs{
				Float: cumulative(func(cur, x float64) bool { return x >= cur || math.IsNaN(x) }),
				Int:   cumulative(func(cur, x int64) bool { return x >= cur }),
				Uint:  cumulative(func(cur, x uint64) bool { return x >= cur }),
			},
		},
	}
}

// cumulative builds a scan that replaces the running value whenever take
// accepts the next element. Ties move the index forward; a NaN, once
// taken, sticks until the next NaN.
func cumulative[L tensor.Lane](take func(cur, x L) bool) func([]L, []int64, int64, int64, int64) {
	return func(vals []L, idx []int64, outer, depth, inner int64) {
		if depth == 0 {
			return
		}
		for o := range outer {
			for in := range inner {
				base := o*depth*inner + in
				cur, best := vals[base], int64(0)
				idx[base] = 0
				for d := int64(1); d < depth; d++ {
					p := base + d*inner
					if take(cur, vals[p]) {
						cur, best = vals[p], d
					}
					vals[p] = cur
					idx[p] = best
				}
			}
		}
	}
}

// ScanLayout splits a row-major shape around axis dim into the outer,
// depth and inner extents a ScanFuncs entry expects.
func ScanLayout(dims []int64, dim int) (outer, depth, inner int64) {
	outer, depth, inner = 1, 1, 1
	for i, d := range dims {
		switch {
		case i < dim:
			outer *= d
		case i == dim:
			depth = d
		default:
			inner *= d
		}
	}
	return outer, depth, inner
}
