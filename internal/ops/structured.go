package ops

import (
	"github.com/samcharles93/tiler/internal/dtype"
)

func structuredSpecs() []*Spec {
	return []*Spec{
		{
			Name:       "transpose",
			Kind:       Permutation,
			Arity:      1,
			Doc:        "y = x with axes reordered by attrs.perm",
			DTypes:     equatable,
			WorkingSet: wsTranspose,
			AllowEmpty: true,
			Funcs: Funcs{
				Float: identity[float64],
				Int:   identity[int64],
				Uint:  identity[uint64],
			},
		},
		{
			Name:  "lin_space",
			Kind:  Generator,
			Arity: 0,
			Doc:   "y[i] = start + i*(stop-start)/(num-1) for i in [0, num)",
			DTypes: []dtype.DType{
				dtype.Float16, dtype.BFloat16, dtype.Float32,
				dtype.Int8, dtype.Uint8, dtype.Int16, dtype.Int32,
			},
			Output: AttrDType,
			// one output tile plus the index ramp
			WorkingSet: dtype.Uniform(2),
			AllowEmpty: true,
			Funcs: Funcs{
				Float: linSpace,
				Int: func(t Tile, dst []int64, _ [][]int64) {
					ramp := make([]float64, len(dst))
					linSpace(t, ramp, nil)
					for i, v := range ramp {
						dst[i] = int64(v)
					}
				},
				Uint: func(t Tile, dst []uint64, _ [][]uint64) {
					ramp := make([]float64, len(dst))
					linSpace(t, ramp, nil)
					for i, v := range ramp {
						dst[i] = uint64(max(v, 0))
					}
				},
			},
		},
	}
}

func linSpace(t Tile, dst []float64, _ [][]float64) {
	a := t.Attrs
	var step float64
	if a.Num > 1 {
		step = (a.Stop - a.Start) / float64(a.Num-1)
	}
	for i := range dst {
		idx := t.Index + int64(i)
		if a.Num > 1 && idx == a.Num-1 {
			dst[i] = a.Stop
			continue
		}
		dst[i] = a.Start + float64(idx)*step
	}
}
