package ops

import (
	"math"

	"github.com/samcharles93/tiler/internal/dtype"
)

func binarySpecs() []*Spec {
	return []*Spec{
		{
			Name:       "floor_div",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = floor(x / y); integer division by zero yields 0",
			DTypes:     numeric,
			SameDType:  true,
			WorkingSet: wsElementwise,
			Funcs: Funcs{
				Float: mapBinary(floorDivFloat),
				Int:   mapBinary(floorDivInt),
				Uint:  mapBinary(floorDivUint),
			},
		},
		{
			Name:       "sub",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = x - y",
			DTypes:     numeric,
			WorkingSet: wsElementwise,
			Funcs: Funcs{
				Float: mapBinary(func(x, y float64) float64 { return x - y }),
				Int:   mapBinary(func(x, y int64) int64 { return x - y }),
				Uint:  mapBinary(func(x, y uint64) uint64 { return x - y }),
			},
		},
		{
			Name:       "mul",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = x * y",
			DTypes:     numeric,
			WorkingSet: wsElementwise,
			Funcs: Funcs{
				Float: mapBinary(func(x, y float64) float64 { return x * y }),
				Int:   mapBinary(func(x, y int64) int64 { return x * y }),
				Uint:  mapBinary(func(x, y uint64) uint64 { return x * y }),
			},
		},
		{
			Name:       "div",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = x / y; integers truncate and division by zero yields 0",
			DTypes:     concat(halfFloats, []dtype.DType{dtype.Int32}),
			SameDType:  true,
			WorkingSet: wsElementwise,
			Funcs: Funcs{
				Float: mapBinary(func(x, y float64) float64 { return x / y }),
				Int: mapBinary(func(x, y int64) int64 {
					if y == 0 {
						return 0
					}
					return x / y
				}),
			},
		},
		{
			Name:       "not_equal",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = x != y as a bool mask",
			DTypes:     equatable,
			SameDType:  true,
			Output:     BoolOutput,
			WorkingSet: wsElementwise,
			Funcs: Funcs{
				Float: mapBinary(func(x, y float64) float64 { return boolLane[float64](x != y) }),
				Int:   mapBinary(func(x, y int64) int64 { return boolLane[int64](x != y) }),
				Uint:  mapBinary(func(x, y uint64) uint64 { return boolLane[uint64](x != y) }),
			},
		},
		{
			Name:       "pow",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = x ** y for same-dtype inputs",
			DTypes:     arithmetic,
			SameDType:  true,
			WorkingSet: wsPow,
			Funcs: Funcs{
				Float: mapBinary(math.Pow),
				Int:   mapBinary(powInt),
				Uint:  mapBinary(powUint),
			},
		},
		{
			Name:            "power",
			Kind:            Elementwise,
			Arity:           2,
			Doc:             "z = x ** y with the result dtype promoted from the input pair",
			DTypes:          arithmetic,
			WorkingSet:      wsPower,
			MinElementBytes: 2,
			Funcs: Funcs{
				Float: mapBinary(math.Pow),
				Int:   mapBinary(powInt),
				Uint:  mapBinary(powUint),
			},
		},
		{
			Name:       "axpy",
			Kind:       Elementwise,
			Arity:      2,
			Doc:        "z = x*alpha + y",
			DTypes:     concat(halfFloats, []dtype.DType{dtype.Int32}),
			SameDType:  true,
			WorkingSet: wsElementwise,
			AllowEmpty: true,
			Funcs: Funcs{
				Float: func(t Tile, dst []float64, src [][]float64) {
					a := t.Attrs.Alpha
					x, y := src[0][:len(dst)], src[1][:len(dst)]
					for i := range dst {
						dst[i] = x[i]*a + y[i]
					}
				},
				Int: func(t Tile, dst []int64, src [][]int64) {
					a := int64(t.Attrs.Alpha)
					x, y := src[0][:len(dst)], src[1][:len(dst)]
					for i := range dst {
						dst[i] = x[i]*a + y[i]
					}
				},
			},
		},
	}
}

func floorDivFloat(x, y float64) float64 {
	return math.Floor(x / y)
}

// floorDivInt corrects truncating division when the remainder and the
// divisor disagree in sign.
func floorDivInt(x, y int64) int64 {
	if y == 0 {
		return 0
	}
	q := x / y
	if r := x - q*y; r != 0 && (r > 0) != (y > 0) {
		q--
	}
	return q
}

func floorDivUint(x, y uint64) uint64 {
	if y == 0 {
		return 0
	}
	return x / y
}

func powInt(x, n int64) int64 {
	if n < 0 {
		switch x {
		case 1:
			return 1
		case -1:
			if n%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	out := int64(1)
	for n > 0 {
		if n&1 == 1 {
			out *= x
		}
		x *= x
		n >>= 1
	}
	return out
}

func powUint(x, n uint64) uint64 {
	out := uint64(1)
	for n > 0 {
		if n&1 == 1 {
			out *= x
		}
		x *= x
		n >>= 1
	}
	return out
}
