package ops

import (
	"math"

	"github.com/samcharles93/tiler/internal/dtype"
)

func floatUnary(name, doc string, f func(float64) float64) *Spec {
	return &Spec{
		Name:       name,
		Kind:       Elementwise,
		Arity:      1,
		Doc:        doc,
		DTypes:     halfFloats,
		WorkingSet: wsUnary,
		Funcs:      Funcs{Float: mapUnary(f)},
	}
}

func unarySpecs() []*Spec {
	sqrtSpec := floatUnary("sqrt", "y = sqrt(x)", math.Sqrt)
	sqrtSpec.Buffering = 1
	sqrtSpec.WorkingSet = wsSqrt

	square := &Spec{
		Name:       "square",
		Kind:       Elementwise,
		Arity:      1,
		Doc:        "y = x*x",
		DTypes:     concat(halfFloats, []dtype.DType{dtype.Int32, dtype.Int64}),
		WorkingSet: wsUnary,
		Funcs: Funcs{
			Float: mapUnary(func(x float64) float64 { return x * x }),
			Int:   mapUnary(func(x int64) int64 { return x * x }),
		},
	}

	relu := &Spec{
		Name:       "relu",
		Kind:       Elementwise,
		Arity:      1,
		Doc:        "y = max(x, 0)",
		DTypes:     concat(floats, []dtype.DType{dtype.Int8, dtype.Int32, dtype.Int64, dtype.Uint8}),
		WorkingSet: wsUnary,
		Funcs: Funcs{
			Float: mapUnary(func(x float64) float64 {
				if x > 0 || math.IsNaN(x) {
					return x
				}
				return 0
			}),
			Int:  mapUnary(func(x int64) int64 { return max(x, 0) }),
			Uint: identity[uint64],
		},
	}

	return []*Spec{
		sqrtSpec,
		square,
		relu,
		floatUnary("hard_swish", "y = x * relu6(x+3) / 6", hardSwish),
		floatUnary("cosh", "y = cosh(x)", math.Cosh),
		floatUnary("sinh", "y = sinh(x)", math.Sinh),
		floatUnary("tan", "y = tan(x)", math.Tan),
		floatUnary("trunc", "y = trunc(x), rounding toward zero", math.Trunc),
		floatUnary("ceil", "y = ceil(x)", math.Ceil),
		floatUnary("floor", "y = floor(x)", math.Floor),
		floatUnary("log1p", "y = ln(1 + x)", math.Log1p),
		floatUnary("softplus", "y = ln(1 + e^x), linear above 20", softplus),
	}
}

func hardSwish(x float64) float64 {
	return x * min(max(x+3, 0), 6) / 6
}

func softplus(x float64) float64 {
	if x > 20 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
