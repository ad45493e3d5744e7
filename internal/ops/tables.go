package ops

import "github.com/samcharles93/tiler/internal/dtype"

// Working-set multipliers, keyed by element width unless noted.
var (
	// wsElementwise is the two-input template: x, y and z per buffer, with
	// two extra cast buffers for byte-wide types.
	wsElementwise = dtype.ByWidth(map[int]int{1: 5, 2: 3, 4: 3, 8: 3})

	// wsUnary transforms keep input, output and one scratch buffer.
	wsUnary = dtype.Uniform(3)

	// wsTranspose stages the source tile plus index scratch; narrow types
	// need more gather buffers per element.
	wsTranspose = dtype.ByWidth(map[int]int{1: 23, 2: 13, 4: 7, 8: 4})

	// wsPow casts narrow types up to float32 before exponentiation. There is
	// no 8-byte variant.
	wsPow = dtype.ByWidth(map[int]int{1: 25, 2: 12, 4: 6})

	// wsPower mixes two dtypes and always plans on at least 2-byte elements.
	wsPower = dtype.Uniform(10)

	// wsSqrt runs single buffered: float32 needs input, output and two
	// temporaries, the half types two more for the casts.
	wsSqrt = dtype.Uniform(6).With(dtype.Float32, 4)
)

// dtype groups accepted by the operators.
var (
	halfFloats = []dtype.DType{dtype.Float16, dtype.BFloat16, dtype.Float32}
	floats     = []dtype.DType{dtype.Float16, dtype.BFloat16, dtype.Float32, dtype.Float64}
	signed     = []dtype.DType{dtype.Int8, dtype.Int16, dtype.Int32, dtype.Int64}
	unsigned   = []dtype.DType{dtype.Uint8, dtype.Uint16, dtype.Uint32, dtype.Uint64}
	numeric    = concat(floats, signed, unsigned)
	arithmetic = concat(halfFloats, []dtype.DType{dtype.Int8, dtype.Uint8, dtype.Int16, dtype.Int32})
	equatable  = concat(numeric, []dtype.DType{dtype.Bool})
)

func concat(groups ...[]dtype.DType) []dtype.DType {
	var out []dtype.DType
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
