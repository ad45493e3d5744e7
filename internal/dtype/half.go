package dtype

import (
	"github.com/gomlx/gomlx/pkg/core/dtypes/bfloat16"
	"github.com/x448/float16"
)

// Half is an IEEE 754 binary16 value.
type Half = float16.Float16

// BF16 is a bfloat16 value: the upper 16 bits of a float32.
type BF16 = bfloat16.BFloat16

// HalfFromFloat32 rounds f to the nearest binary16 value.
func HalfFromFloat32(f float32) Half {
	return float16.Fromfloat32(f)
}

// BF16FromFloat32 converts f to bfloat16. NaN stays NaN.
func BF16FromFloat32(f float32) BF16 {
	return bfloat16.FromFloat32(f)
}
