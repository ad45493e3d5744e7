package tensor

import (
	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/shape"
)

// Lane is a scratch element type for per-tile compute.
type Lane interface {
	~int64 | ~uint64 | ~float64
}

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// GatherFloat loads len(dst) elements starting at logical index start.
// A non-nil m maps each logical index to a position in t (broadcast or
// permutation); nil reads t contiguously.
func (t *Tensor) GatherFloat(dst []float64, start int64, m shape.Mapper) { gatherInto(t, dst, start, m) }

func (t *Tensor) GatherInt(dst []int64, start int64, m shape.Mapper) { gatherInto(t, dst, start, m) }

func (t *Tensor) GatherUint(dst []uint64, start int64, m shape.Mapper) { gatherInto(t, dst, start, m) }

// ScatterFloat stores src at t[start:start+len(src)], converting to t's dtype.
func (t *Tensor) ScatterFloat(src []float64, start int64) { scatterFrom(t, src, start) }

func (t *Tensor) ScatterInt(src []int64, start int64) { scatterFrom(t, src, start) }

func (t *Tensor) ScatterUint(src []uint64, start int64) { scatterFrom(t, src, start) }

func index(i, start int64, m shape.Mapper) int64 {
	if m == nil {
		return start + i
	}
	return m(start + i)
}

func gatherInto[L Lane](t *Tensor, dst []L, start int64, m shape.Mapper) {
	switch d := t.data.(type) {
	case []bool:
		for i := range dst {
			if d[index(int64(i), start, m)] {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
	case []int8:
		gather(dst, d, start, m)
	case []uint8:
		gather(dst, d, start, m)
	case []int16:
		gather(dst, d, start, m)
	case []uint16:
		gather(dst, d, start, m)
	case []int32:
		gather(dst, d, start, m)
	case []uint32:
		gather(dst, d, start, m)
	case []int64:
		gather(dst, d, start, m)
	case []uint64:
		gather(dst, d, start, m)
	case []float32:
		gather(dst, d, start, m)
	case []float64:
		gather(dst, d, start, m)
	case []dtype.Half:
		for i := range dst {
			dst[i] = L(d[index(int64(i), start, m)].Float32())
		}
	case []dtype.BF16:
		for i := range dst {
			dst[i] = L(d[index(int64(i), start, m)].Float32())
		}
	}
}

func gather[L Lane, T number](dst []L, src []T, start int64, m shape.Mapper) {
	if m == nil {
		for i := range dst {
			dst[i] = L(src[start+int64(i)])
		}
		return
	}
	for i := range dst {
		dst[i] = L(src[m(start+int64(i))])
	}
}

func scatterFrom[L Lane](t *Tensor, src []L, start int64) {
	switch d := t.data.(type) {
	case []bool:
		for i, v := range src {
			d[start+int64(i)] = v != 0
		}
	case []int8:
		scatter(d, src, start)
	case []uint8:
		scatter(d, src, start)
	case []int16:
		scatter(d, src, start)
	case []uint16:
		scatter(d, src, start)
	case []int32:
		scatter(d, src, start)
	case []uint32:
		scatter(d, src, start)
	case []int64:
		scatter(d, src, start)
	case []uint64:
		scatter(d, src, start)
	case []float32:
		scatter(d, src, start)
	case []float64:
		scatter(d, src, start)
	case []dtype.Half:
		for i, v := range src {
			d[start+int64(i)] = dtype.HalfFromFloat32(float32(v))
		}
	case []dtype.BF16:
		for i, v := range src {
			d[start+int64(i)] = dtype.BF16FromFloat32(float32(v))
		}
	}
}

func scatter[T number, L Lane](dst []T, src []L, start int64) {
	for i, v := range src {
		dst[start+int64(i)] = T(v)
	}
}
