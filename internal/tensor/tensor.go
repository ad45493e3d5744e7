// Package tensor holds the flat, typed buffers that stand in for device
// global memory. Operators never touch the typed slice directly: tiles are
// gathered into float64, int64 or uint64 lanes and scattered back.
package tensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/shape"
)

var ErrData = errors.New("tensor data does not match shape")

// Element is the set of Go types a tensor can hold directly.
type Element interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		dtype.Half | dtype.BF16 | float32 | float64
}

// Tensor is a dense row-major buffer.
type Tensor struct {
	dt    dtype.DType
	shape shape.Shape
	data  any
}

// New allocates a zero-filled tensor.
func New(dt dtype.DType, s shape.Shape) (*Tensor, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("tensor: invalid dtype %s", dt)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := s.NumElements()
	var data any
	switch dt {
	case dtype.Bool:
		data = make([]bool, n)
	case dtype.Int8:
		data = make([]int8, n)
	case dtype.Uint8:
		data = make([]uint8, n)
	case dtype.Int16:
		data = make([]int16, n)
	case dtype.Uint16:
		data = make([]uint16, n)
	case dtype.Int32:
		data = make([]int32, n)
	case dtype.Uint32:
		data = make([]uint32, n)
	case dtype.Int64:
		data = make([]int64, n)
	case dtype.Uint64:
		data = make([]uint64, n)
	case dtype.Float16:
		data = make([]dtype.Half, n)
	case dtype.BFloat16:
		data = make([]dtype.BF16, n)
	case dtype.Float32:
		data = make([]float32, n)
	case dtype.Float64:
		data = make([]float64, n)
	}
	return &Tensor{dt: dt, shape: s.Clone(), data: data}, nil
}

// FromSlice wraps data without copying. The dtype follows T.
func FromSlice[T Element](s shape.Shape, data []T) (*Tensor, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if int64(len(data)) != s.NumElements() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrData, len(data), s)
	}
	return &Tensor{dt: dtypeOf(data), shape: s.Clone(), data: data}, nil
}

// FromFloat64 builds a tensor of dt from float64 values, rounding or
// truncating as the target type requires.
func FromFloat64(dt dtype.DType, s shape.Shape, vals []float64) (*Tensor, error) {
	t, err := New(dt, s)
	if err != nil {
		return nil, err
	}
	if int64(len(vals)) != t.Len() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrData, len(vals), s)
	}
	switch {
	case dt.IsFloat():
		t.ScatterFloat(vals, 0)
	case dt.IsUnsigned():
		lanes := make([]uint64, len(vals))
		for i, v := range vals {
			lanes[i] = uint64(max(v, 0))
		}
		t.ScatterUint(lanes, 0)
	default:
		lanes := make([]int64, len(vals))
		for i, v := range vals {
			lanes[i] = int64(v)
		}
		t.ScatterInt(lanes, 0)
	}
	return t, nil
}

// Scalar returns a rank-0 tensor holding v.
func Scalar(dt dtype.DType, v float64) (*Tensor, error) {
	return FromFloat64(dt, shape.Shape{}, []float64{v})
}

func (t *Tensor) DType() dtype.DType { return t.dt }
func (t *Tensor) Shape() shape.Shape { return t.shape.Clone() }
func (t *Tensor) Len() int64         { return t.shape.NumElements() }
func (t *Tensor) Bytes() int64       { return t.Len() * int64(t.dt.Size()) }
func (t *Tensor) Data() any          { return t.data }
func (t *Tensor) ElementBytes() int  { return t.dt.Size() }

func (t *Tensor) Reshape(s shape.Shape) error {
	if s.NumElements() != t.Len() {
		return fmt.Errorf("%w: cannot reshape %s to %s", ErrData, t.shape, s)
	}
	t.shape = s.Clone()
	return nil
}

func (t *Tensor) String() string {
	return fmt.Sprintf("%s%s", t.dt, t.shape)
}

// Float64s returns every element widened to float64.
func (t *Tensor) Float64s() []float64 {
	out := make([]float64, t.Len())
	t.GatherFloat(out, 0, nil)
	return out
}

// Values returns the elements in a form encoding/json style encoders render
// naturally: half-precision types are widened to float32, everything else
// is the backing slice.
func (t *Tensor) Values() any {
	switch d := t.data.(type) {
	case []dtype.Half:
		out := make([]float32, len(d))
		for i, v := range d {
			out[i] = v.Float32()
		}
		return out
	case []dtype.BF16:
		out := make([]float32, len(d))
		for i, v := range d {
			out[i] = v.Float32()
		}
		return out
	default:
		return t.data
	}
}

// Equal reports whether a and b have the same dtype, shape and elements.
// Floating-point NaNs compare equal to each other.
func Equal(a, b *Tensor) bool {
	if a.dt != b.dt || !a.shape.Equal(b.shape) {
		return false
	}
	switch {
	case a.dt.IsFloat():
		x, y := a.Float64s(), b.Float64s()
		for i := range x {
			if x[i] != y[i] && !(math.IsNaN(x[i]) && math.IsNaN(y[i])) {
				return false
			}
		}
	case a.dt.IsUnsigned():
		x, y := make([]uint64, a.Len()), make([]uint64, b.Len())
		a.GatherUint(x, 0, nil)
		b.GatherUint(y, 0, nil)
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
	default:
		x, y := make([]int64, a.Len()), make([]int64, b.Len())
		a.GatherInt(x, 0, nil)
		b.GatherInt(y, 0, nil)
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
	}
	return true
}

func dtypeOf(data any) dtype.DType {
	switch data.(type) {
	case []bool:
		return dtype.Bool
	case []int8:
		return dtype.Int8
	case []uint8:
		return dtype.Uint8
	case []int16:
		return dtype.Int16
	case []uint16:
		return dtype.Uint16
	case []int32:
		return dtype.Int32
	case []uint32:
		return dtype.Uint32
	case []int64:
		return dtype.Int64
	case []uint64:
		return dtype.Uint64
	case []dtype.Half:
		return dtype.Float16
	case []dtype.BF16:
		return dtype.BFloat16
	case []float32:
		return dtype.Float32
	case []float64:
		return dtype.Float64
	default:
		return dtype.Invalid
	}
}
