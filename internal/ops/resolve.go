package ops

import (
	"errors"
	"fmt"

	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/shape"
	"github.com/samcharles93/tiler/internal/tensor"
	"github.com/samcharles93/tiler/internal/tiling"
)

var ErrArity = errors.New("wrong number of inputs")

// Class is the scratch lane type a computation runs in.
type Class uint8

const (
	FloatLanes Class = iota
	IntLanes
	UintLanes
)

func (c Class) String() string {
	switch c {
	case FloatLanes:
		return "float64"
	case IntLanes:
		return "int64"
	default:
		return "uint64"
	}
}

// ClassOf returns the lane class used to compute in dt. Bool computes in
// integer lanes.
func ClassOf(dt dtype.DType) Class {
	switch {
	case dt.IsFloat():
		return FloatLanes
	case dt.IsUnsigned():
		return UintLanes
	default:
		return IntLanes
	}
}

// Signature is an operator resolved against concrete inputs.
type Signature struct {
	Op      *Spec
	Compute dtype.DType
	Out     dtype.DType
	Shape   shape.Shape
	// Maps holds one index map per input; nil entries read contiguously.
	Maps []shape.Mapper
	// ElementBytes is the widest element width in play.
	ElementBytes int
	WorkingSet   int
}

// Class returns the lane class of the computation.
func (sig *Signature) Class() Class { return ClassOf(sig.Compute) }

// Request builds the planner request for this signature on a platform.
func (sig *Signature) Request(units int, bufferBytes int64) tiling.Request {
	return tiling.Request{
		TotalElements: sig.Shape.NumElements(),
		ElementBytes:  sig.ElementBytes,
		Units:         units,
		BufferBytes:   bufferBytes,
		Buffering:     sig.Op.Buffering,
		WorkingSet:    sig.WorkingSet,
		AllowEmpty:    sig.Op.AllowEmpty,
	}
}

func dtypeErr(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, tiling.ErrUnsupportedDtype, fmt.Sprintf(format, args...))
}

func shapeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, tiling.ErrUnsupportedShape, err)
}

// Resolve infers the output dtype and shape of s applied to in, and the
// working-set multiplier the planner needs.
func (s *Spec) Resolve(in []*tensor.Tensor, at *Attrs) (*Signature, error) {
	if at == nil {
		at = &Attrs{}
	}
	if len(in) != s.Arity {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", s.Name, ErrArity, s.Arity, len(in))
	}

	sig := &Signature{Op: s, Maps: make([]shape.Mapper, len(in))}
	for _, t := range in {
		if !s.Accepts(t.DType()) {
			return nil, dtypeErr(s.Name, "input dtype %s not supported", t.DType())
		}
	}

	switch s.Kind {
	case Elementwise:
		compute := in[0].DType()
		shapes := make([]shape.Shape, len(in))
		for i, t := range in {
			shapes[i] = t.Shape()
			if i == 0 {
				continue
			}
			if s.SameDType && t.DType() != compute {
				return nil, dtypeErr(s.Name, "inputs must share a dtype, got %s and %s", compute, t.DType())
			}
			next, ok := dtype.Promote(compute, t.DType())
			if !ok {
				return nil, dtypeErr(s.Name, "no promotion for %s", dtype.Pair{X: compute, Y: t.DType()})
			}
			compute = next
		}
		out, err := shape.Broadcast(shapes...)
		if err != nil {
			return nil, shapeErr(s.Name, err)
		}
		for i := range in {
			m, err := shape.BroadcastMapper(shapes[i], out)
			if err != nil {
				return nil, shapeErr(s.Name, err)
			}
			sig.Maps[i] = m
		}
		sig.Compute, sig.Shape = compute, out

	case Permutation:
		perm := at.Perm
		src := in[0].Shape()
		if len(perm) == 0 {
			perm = make([]int, src.Rank())
			for i := range perm {
				perm[i] = src.Rank() - 1 - i
			}
		}
		out, m, err := shape.Permute(src, perm)
		if err != nil {
			return nil, shapeErr(s.Name, err)
		}
		sig.Compute, sig.Shape, sig.Maps[0] = in[0].DType(), out, m

	case Generator:
		dt := at.DType
		if dt == dtype.Invalid {
			dt = dtype.Float32
		}
		if !s.Accepts(dt) {
			return nil, dtypeErr(s.Name, "output dtype %s not supported", dt)
		}
		if at.Num < 0 {
			return nil, shapeErr(s.Name, fmt.Errorf("num must be >= 0, got %d", at.Num))
		}
		sig.Compute, sig.Shape = dt, shape.Shape{at.Num}

	case Scan:
		src := in[0].Shape()
		dim := at.Dim
		if dim < 0 {
			dim += src.Rank()
		}
		if src.Rank() == 0 || dim < 0 || dim >= src.Rank() {
			return nil, shapeErr(s.Name, fmt.Errorf("%w: dim %d for rank %d", shape.ErrRank, at.Dim, src.Rank()))
		}
		sig.Compute, sig.Shape = in[0].DType(), src
	}

	switch s.Output {
	case BoolOutput:
		sig.Out = dtype.Bool
	default:
		sig.Out = sig.Compute
	}

	if s.Kind == Scan {
		sig.ElementBytes = sig.Compute.Size()
		return sig, nil
	}

	dts := []dtype.DType{sig.Out, sig.Compute}
	for _, t := range in {
		dts = append(dts, t.DType())
	}
	sig.ElementBytes = dtype.Widest(s.MinElementBytes, dts...)

	ws, ok := s.WorkingSet.Lookup(sig.Compute)
	if !ok {
		return nil, dtypeErr(s.Name, "no working-set multiplier for %s", sig.Compute)
	}
	sig.WorkingSet = ws

	var missing bool
	switch sig.Class() {
	case FloatLanes:
		missing = s.Funcs.Float == nil
	case IntLanes:
		missing = s.Funcs.Int == nil
	case UintLanes:
		missing = s.Funcs.Uint == nil
	}
	if missing {
		return nil, dtypeErr(s.Name, "no %s compute for %s", sig.Class(), sig.Compute)
	}
	return sig, nil
}
