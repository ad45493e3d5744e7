package ops

import (
	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/kernel"
	"github.com/samcharles93/tiler/internal/shape"
	"github.com/samcharles93/tiler/internal/tensor"
	"github.com/samcharles93/tiler/internal/tiling"
)

// laneKernel stages one unit's tiles through lane buffers sized to the
// plan's tile.
type laneKernel[L tensor.Lane] struct {
	fn      func(Tile, []L, [][]L)
	gather  func(t *tensor.Tensor, dst []L, start int64, m shape.Mapper)
	scatter func(t *tensor.Tensor, src []L, start int64)

	in    []*tensor.Tensor
	maps  []shape.Mapper
	out   *tensor.Tensor
	attrs *Attrs

	r    tiling.UnitRange
	src  [][]L
	view [][]L
	dst  []L
}

func (k *laneKernel[L]) Init(r tiling.UnitRange, tileElems int) {
	k.r = r
	k.src = make([][]L, len(k.in))
	for i := range k.src {
		k.src[i] = make([]L, tileElems)
	}
	k.view = make([][]L, len(k.in))
	k.dst = make([]L, tileElems)
}

func (k *laneKernel[L]) CopyIn(progress int64, n int) {
	base := k.r.Offset + progress
	for i, t := range k.in {
		k.gather(t, k.src[i][:n], base, k.maps[i])
	}
}

func (k *laneKernel[L]) Compute(progress int64, n int) {
	for i := range k.src {
		k.view[i] = k.src[i][:n]
	}
	k.fn(Tile{Index: k.r.Offset + progress, Attrs: k.attrs}, k.dst[:n], k.view)
}

func (k *laneKernel[L]) CopyOut(progress int64, n int) {
	k.scatter(k.out, k.dst[:n], k.r.Offset+progress)
}

// Factory returns a kernel factory computing sig into out. Each call builds
// an independent kernel, so units share only the read-only inputs and
// disjoint ranges of out.
func (sig *Signature) Factory(out *tensor.Tensor, in []*tensor.Tensor, at *Attrs) kernel.Factory {
	if at == nil {
		at = &Attrs{}
	}
	f := sig.Op.Funcs
	switch sig.Class() {
	case FloatLanes:
		return func(int) kernel.Kernel {
			return &laneKernel[float64]{
				fn: f.Float, gather: (*tensor.Tensor).GatherFloat, scatter: (*tensor.Tensor).ScatterFloat,
				in: in, maps: sig.Maps, out: out, attrs: at,
			}
		}
	case IntLanes:
		return func(int) kernel.Kernel {
			return &laneKernel[int64]{
				fn: f.Int, gather: (*tensor.Tensor).GatherInt, scatter: (*tensor.Tensor).ScatterInt,
				in: in, maps: sig.Maps, out: out, attrs: at,
			}
		}
	default:
		return func(int) kernel.Kernel {
			return &laneKernel[uint64]{
				fn: f.Uint, gather: (*tensor.Tensor).GatherUint, scatter: (*tensor.Tensor).ScatterUint,
				in: in, maps: sig.Maps, out: out, attrs: at,
			}
		}
	}
}

// RunScan evaluates a Scan operator on the host. It returns the running
// values in the input dtype and int64 indices of the same shape.
func (sig *Signature) RunScan(in *tensor.Tensor, at *Attrs) (vals, idx *tensor.Tensor, err error) {
	if at == nil {
		at = &Attrs{}
	}
	dims := in.Shape()
	dim := at.Dim
	if dim < 0 {
		dim += dims.Rank()
	}
	outer, depth, inner := ScanLayout(dims, dim)

	vals, err = tensor.New(sig.Out, dims)
	if err != nil {
		return nil, nil, err
	}
	idx, err = tensor.New(dtype.Int64, dims)
	if err != nil {
		return nil, nil, err
	}
	n := in.Len()
	positions := make([]int64, n)

	fns := sig.Op.Scan
	switch sig.Class() {
	case FloatLanes:
		lanes := make([]float64, n)
		in.GatherFloat(lanes, 0, nil)
		fns.Float(lanes, positions, outer, depth, inner)
		vals.ScatterFloat(lanes, 0)
	case IntLanes:
		lanes := make([]int64, n)
		in.GatherInt(lanes, 0, nil)
		fns.Int(lanes, positions, outer, depth, inner)
		vals.ScatterInt(lanes, 0)
	default:
		lanes := make([]uint64, n)
		in.GatherUint(lanes, 0, nil)
		fns.Uint(lanes, positions, outer, depth, inner)
		vals.ScatterUint(lanes, 0)
	}
	idx.ScatterInt(positions, 0)
	return vals, idx, nil
}
