package shape

import "fmt"

// Broadcast returns the right-aligned broadcast of the given shapes.
func Broadcast(shapes ...Shape) (Shape, error) {
	rank := 0
	for _, s := range shapes {
		rank = max(rank, len(s))
	}
	out := make(Shape, rank)
	for i := range out {
		out[i] = 1
	}
	for _, s := range shapes {
		off := rank - len(s)
		for i, d := range s {
			j := off + i
			switch {
			case d == out[j] || d == 1:
			case out[j] == 1:
				out[j] = d
			default:
				return nil, fmt.Errorf("%w: %s vs %s at dim %d", ErrBroadcast, s, out, j)
			}
		}
	}
	return out, out.Validate()
}

// Mapper maps a flat index in an output shape to a flat index in a source
// tensor. A nil Mapper is the identity.
type Mapper func(out int64) int64

// BroadcastMapper returns the index map from out to src, where src
// broadcasts to out. It returns nil when the shapes match.
func BroadcastMapper(src, out Shape) (Mapper, error) {
	if src.Equal(out) {
		return nil, nil
	}
	if len(src) > len(out) {
		return nil, fmt.Errorf("%w: %s does not broadcast to %s", ErrBroadcast, src, out)
	}
	if src.NumElements() == 1 {
		return func(int64) int64 { return 0 }, nil
	}

	rank := len(out)
	aligned := make(Shape, rank)
	off := rank - len(src)
	for i := range aligned {
		aligned[i] = 1
		if i >= off {
			aligned[i] = src[i-off]
		}
		if aligned[i] != 1 && aligned[i] != out[i] {
			return nil, fmt.Errorf("%w: %s does not broadcast to %s", ErrBroadcast, src, out)
		}
	}

	// effective strides are zero on broadcast dims
	eff := aligned.Strides()
	for i := range eff {
		if aligned[i] == 1 {
			eff[i] = 0
		}
	}
	outStrides := out.Strides()

	return func(idx int64) int64 {
		var src int64
		for i := 0; i < rank; i++ {
			if outStrides[i] == 0 {
				continue
			}
			coord := idx / outStrides[i]
			idx -= coord * outStrides[i]
			src += coord * eff[i]
		}
		return src
	}, nil
}
