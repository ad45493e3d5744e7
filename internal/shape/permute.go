package shape

import "fmt"

// Permute returns the output shape of transposing s by perm, and the map
// from an output flat index to the source flat index. Negative axes count
// from the end.
func Permute(s Shape, perm []int) (Shape, Mapper, error) {
	rank := len(s)
	if len(perm) != rank {
		return nil, nil, fmt.Errorf("%w: got %d axes for rank %d", ErrPerm, len(perm), rank)
	}
	axes := make([]int, rank)
	seen := make([]bool, rank)
	for i, p := range perm {
		if p < 0 {
			p += rank
		}
		if p < 0 || p >= rank || seen[p] {
			return nil, nil, fmt.Errorf("%w: %v", ErrPerm, perm)
		}
		seen[p] = true
		axes[i] = p
	}

	out := make(Shape, rank)
	for i, p := range axes {
		out[i] = s[p]
	}

	identity := true
	for i, p := range axes {
		if i != p {
			identity = false
			break
		}
	}
	if identity {
		return out, nil, nil
	}

	srcStrides := s.Strides()
	outStrides := out.Strides()
	// moved[i] is the source stride of output axis i
	moved := make([]int64, rank)
	for i, p := range axes {
		moved[i] = srcStrides[p]
	}

	return out, func(idx int64) int64 {
		var src int64
		for i := 0; i < rank; i++ {
			if outStrides[i] == 0 {
				continue
			}
			coord := idx / outStrides[i]
			idx -= coord * outStrides[i]
			src += coord * moved[i]
		}
		return src
	}, nil
}
