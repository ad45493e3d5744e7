package ops

import "github.com/samcharles93/tiler/internal/tensor"

func mapUnary[L tensor.Lane](f func(L) L) func(Tile, []L, [][]L) {
	return func(_ Tile, dst []L, src [][]L) {
		x := src[0][:len(dst)]
		for i := range dst {
			dst[i] = f(x[i])
		}
	}
}

func mapBinary[L tensor.Lane](f func(a, b L) L) func(Tile, []L, [][]L) {
	return func(_ Tile, dst []L, src [][]L) {
		x, y := src[0][:len(dst)], src[1][:len(dst)]
		for i := range dst {
			dst[i] = f(x[i], y[i])
		}
	}
}

func identity[L tensor.Lane](_ Tile, dst []L, src [][]L) {
	copy(dst, src[0])
}

func boolLane[L tensor.Lane](b bool) L {
	if b {
		return 1
	}
	return 0
}
