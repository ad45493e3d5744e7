package dtype

import "fmt"

// Table maps element types to a working-set multiplier: the number of
// tile-sized scratch buffers a transform keeps live at once.
//
// Lookups try the exact dtype first, then its byte width. A zero or missing
// entry means the transform is not defined for that dtype.
type Table struct {
	ByType  map[DType]int
	ByWidth map[int]int
}

// Uniform returns a table that assigns n to every dtype.
func Uniform(n int) Table {
	return Table{ByWidth: map[int]int{1: n, 2: n, 4: n, 8: n}}
}

// ByWidth returns a table keyed only on element width.
func ByWidth(m map[int]int) Table {
	return Table{ByWidth: m}
}

// With returns a copy of t with an exact-dtype override.
func (t Table) With(dt DType, n int) Table {
	out := Table{
		ByType:  make(map[DType]int, len(t.ByType)+1),
		ByWidth: t.ByWidth,
	}
	for k, v := range t.ByType {
		out.ByType[k] = v
	}
	out.ByType[dt] = n
	return out
}

// Lookup returns the multiplier for dt.
func (t Table) Lookup(dt DType) (int, bool) {
	if n, ok := t.ByType[dt]; ok {
		return n, n > 0
	}
	n, ok := t.ByWidth[dt.Size()]
	return n, ok && n > 0
}

// Supported lists dtypes for which Lookup succeeds.
func (t Table) Supported() []DType {
	var out []DType
	for _, dt := range All() {
		if _, ok := t.Lookup(dt); ok {
			out = append(out, dt)
		}
	}
	return out
}

func (t Table) String() string {
	return fmt.Sprintf("bytype=%v bywidth=%v", t.ByType, t.ByWidth)
}
