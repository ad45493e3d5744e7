package dtype

// Pair keys lookups on an ordered (lhs, rhs) dtype combination.
type Pair struct {
	X DType
	Y DType
}

func (p Pair) String() string {
	return p.X.String() + "," + p.Y.String()
}

// promotions is built once from promoteRule for every valid pair.
var promotions = func() map[Pair]DType {
	all := All()
	tbl := make(map[Pair]DType, len(all)*len(all))
	for _, x := range all {
		for _, y := range all {
			tbl[Pair{x, y}] = promoteRule(x, y)
		}
	}
	return tbl
}()

// Promote returns the result dtype of a binary operation on x and y.
func Promote(x, y DType) (DType, bool) {
	dt, ok := promotions[Pair{x, y}]
	return dt, ok
}

func promoteRule(x, y DType) DType {
	if x == y {
		return x
	}
	if x == Bool {
		return y
	}
	if y == Bool {
		return x
	}
	switch {
	case x.IsFloat() && y.IsFloat():
		if (x == Float16 && y == BFloat16) || (x == BFloat16 && y == Float16) {
			return Float32
		}
		return wider(x, y)
	case x.IsFloat():
		return x
	case y.IsFloat():
		return y
	case x.IsSigned() == y.IsSigned():
		return wider(x, y)
	}

	signed, unsigned := x, y
	if !signed.IsSigned() {
		signed, unsigned = y, x
	}
	if signed.Size() > unsigned.Size() {
		return signed
	}
	switch unsigned.Size() {
	case 1:
		return Int16
	case 2:
		return Int32
	default:
		return Int64
	}
}

func wider(x, y DType) DType {
	if y.Size() > x.Size() {
		return y
	}
	return x
}
