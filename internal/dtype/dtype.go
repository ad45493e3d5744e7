// Package dtype describes the element types an operator can be planned for.
package dtype

import (
	"fmt"
	"strings"
)

// DType is a runtime element type tag.
type DType uint8

const (
	Invalid DType = iota
	Bool
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float16
	BFloat16
	Float32
	Float64
)

var names = [...]string{
	Invalid:  "invalid",
	Bool:     "bool",
	Int8:     "int8",
	Uint8:    "uint8",
	Int16:    "int16",
	Uint16:   "uint16",
	Int32:    "int32",
	Uint32:   "uint32",
	Int64:    "int64",
	Uint64:   "uint64",
	Float16:  "float16",
	BFloat16: "bfloat16",
	Float32:  "float32",
	Float64:  "float64",
}

var aliases = map[string]DType{
	"fp16":   Float16,
	"half":   Float16,
	"bf16":   BFloat16,
	"fp32":   Float32,
	"float":  Float32,
	"fp64":   Float64,
	"double": Float64,
	"i8":     Int8,
	"u8":     Uint8,
	"i16":    Int16,
	"u16":    Uint16,
	"i32":    Int32,
	"u32":    Uint32,
	"i64":    Int64,
	"u64":    Uint64,
}

// All lists every valid dtype in tag order.
func All() []DType {
	out := make([]DType, 0, len(names)-1)
	for dt := Bool; dt <= Float64; dt++ {
		out = append(out, dt)
	}
	return out
}

// Size returns the byte width of one element, or 0 for Invalid.
func (dt DType) Size() int {
	switch dt {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

func (dt DType) String() string {
	if int(dt) < len(names) {
		return names[dt]
	}
	return fmt.Sprintf("dtype(%d)", uint8(dt))
}

func (dt DType) Valid() bool {
	return dt > Invalid && dt <= Float64
}

func (dt DType) IsFloat() bool {
	return dt == Float16 || dt == BFloat16 || dt == Float32 || dt == Float64
}

func (dt DType) IsSigned() bool {
	return dt == Int8 || dt == Int16 || dt == Int32 || dt == Int64
}

func (dt DType) IsUnsigned() bool {
	return dt == Uint8 || dt == Uint16 || dt == Uint32 || dt == Uint64
}

// Parse resolves a dtype name or common alias.
func Parse(s string) (DType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if i > 0 && n == key {
			return DType(i), nil
		}
	}
	if dt, ok := aliases[key]; ok {
		return dt, nil
	}
	return Invalid, fmt.Errorf("unknown dtype %q", s)
}

func (dt DType) MarshalText() ([]byte, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", dt)
	}
	return []byte(dt.String()), nil
}

func (dt *DType) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*dt = v
	return nil
}

// Widest returns the largest element width among dts, at least minBytes.
func Widest(minBytes int, dts ...DType) int {
	w := minBytes
	for _, dt := range dts {
		w = max(w, dt.Size())
	}
	return w
}
