// Package shape resolves tensor shapes for the planner: element counts,
// row-major strides, broadcasting and axis permutation.
package shape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxRank bounds the number of dimensions an operator accepts.
const MaxRank = 10

var (
	ErrBroadcast = errors.New("shapes are not broadcast compatible")
	ErrRank      = errors.New("rank out of range")
	ErrPerm      = errors.New("invalid permutation")
)

// Shape is a list of dimension extents. A nil or empty Shape is a scalar.
type Shape []int64

// NumElements returns the product of all extents. Scalars hold one element.
func (s Shape) NumElements() int64 {
	n := int64(1)
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) Rank() int { return len(s) }

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Validate rejects negative extents and ranks above MaxRank.
func (s Shape) Validate() error {
	if len(s) > MaxRank {
		return fmt.Errorf("%w: %d > %d", ErrRank, len(s), MaxRank)
	}
	for i, d := range s {
		if d < 0 {
			return fmt.Errorf("dim %d is negative (%d)", i, d)
		}
	}
	return nil
}

// Strides returns row-major element strides.
func (s Shape) Strides() []int64 {
	st := make([]int64, len(s))
	acc := int64(1)
	for i := len(s) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= s[i]
	}
	return st
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Parse reads a comma or x separated dim list such as "2,3,4" or "2x3x4".
// An empty string is a scalar.
func Parse(text string) (Shape, error) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "[]()")
	if text == "" {
		return Shape{}, nil
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == 'x' || r == ' '
	})
	out := make(Shape, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse dim %q: %w", f, err)
		}
		out = append(out, d)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
