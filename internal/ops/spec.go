// Package ops describes the operators the engine can plan and run: their
// working-set tables, dtype rules, empty-input policy and per-tile compute.
//
// Compute functions work on scratch lanes rather than the tensor's storage
// type. Inputs are widened into float64, int64 or uint64 lanes depending on
// the operator's compute dtype, transformed, then narrowed into the output.
package ops

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/samcharles93/tiler/internal/dtype"
)

var ErrUnknownOp = errors.New("unknown operator")

// Kind selects how the engine drives an operator.
type Kind uint8

const (
	// Elementwise ops map broadcast inputs to an output one element at a time.
	Elementwise Kind = iota
	// Permutation ops gather their single input through an axis permutation.
	Permutation
	// Generator ops have no tensor inputs; output values depend on the index.
	Generator
	// Scan ops run on the host along one axis and are not tiled.
	Scan
)

func (k Kind) String() string {
	switch k {
	case Elementwise:
		return "elementwise"
	case Permutation:
		return "permutation"
	case Generator:
		return "generator"
	case Scan:
		return "scan"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Output selects the output dtype of an operator.
type Output uint8

const (
	// SameAsCompute writes the (possibly promoted) compute dtype.
	SameAsCompute Output = iota
	// BoolOutput writes a bool mask.
	BoolOutput
	// AttrDType writes Attrs.DType (generators).
	AttrDType
)

// Tile is the context a compute function sees for one tile.
type Tile struct {
	// Index is the global element index of lane 0.
	Index int64
	Attrs *Attrs
}

// Funcs holds one compute function per lane class. A nil entry means the
// operator has no implementation for dtypes of that class.
type Funcs struct {
	Float func(t Tile, dst []float64, src [][]float64)
	Int   func(t Tile, dst []int64, src [][]int64)
	Uint  func(t Tile, dst []uint64, src [][]uint64)
}

// ScanFuncs run a cumulative reduction in place over a lane buffer laid
// out as [outer][depth][inner], writing the winning depth index to idx.
type ScanFuncs struct {
	Float func(vals []float64, idx []int64, outer, depth, inner int64)
	Int   func(vals []int64, idx []int64, outer, depth, inner int64)
	Uint  func(vals []uint64, idx []int64, outer, depth, inner int64)
}

// Spec is the static description of one operator.
type Spec struct {
	Name  string
	Kind  Kind
	Arity int
	Doc   string

	// DTypes lists the accepted input dtypes (output dtypes for generators).
	DTypes []dtype.DType
	// SameDType requires every input to share one dtype; otherwise the
	// inputs are promoted pairwise.
	SameDType bool
	Output    Output

	// Buffering is the multi-buffering factor; zero uses the planner default.
	Buffering  int
	WorkingSet dtype.Table
	// MinElementBytes raises the element width used for planning.
	MinElementBytes int
	AllowEmpty      bool

	Funcs Funcs
	Scan  ScanFuncs
}

// Accepts reports whether dt is a valid input dtype.
func (s *Spec) Accepts(dt dtype.DType) bool {
	return slices.Contains(s.DTypes, dt)
}

// Attrs carries per-call operator attributes.
type Attrs struct {
	Alpha float64     `json:"alpha,omitempty"`
	Perm  []int       `json:"perm,omitempty"`
	Start float64     `json:"start,omitempty"`
	Stop  float64     `json:"stop,omitempty"`
	Num   int64       `json:"num,omitempty"`
	Dim   int         `json:"dim,omitempty"`
	DType dtype.DType `json:"dtype,omitempty"`
}

var registry = func() map[string]*Spec {
	m := make(map[string]*Spec)
	for _, group := range [][]*Spec{unarySpecs(), binarySpecs(), structuredSpecs(), scanSpecs()} {
		for _, s := range group {
			if _, dup := m[s.Name]; dup {
				panic("ops: duplicate operator " + s.Name)
			}
			m[s.Name] = s
		}
	}
	return m
}()

// Lookup returns the operator registered under name.
func Lookup(name string) (*Spec, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, name)
	}
	return s, nil
}

// Names lists registered operators in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns every registered operator sorted by name.
func All() []*Spec {
	names := Names()
	out := make([]*Spec, len(names))
	for i, n := range names {
		out[i] = registry[n]
	}
	return out
}
