package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/shape"
	"github.com/samcharles93/tiler/internal/tensor"
)

// tensorArg is a parsed --input value of the form dtype:dims[=v,v,...],
// for example float32:2x1024 or int32:4=1,2,3,4. Empty dims make a scalar.
type tensorArg struct {
	dt     dtype.DType
	shape  shape.Shape
	values []float64
}

func parseTensorArg(s string) (tensorArg, error) {
	spec, data, hasData := strings.Cut(strings.TrimSpace(s), "=")
	name, dims, ok := strings.Cut(spec, ":")
	if !ok {
		return tensorArg{}, fmt.Errorf("input %q: want dtype:dims[=values]", s)
	}
	dt, err := dtype.Parse(name)
	if err != nil {
		return tensorArg{}, fmt.Errorf("input %q: %w", s, err)
	}
	arg := tensorArg{dt: dt, shape: shape.Shape{}}
	if dims = strings.TrimSpace(dims); dims != "" {
		for _, d := range strings.Split(dims, "x") {
			n, err := strconv.ParseInt(strings.TrimSpace(d), 10, 64)
			if err != nil {
				return tensorArg{}, fmt.Errorf("input %q: bad dim %q", s, d)
			}
			arg.shape = append(arg.shape, n)
		}
	}
	if err := arg.shape.Validate(); err != nil {
		return tensorArg{}, fmt.Errorf("input %q: %w", s, err)
	}
	if hasData {
		arg.values, err = parseFloats(data)
		if err != nil {
			return tensorArg{}, fmt.Errorf("input %q: %w", s, err)
		}
	}
	return arg, nil
}

func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// build materialises the argument. Without explicit values the tensor is
// filled per fill: "zero" or "ramp" (0, 1, 2, ...).
func (a tensorArg) build(fill string) (*tensor.Tensor, error) {
	if a.values != nil {
		return tensor.FromFloat64(a.dt, a.shape, a.values)
	}
	switch fill {
	case "", "zero":
		return tensor.New(a.dt, a.shape)
	case "ramp":
		vals := make([]float64, a.shape.NumElements())
		for i := range vals {
			vals[i] = float64(i)
		}
		return tensor.FromFloat64(a.dt, a.shape, vals)
	default:
		return nil, fmt.Errorf("unknown fill %q (zero, ramp)", fill)
	}
}

func buildInputs(args []string, fill string) ([]*tensor.Tensor, error) {
	out := make([]*tensor.Tensor, 0, len(args))
	for _, s := range args {
		arg, err := parseTensorArg(s)
		if err != nil {
			return nil, err
		}
		t, err := arg.build(fill)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", s, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// attrValues holds the operator attribute flags shared by plan and run.
type attrValues struct {
	alpha float64
	perm  string
	start float64
	stop  float64
	num   int64
	dim   int64
	dtype string
}

func (v *attrValues) flags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "alpha", Usage: "axpy scale", Destination: &v.alpha},
		&cli.StringFlag{Name: "perm", Usage: "transpose axis order, e.g. 1,0", Destination: &v.perm},
		&cli.Float64Flag{Name: "start", Usage: "lin_space start", Destination: &v.start},
		&cli.Float64Flag{Name: "stop", Usage: "lin_space stop", Destination: &v.stop},
		&cli.Int64Flag{Name: "num", Usage: "lin_space element count", Destination: &v.num},
		&cli.Int64Flag{Name: "dim", Usage: "scan axis; negative counts from the end", Destination: &v.dim},
		&cli.StringFlag{Name: "dtype", Usage: "lin_space output dtype", Destination: &v.dtype},
	}
}

func (v *attrValues) attrs() (*ops.Attrs, error) {
	at := &ops.Attrs{
		Alpha: v.alpha,
		Start: v.start,
		Stop:  v.stop,
		Num:   v.num,
		Dim:   int(v.dim),
	}
	if v.perm != "" {
		for _, p := range strings.Split(v.perm, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("--perm: bad axis %q", p)
			}
			at.Perm = append(at.Perm, n)
		}
	}
	if v.dtype != "" {
		dt, err := dtype.Parse(v.dtype)
		if err != nil {
			return nil, fmt.Errorf("--dtype: %w", err)
		}
		at.DType = dt
	}
	return at, nil
}
