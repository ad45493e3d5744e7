package api

import (
	"fmt"

	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/kernel"
	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/platform"
	"github.com/samcharles93/tiler/internal/shape"
	"github.com/samcharles93/tiler/internal/tensor"
	"github.com/samcharles93/tiler/internal/tiling"
)

// Target names the platform a request plans for. Units and BufferBytes,
// when positive, override the profile.
type Target struct {
	Platform    string `json:"platform,omitempty"`
	Units       int    `json:"units,omitempty"`
	BufferBytes int64  `json:"buffer_bytes,omitempty"`
}

// Tensor is the wire form of a tensor. Data may be omitted when only the
// dtype and shape matter, as for planning.
type Tensor struct {
	DType dtype.DType `json:"dtype"`
	Shape []int64     `json:"shape"`
	Data  []float64   `json:"data,omitempty"`
}

func (t Tensor) decode() (*tensor.Tensor, error) {
	if !t.DType.Valid() {
		return nil, newInvalidRequest("tensor dtype is required")
	}
	s := shape.Shape(t.Shape)
	if err := s.Validate(); err != nil {
		return nil, newInvalidRequest(fmt.Sprintf("tensor shape: %v", err))
	}
	if t.Data == nil {
		return tensor.New(t.DType, s)
	}
	return tensor.FromFloat64(t.DType, s, t.Data)
}

func encodeTensor(t *tensor.Tensor) Tensor {
	return Tensor{DType: t.DType(), Shape: t.Shape(), Data: t.Float64s()}
}

func decodeTensors(in []Tensor) ([]*tensor.Tensor, error) {
	out := make([]*tensor.Tensor, len(in))
	for i, t := range in {
		x, err := t.decode()
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

// PlanRequest asks for a plan. Either Op with Inputs, or a raw planner
// Request, must be set; a raw request takes units and buffer size from the
// target when it leaves them zero.
type PlanRequest struct {
	Target
	Op      string          `json:"op,omitempty"`
	Inputs  []Tensor        `json:"inputs,omitempty"`
	Attrs   *ops.Attrs      `json:"attrs,omitempty"`
	Request *tiling.Request `json:"request,omitempty"`
}

// SignatureInfo summarises how an operator call was resolved.
type SignatureInfo struct {
	Compute      dtype.DType `json:"compute"`
	Out          dtype.DType `json:"out"`
	Shape        []int64     `json:"shape"`
	ElementBytes int         `json:"element_bytes"`
	WorkingSet   int         `json:"working_set"`
	Buffering    int         `json:"buffering,omitempty"`
}

func signatureInfo(sig *ops.Signature) *SignatureInfo {
	return &SignatureInfo{
		Compute:      sig.Compute,
		Out:          sig.Out,
		Shape:        sig.Shape,
		ElementBytes: sig.ElementBytes,
		WorkingSet:   sig.WorkingSet,
		Buffering:    sig.Op.Buffering,
	}
}

// PlanRecord is a stored plan.
type PlanRecord struct {
	ID        string         `json:"id"`
	Object    string         `json:"object"`
	CreatedAt int64          `json:"created_at"`
	Op        string         `json:"op,omitempty"`
	Platform  platform.Info  `json:"platform"`
	Signature *SignatureInfo `json:"signature,omitempty"`
	Plan      *tiling.Plan   `json:"plan"`
}

type DeletePlanResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// InvokeRequest runs the operator named in the path.
type InvokeRequest struct {
	Target
	Inputs []Tensor   `json:"inputs"`
	Attrs  *ops.Attrs `json:"attrs,omitempty"`
}

type InvokeResponse struct {
	Object    string         `json:"object"`
	Op        string         `json:"op"`
	Signature *SignatureInfo `json:"signature"`
	Outputs   []Tensor       `json:"outputs"`
	Plan      *tiling.Plan   `json:"plan,omitempty"`
	Stats     *kernel.Stats  `json:"stats,omitempty"`
	ElapsedNS int64          `json:"elapsed_ns"`
}

type OpInfo struct {
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Arity      int           `json:"arity"`
	Doc        string        `json:"doc"`
	DTypes     []dtype.DType `json:"dtypes"`
	AllowEmpty bool          `json:"allow_empty"`
}

type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}
