package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/platform"
	"github.com/samcharles93/tiler/internal/shape"
	"github.com/samcharles93/tiler/internal/tensor"
	"github.com/samcharles93/tiler/internal/tiling"
)

func testEngine() *Engine {
	plat := platform.Info{Name: "test", Units: 8, BufferBytes: platform.UBSize}
	return New(plat, tiling.DefaultConfig(), nil)
}

func TestPlanOnly(t *testing.T) {
	t.Parallel()

	x, err := tensor.New(dtype.Float16, shape.Shape{2, 1024})
	require.NoError(t, err)
	y, err := tensor.New(dtype.Float16, shape.Shape{1024})
	require.NoError(t, err)

	p, sig, err := testEngine().PlanOnly(Call{Op: "mul", Inputs: []*tensor.Tensor{x, y}})
	require.NoError(t, err)
	assert.Equal(t, shape.Shape{2, 1024}, sig.Shape)
	assert.Equal(t, 2, sig.ElementBytes)
	assert.Equal(t, 3, sig.WorkingSet)

	// (196608-512)/2/32/3 = 1021 blocks of 16 halves per tile
	assert.Equal(t, 16336, p.TileElements)
	assert.Equal(t, int64(128), p.TotalBlocks)
	assert.Equal(t, 8, p.UnitCount)
	assert.Equal(t, int64(256), p.Elements[0])
	assert.NoError(t, p.Validate())
}

func TestInvokeElementwise(t *testing.T) {
	t.Parallel()

	vals := make([]float32, 5000)
	for i := range vals {
		vals[i] = float32(i)
	}
	x, err := tensor.FromSlice(shape.Shape{5000}, vals)
	require.NoError(t, err)

	res, err := testEngine().Invoke(context.Background(), Call{Op: "square", Inputs: []*tensor.Tensor{x}})
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)
	require.NotNil(t, res.Plan)
	require.NotNil(t, res.Stats)

	got := res.Outputs[0].Values().([]float32)
	for i, v := range got {
		require.Equal(t, vals[i]*vals[i], v, "element %d", i)
	}

	var covered int64
	for _, u := range res.Stats.Units {
		covered += u.Elements
	}
	assert.Equal(t, int64(5000), covered)
}

func TestInvokeScan(t *testing.T) {
	t.Parallel()

	x, err := tensor.FromSlice(shape.Shape{4}, []float32{3, 1, 2, 0})
	require.NoError(t, err)

	res, err := testEngine().Invoke(context.Background(), Call{
		Op:     "cummin",
		Inputs: []*tensor.Tensor{x},
		Attrs:  &ops.Attrs{Dim: 0},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Plan)
	require.Len(t, res.Outputs, 2)
	assert.Equal(t, []float32{3, 1, 1, 0}, res.Outputs[0].Values())
	assert.Equal(t, []int64{0, 1, 1, 3}, res.Outputs[1].Values())

	_, _, err = testEngine().PlanOnly(Call{Op: "cummin", Inputs: []*tensor.Tensor{x}})
	assert.ErrorIs(t, err, tiling.ErrUnsupportedShape)
}

func TestInvokeEmpty(t *testing.T) {
	t.Parallel()

	empty, err := tensor.New(dtype.Float32, shape.Shape{0, 4})
	require.NoError(t, err)

	_, err = testEngine().Invoke(context.Background(), Call{Op: "sqrt", Inputs: []*tensor.Tensor{empty}})
	assert.ErrorIs(t, err, tiling.ErrUnsupportedShape)

	_, err = testEngine().Invoke(context.Background(), Call{Op: "cummax", Inputs: []*tensor.Tensor{empty}})
	assert.ErrorIs(t, err, tiling.ErrUnsupportedShape)

	res, err := testEngine().Invoke(context.Background(), Call{Op: "transpose", Inputs: []*tensor.Tensor{empty}})
	require.NoError(t, err)
	assert.Equal(t, shape.Shape{4, 0}, res.Outputs[0].Shape())
	assert.Equal(t, int64(0), res.Stats.Tiles)
}

func TestInvokeErrors(t *testing.T) {
	t.Parallel()

	x, err := tensor.New(dtype.Int32, shape.Shape{8})
	require.NoError(t, err)

	_, err = testEngine().Invoke(context.Background(), Call{Op: "gelu", Inputs: []*tensor.Tensor{x}})
	assert.ErrorIs(t, err, ops.ErrUnknownOp)

	_, err = testEngine().Invoke(context.Background(), Call{Op: "sqrt", Inputs: []*tensor.Tensor{x}})
	assert.ErrorIs(t, err, tiling.ErrUnsupportedDtype)

	bad := &Engine{Platform: platform.Info{Name: "broken", Units: 0, BufferBytes: 4096}}
	f, err := tensor.New(dtype.Float32, shape.Shape{8})
	require.NoError(t, err)
	_, err = bad.Invoke(context.Background(), Call{Op: "relu", Inputs: []*tensor.Tensor{f}})
	assert.ErrorIs(t, err, tiling.ErrInvalidPlatformInfo)
}

func TestInvokeCancelled(t *testing.T) {
	t.Parallel()

	x, err := tensor.New(dtype.Float32, shape.Shape{1 << 14})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = testEngine().Invoke(ctx, Call{Op: "relu", Inputs: []*tensor.Tensor{x}})
	assert.ErrorIs(t, err, context.Canceled)
}
