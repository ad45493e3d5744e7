package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/samcharles93/tiler/internal/tiling"
)

// countKernel increments visits[offset+i] for every element it copies out.
type countKernel struct {
	visits []int32
	r      tiling.UnitRange
	buf    []int32
	calls  []string
}

func (k *countKernel) Init(r tiling.UnitRange, tileElems int) {
	k.r = r
	k.buf = make([]int32, tileElems)
}

func (k *countKernel) CopyIn(progress int64, n int) {
	k.calls = append(k.calls, "in")
	copy(k.buf[:n], k.visits[k.r.Offset+progress:])
}

func (k *countKernel) Compute(_ int64, n int) {
	k.calls = append(k.calls, "compute")
	for i := range k.buf[:n] {
		k.buf[i]++
	}
}

func (k *countKernel) CopyOut(progress int64, n int) {
	k.calls = append(k.calls, "out")
	copy(k.visits[k.r.Offset+progress:], k.buf[:n])
}

func plan(t *testing.T, total int64, eb, units int, buf int64, ws int) *tiling.Plan {
	t.Helper()
	p, err := tiling.Default().Plan(tiling.Request{
		TotalElements: total, ElementBytes: eb, Units: units, BufferBytes: buf, WorkingSet: ws,
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return p
}

func TestRunUnitOrder(t *testing.T) {
	t.Parallel()

	// 1 block per tile: 8 float32 elements per tile, 100 elements -> 13 blocks.
	p := plan(t, 100, 4, 1, 600, 25)
	k := &countKernel{visits: make([]int32, 100+p.Padding)}
	tiles := RunUnit(p, 0, k)
	if tiles != 13 {
		t.Fatalf("tiles: %d", tiles)
	}
	for i := 0; i < len(k.calls); i += 3 {
		if k.calls[i] != "in" || k.calls[i+1] != "compute" || k.calls[i+2] != "out" {
			t.Fatalf("call order broken at %d: %v", i, k.calls[i:i+3])
		}
	}
	for i := range 100 {
		if k.visits[i] != 1 {
			t.Fatalf("element %d visited %d times", i, k.visits[i])
		}
	}
	for i := 100; i < len(k.visits); i++ {
		if k.visits[i] != 0 {
			t.Fatalf("padding element %d touched", i)
		}
	}
}

func TestExecutorCoverage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int64
		eb    int
		units int
	}{
		{16384, 4, 8},
		{1009, 4, 32},
		{1, 4, 32},
		{12345, 1, 7},
		{777, 8, 48},
		{70000, 2, 16},
	}
	for _, tc := range cases {
		p := plan(t, tc.total, tc.eb, tc.units, 4096, 3)
		visits := make([]int32, tc.total+p.Padding)
		ex := &Executor{Workers: 4}
		stats, err := ex.Run(context.Background(), p, func(int) Kernel {
			return &countKernel{visits: visits}
		})
		if err != nil {
			t.Fatalf("%+v: run: %v", tc, err)
		}
		for i := range tc.total {
			if visits[i] != 1 {
				t.Fatalf("%+v: element %d visited %d times", tc, i, visits[i])
			}
		}
		var elems int64
		for _, us := range stats.Units {
			elems += us.Elements
		}
		if elems != tc.total {
			t.Fatalf("%+v: stats cover %d elements", tc, elems)
		}
	}
}

func TestEmptyPlanRunsNoTiles(t *testing.T) {
	t.Parallel()

	p, err := tiling.Default().Plan(tiling.Request{ElementBytes: 4, Units: 4, BufferBytes: 4096, WorkingSet: 3, AllowEmpty: true})
	if err != nil {
		t.Fatal(err)
	}
	k := &countKernel{}
	if n := RunUnit(p, 0, k); n != 0 || len(k.calls) != 0 {
		t.Fatalf("expected no tiles, got %d (%v)", n, k.calls)
	}
}

func TestZeroTilePanics(t *testing.T) {
	t.Parallel()

	p := plan(t, 64, 4, 2, 4096, 3)
	p.TileElements = 0
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	RunUnit(p, 0, &countKernel{})
}

type panicKernel struct{ countKernel }

func (panicKernel) Compute(int64, int) { panic("boom") }

func TestExecutorRecoversPanic(t *testing.T) {
	t.Parallel()

	p := plan(t, 4096, 4, 4, 4096, 3)
	visits := make([]int32, 4096)
	ex := &Executor{}
	_, err := ex.Run(context.Background(), p, func(u int) Kernel {
		if u == 2 {
			return &panicKernel{countKernel{visits: visits}}
		}
		return &countKernel{visits: visits}
	})
	if !errors.Is(err, ErrUnitPanic) {
		t.Fatalf("expected ErrUnitPanic, got %v", err)
	}
}

func TestExecutorCancelled(t *testing.T) {
	t.Parallel()

	p := plan(t, 4096, 4, 4, 4096, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Executor{}).Run(ctx, p, func(int) Kernel {
		return &countKernel{visits: make([]int32, 4096)}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
