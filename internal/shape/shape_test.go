package shape

import (
	"errors"
	"testing"
)

func TestNumElementsAndStrides(t *testing.T) {
	t.Parallel()

	s := Shape{2, 3, 4}
	if got := s.NumElements(); got != 24 {
		t.Fatalf("elements: got %d want 24", got)
	}
	st := s.Strides()
	want := []int64{12, 4, 1}
	for i := range want {
		if st[i] != want[i] {
			t.Fatalf("strides: got %v want %v", st, want)
		}
	}
	if got := (Shape{}).NumElements(); got != 1 {
		t.Fatalf("scalar elements: got %d want 1", got)
	}
	if got := (Shape{4, 0, 2}).NumElements(); got != 0 {
		t.Fatalf("empty elements: got %d want 0", got)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]Shape{
		"2,3,4":   {2, 3, 4},
		"[8x128]": {8, 128},
		"16384":   {16384},
		"":        {},
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: got %s want %s", in, got, want)
		}
	}
	if _, err := Parse("2,-1"); err == nil {
		t.Fatalf("expected error for negative dim")
	}
	if _, err := Parse("1,2,3,4,5,6,7,8,9,10,11"); !errors.Is(err, ErrRank) {
		t.Fatalf("expected ErrRank, got %v", err)
	}
}

func TestBroadcast(t *testing.T) {
	t.Parallel()

	got, err := Broadcast(Shape{4, 1, 3}, Shape{5, 1})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if !got.Equal(Shape{4, 5, 3}) {
		t.Fatalf("broadcast: got %s", got)
	}
	if _, err := Broadcast(Shape{2, 3}, Shape{4, 3}); !errors.Is(err, ErrBroadcast) {
		t.Fatalf("expected ErrBroadcast, got %v", err)
	}
}

func TestBroadcastMapper(t *testing.T) {
	t.Parallel()

	out := Shape{2, 3}
	m, err := BroadcastMapper(out, out)
	if err != nil || m != nil {
		t.Fatalf("same shape should map to nil, got err=%v", err)
	}

	// row vector [3] broadcast over 2 rows
	m, err = BroadcastMapper(Shape{3}, out)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	want := []int64{0, 1, 2, 0, 1, 2}
	for i, w := range want {
		if got := m(int64(i)); got != w {
			t.Fatalf("row map %d: got %d want %d", i, got, w)
		}
	}

	// column [2,1] broadcast over 3 columns
	m, err = BroadcastMapper(Shape{2, 1}, out)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	want = []int64{0, 0, 0, 1, 1, 1}
	for i, w := range want {
		if got := m(int64(i)); got != w {
			t.Fatalf("col map %d: got %d want %d", i, got, w)
		}
	}

	m, err = BroadcastMapper(Shape{1}, out)
	if err != nil || m(5) != 0 {
		t.Fatalf("scalar map: err=%v", err)
	}

	if _, err := BroadcastMapper(Shape{4}, out); !errors.Is(err, ErrBroadcast) {
		t.Fatalf("expected ErrBroadcast, got %v", err)
	}
}

func TestPermute(t *testing.T) {
	t.Parallel()

	src := Shape{2, 3}
	out, m, err := Permute(src, []int{1, 0})
	if err != nil {
		t.Fatalf("permute: %v", err)
	}
	if !out.Equal(Shape{3, 2}) {
		t.Fatalf("out shape: got %s", out)
	}
	// out[i][j] = src[j][i]
	want := []int64{0, 3, 1, 4, 2, 5}
	for i, w := range want {
		if got := m(int64(i)); got != w {
			t.Fatalf("map %d: got %d want %d", i, got, w)
		}
	}

	out, m, err = Permute(Shape{2, 3, 4}, []int{0, 1, -1})
	if err != nil || m != nil || !out.Equal(Shape{2, 3, 4}) {
		t.Fatalf("identity permute: out=%s err=%v", out, err)
	}

	for _, bad := range [][]int{{0, 0}, {0}, {0, 2}} {
		if _, _, err := Permute(src, bad); !errors.Is(err, ErrPerm) {
			t.Fatalf("perm %v: expected ErrPerm, got %v", bad, err)
		}
	}
}
