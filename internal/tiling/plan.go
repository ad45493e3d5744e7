package tiling

import "fmt"

// UnitProfile is one row of the plan: the parameters shared by every unit
// of the same class.
type UnitProfile struct {
	Blocks   int64 `json:"blocks"`
	Elements int64 `json:"elements"`
	Tiles    int64 `json:"tiles"`
	Tail     int64 `json:"tail"`
}

// Plan is the static partition of one operator invocation. It is computed
// once by a Planner and read, never written, by every unit.
//
// Units [0, BigUnits) hold one block more than the rest. Per-unit element
// counts are whole blocks, so the final unit may extend Padding elements
// past the end of the tensor; UnitRange.Valid excludes them.
type Plan struct {
	TotalElements int64 `json:"total_elements"`
	ElementBytes  int   `json:"element_bytes"`
	UnitCount     int   `json:"unit_count"`
	TileElements  int   `json:"tile_elements"`
	BlocksPerTile int   `json:"blocks_per_tile"`
	TotalBlocks   int64 `json:"total_blocks"`
	BigUnits      int   `json:"big_units"`
	Padding       int64 `json:"padding"`

	Small UnitProfile `json:"small"`
	Big   UnitProfile `json:"big"`

	Elements []int64 `json:"elements"`
	Tiles    []int64 `json:"tiles"`
	Tails    []int64 `json:"tails"`
}

// UnitRange is a unit's window into the flat tensor.
type UnitRange struct {
	Unit     int   `json:"unit"`
	Offset   int64 `json:"offset"`
	Elements int64 `json:"elements"`
	Tiles    int64 `json:"tiles"`
	Tail     int64 `json:"tail"`
	// Valid is Elements minus any padding that falls past the tensor end.
	Valid int64 `json:"valid"`
}

// Tile returns the unit-local start and length of tile i. The last tile is
// Tail elements long, and every tile is clipped to Valid, so n is zero for
// a tile that lies wholly in padding.
func (r UnitRange) Tile(i int64, tileElems int) (start int64, n int) {
	start = i * int64(tileElems)
	size := int64(tileElems)
	if i == r.Tiles-1 {
		size = r.Tail
	}
	if start+size > r.Valid {
		size = max(r.Valid-start, 0)
	}
	return start, int(size)
}

// IsBig reports whether unit id received the extra block.
func (p *Plan) IsBig(id int) bool { return id < p.BigUnits }

// Offset returns the global element index of unit id's first element.
func (p *Plan) Offset(id int) int64 {
	if id < p.BigUnits {
		return p.Big.Elements * int64(id)
	}
	return p.Big.Elements*int64(p.BigUnits) + p.Small.Elements*int64(id-p.BigUnits)
}

// Unit returns the range owned by unit id. It panics if id is out of range.
func (p *Plan) Unit(id int) UnitRange {
	if id < 0 || id >= p.UnitCount {
		panic(fmt.Sprintf("tiling: unit %d out of range [0,%d)", id, p.UnitCount))
	}
	off := p.Offset(id)
	valid := p.Elements[id]
	if rest := p.TotalElements - off; rest < valid {
		valid = max(rest, 0)
	}
	return UnitRange{
		Unit:     id,
		Offset:   off,
		Elements: p.Elements[id],
		Tiles:    p.Tiles[id],
		Tail:     p.Tails[id],
		Valid:    valid,
	}
}

// Units returns every unit range in id order.
func (p *Plan) Units() []UnitRange {
	out := make([]UnitRange, p.UnitCount)
	for i := range out {
		out[i] = p.Unit(i)
	}
	return out
}

// Clone returns a deep copy.
func (p *Plan) Clone() *Plan {
	c := *p
	c.Elements = append([]int64(nil), p.Elements...)
	c.Tiles = append([]int64(nil), p.Tiles...)
	c.Tails = append([]int64(nil), p.Tails...)
	return &c
}

// Validate checks the structural invariants of a plan.
func (p *Plan) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInconsistentPlan, fmt.Sprintf(format, args...))
	}
	switch {
	case p.UnitCount < 1:
		return bad("unit count %d", p.UnitCount)
	case p.TileElements < 1:
		return bad("tile elements %d", p.TileElements)
	case p.BlocksPerTile < 1:
		return bad("blocks per tile %d", p.BlocksPerTile)
	case p.ElementBytes < 1:
		return bad("element bytes %d", p.ElementBytes)
	case p.TotalElements < 0 || p.Padding < 0:
		return bad("negative element counts")
	case p.BigUnits < 0 || p.BigUnits >= p.UnitCount:
		return bad("big units %d of %d", p.BigUnits, p.UnitCount)
	}
	if len(p.Elements) != p.UnitCount || len(p.Tiles) != p.UnitCount || len(p.Tails) != p.UnitCount {
		return bad("per-unit arrays sized %d/%d/%d for %d units",
			len(p.Elements), len(p.Tiles), len(p.Tails), p.UnitCount)
	}

	var sum int64
	tile := int64(p.TileElements)
	for u := range p.UnitCount {
		want := p.Small
		if p.IsBig(u) {
			want = p.Big
		}
		if p.Elements[u] != want.Elements || p.Tiles[u] != want.Tiles || p.Tails[u] != want.Tail {
			return bad("unit %d does not match its profile", u)
		}
		if p.Elements[u] > 0 {
			if p.Tiles[u] < 1 {
				return bad("unit %d has elements but no tiles", u)
			}
			if got := p.Elements[u] - tile*(p.Tiles[u]-1); got != p.Tails[u] {
				return bad("unit %d tail %d, want %d", u, p.Tails[u], got)
			}
		}
		sum += p.Elements[u]
	}
	if sum-p.Padding != p.TotalElements {
		return bad("units cover %d elements with %d padding, tensor has %d", sum, p.Padding, p.TotalElements)
	}
	return nil
}

func (p *Plan) String() string {
	return fmt.Sprintf("plan total=%d eb=%d units=%d tile=%d blocks/tile=%d blocks=%d big=%d pad=%d",
		p.TotalElements, p.ElementBytes, p.UnitCount, p.TileElements, p.BlocksPerTile,
		p.TotalBlocks, p.BigUnits, p.Padding)
}
