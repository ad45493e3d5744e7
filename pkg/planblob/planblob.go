// Package planblob is the fixed binary layout a partition plan takes when it
// crosses the host/device boundary.
//
// All fields are little-endian and 8-byte aligned:
//
//	offset size  field
//	0      4     magic "TPL\0"
//	4      2     major
//	6      2     minor
//	8      4     size (total blob bytes)
//	12     4     unit capacity (32)
//	16     8     total elements
//	24     8     total blocks
//	32     8     padding elements
//	40     4×6   element bytes, unit count, tile elements, blocks per tile,
//	             big units, reserved
//	64     8×4   small profile: blocks, elements, tiles, tail
//	96     8×4   big profile: blocks, elements, tiles, tail
//	128    8×32  per-unit elements
//	384    8×32  per-unit tiles
//	640    8×32  per-unit tails
//	896          end
//
// Unused per-unit slots are zero.
package planblob

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/samcharles93/tiler/internal/tiling"
	"github.com/samcharles93/tiler/internal/version"
)

const (
	Magic = "TPL\x00"

	// CurrentMajor changes only on layout breaks.
	CurrentMajor = version.BlobMajor
	CurrentMinor = version.BlobMinor

	// UnitCapacity is the length of every per-unit array.
	UnitCapacity = 32
)

// Header is the fixed 16-byte prefix of a blob.
type Header struct {
	Magic   [4]byte
	Major   uint16
	Minor   uint16
	Size    uint32
	UnitCap uint32
}

type profile struct {
	Blocks   int64
	Elements int64
	Tiles    int64
	Tail     int64
}

type body struct {
	TotalElements int64
	TotalBlocks   int64
	Padding       int64

	ElementBytes  int32
	UnitCount     int32
	TileElements  int32
	BlocksPerTile int32
	BigUnits      int32
	Reserved      int32

	Small profile
	Big   profile

	Elements [UnitCapacity]int64
	Tiles    [UnitCapacity]int64
	Tails    [UnitCapacity]int64
}

var (
	headerSize = binary.Size(Header{})
	// Size is the encoded length of every blob.
	Size = headerSize + binary.Size(body{})
)

// Valid reports whether the header carries the blob magic and a sane size.
func (h *Header) Valid() bool {
	return string(h.Magic[:]) == Magic && int(h.Size) == Size && h.UnitCap == UnitCapacity
}

// Compatible reports whether this build can read the blob's layout.
func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor
}

// Encode serialises p. Plans with more than UnitCapacity units, or with a
// count too wide for its 32-bit field, are rejected.
func Encode(p *tiling.Plan) ([]byte, error) {
	if p.UnitCount > UnitCapacity || len(p.Elements) > UnitCapacity {
		return nil, fmt.Errorf("%w: %d units, capacity %d", ErrTooManyUnits, p.UnitCount, UnitCapacity)
	}

	for _, f := range []struct {
		name string
		v    int
	}{
		{"element bytes", p.ElementBytes},
		{"tile elements", p.TileElements},
		{"blocks per tile", p.BlocksPerTile},
		{"big units", p.BigUnits},
	} {
		if f.v < math.MinInt32 || f.v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %s %d", ErrFieldOverflow, f.name, f.v)
		}
	}

	hdr := Header{
		Major:   CurrentMajor,
		Minor:   CurrentMinor,
		Size:    uint32(Size),
		UnitCap: UnitCapacity,
	}
	copy(hdr.Magic[:], Magic)

	b := body{
		TotalElements: p.TotalElements,
		TotalBlocks:   p.TotalBlocks,
		Padding:       p.Padding,
		ElementBytes:  int32(p.ElementBytes),
		UnitCount:     int32(p.UnitCount),
		TileElements:  int32(p.TileElements),
		BlocksPerTile: int32(p.BlocksPerTile),
		BigUnits:      int32(p.BigUnits),
		Small:         profile(p.Small),
		Big:           profile(p.Big),
	}
	copy(b.Elements[:], p.Elements)
	copy(b.Tiles[:], p.Tiles)
	copy(b.Tails[:], p.Tails)

	var buf bytes.Buffer
	buf.Grow(Size)
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, &b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeHeader reads only the fixed prefix.
func DecodeHeader(data []byte) (Header, error) {
	var hdr Header
	if len(data) < headerSize {
		return hdr, ErrCorruptBlob
	}
	if _, err := binary.Decode(data[:headerSize], binary.LittleEndian, &hdr); err != nil {
		return hdr, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if string(hdr.Magic[:]) != Magic {
		return hdr, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return hdr, fmt.Errorf("%w: %d", ErrUnsupportedMajor, hdr.Major)
	}
	if !hdr.Valid() || len(data) < int(hdr.Size) {
		return hdr, ErrCorruptBlob
	}
	return hdr, nil
}

// Decode parses a blob and checks the plan's invariants.
func Decode(data []byte) (*tiling.Plan, error) {
	if _, err := DecodeHeader(data); err != nil {
		return nil, err
	}

	var b body
	if _, err := binary.Decode(data[headerSize:Size], binary.LittleEndian, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	n := int(b.UnitCount)
	if n < 1 || n > UnitCapacity {
		return nil, fmt.Errorf("%w: unit count %d", ErrCorruptBlob, n)
	}

	p := &tiling.Plan{
		TotalElements: b.TotalElements,
		ElementBytes:  int(b.ElementBytes),
		UnitCount:     n,
		TileElements:  int(b.TileElements),
		BlocksPerTile: int(b.BlocksPerTile),
		TotalBlocks:   b.TotalBlocks,
		BigUnits:      int(b.BigUnits),
		Padding:       b.Padding,
		Small:         tiling.UnitProfile(b.Small),
		Big:           tiling.UnitProfile(b.Big),
		Elements:      append([]int64(nil), b.Elements[:n]...),
		Tiles:         append([]int64(nil), b.Tiles[:n]...),
		Tails:         append([]int64(nil), b.Tails[:n]...),
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	return p, nil
}
