package tile

import (
	"math/bits"

	"github.com/google/hilbert"
)

// Code maps the index to a single number, unique across all levels of a pyramid.
// Levels are laid out one after another and tiles within a level follow a Hilbert curve,
// so sorting by code keeps spatially close tiles together.
// The result is meaningless for indices that are not Valid.
func (t Index) Code() uint64 {
	h, _ := hilbert.NewHilbert(1 << t.Level)
	pos, _ := h.MapInverse(int(t.Col), int(t.Row))

	tilesCount := (uint64(1)<<(t.Level*2) - 1) / 3
	return uint64(pos) + tilesCount
}

// DecodeCode is the inverse of Index.Code.
func DecodeCode(code uint64) Index {
	level := (bits.Len64(3*code+1) - 1) / 2
	tilesCount := (uint64(1)<<(level*2) - 1) / 3

	h, _ := hilbert.NewHilbert(1 << level)
	col, row, _ := h.Map(int(code - tilesCount))

	return Index{Level: uint32(level), Row: uint32(row), Col: uint32(col)}
}
