// Package tile provides common tile interfaces and types.
package tile

import "fmt"

// Index identifies one tile of a pyramid. Row advances along the image height,
// Col along the image width. Level 0 is the coarsest level.
type Index struct {
	Level uint32
	Row   uint32
	Col   uint32
}

// Valid reports whether the index fits the addressable grid of its level.
// A level holds at most 2^Level tiles per axis.
func (t Index) Valid() bool {
	return t.Level < 32 && t.Col < (1<<t.Level) && t.Row < (1<<t.Level)
}

// Path returns the resource locator of the tile relative to the pyramid base, "level/row_col.ext".
func (t Index) Path(ext string) string {
	return fmt.Sprintf("%d/%d_%d.%s", t.Level, t.Row, t.Col, ext)
}

func (t Index) String() string {
	return fmt.Sprintf("%d/%d_%d", t.Level, t.Row, t.Col)
}

// Writer defines an interface for writing tiles to a pyramid storage.
type Writer interface {
	// WriteTile writes a single tile to the storage.
	WriteTile(index Index, tileData []byte) error

	// Finalize completes the writing process: flushes buffers, writes indices.
	// It must be called before closing the Writer.
	Finalize() error
}

type Reader interface {
	// ReadTile reads a single tile from the storage.
	// It returns the tile data or an error if the tile cannot be read.
	// If the tile does not exist, it returns an empty slice with no error.
	ReadTile(index Index) ([]byte, error)
}

type Visitor interface {
	// VisitTiles visits all tiles in the storage, calling the visitor for each.
	// It returns an error if visiting fails.
	// Order of tiles, upfront cpu and memory consumption are implementation-defined.
	VisitTiles(visitor func(Index, []byte) error) error
}
