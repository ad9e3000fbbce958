// Package mb provides API for reading and writing pyramid tiles stored in an MBTiles (sqlite) file.
//
// Tiles are keyed by zoom_level = level, tile_column = col and tile_row flipped
// bottom-up, tile_row = 2^level - 1 - row. The pyramid descriptor is stored as JSON
// in the metadata row "json".
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package mb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/tile"
)

// MetadataKey is the metadata row holding the pyramid descriptor.
const MetadataKey = "json"

// Reader implements tile.Reader and tile.Visitor for MBTiles files.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader opens an MBTiles file read-only.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

// ReadPyramid loads the pyramid descriptor stored in the file.
func (r *Reader) ReadPyramid() (*pyramid.Config, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM metadata WHERE name = ?", MetadataKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: metadata %q not found", pyramid.ErrInvalidConfig, MetadataKey)
	}
	if err != nil {
		return nil, err
	}
	return pyramid.ParseJSON([]byte(value))
}

func (r *Reader) ReadTile(index tile.Index) ([]byte, error) {
	var tileData []byte
	if err := r.stmt.QueryRow(index.Level, index.Col, flipRow(index)).Scan(&tileData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make([]byte, 0), nil
		}
		return nil, err
	}

	return tileData, nil
}

// VisitTiles visits the tiles ordered by level, then row, then column.
func (r *Reader) VisitTiles(visitor func(tile.Index, []byte) error) error {
	rows, err := r.db.Query("SELECT zoom_level, tile_column, tile_row, tile_data FROM tiles ORDER BY zoom_level, tile_row DESC, tile_column")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var index tile.Index
		var tileData []byte

		if err := rows.Scan(&index.Level, &index.Col, &index.Row, &tileData); err != nil {
			return err
		}
		index.Row = flipRow(index)

		if err := visitor(index, tileData); err != nil {
			return err
		}
	}

	return rows.Err()
}

// flipRow converts between top-down rows and MBTiles bottom-up rows, in both directions.
func flipRow(index tile.Index) uint32 {
	return (1 << index.Level) - 1 - index.Row
}
