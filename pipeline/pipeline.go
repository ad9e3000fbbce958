// Package pipeline turns tile indices into drawable images: it reads the tile bytes
// from a storage, decodes them into a scalar grid and colors the grid.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/eak1mov/go-tileview/colormap"
	"github.com/eak1mov/go-tileview/decode"
	"github.com/eak1mov/go-tileview/tile"
)

var ErrTileMissing = errors.New("tileview: tile not found")

// Colorizer maps a decoded grid to an image.
type Colorizer interface {
	Map(grid decode.Grid) *image.RGBA
}

// Pipeline is safe for concurrent use if its Reader is.
type Pipeline struct {
	reader    tile.Reader
	decoder   decode.Decoder
	colorizer Colorizer
}

func New(reader tile.Reader, decoder decode.Decoder, colorizer Colorizer) *Pipeline {
	return &Pipeline{reader: reader, decoder: decoder, colorizer: colorizer}
}

// NewDefault builds a pipeline for a tile format with a palette over [lo,hi].
func NewDefault(reader tile.Reader, format string, palette colormap.Palette, lo, hi float64) (*Pipeline, error) {
	decoder, err := decode.ForFormat(format)
	if err != nil {
		return nil, err
	}
	return New(reader, decoder, colormap.Mapper{Palette: palette, Min: lo, Max: hi}), nil
}

// Fetch has the signature of cache.FetchFunc.
func (p *Pipeline) Fetch(ctx context.Context, index tile.Index) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := p.reader.ReadTile(index)
	if err != nil {
		return nil, fmt.Errorf("tileview: read tile %v: %w", index, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrTileMissing, index)
	}

	grid, err := p.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("tileview: decode tile %v: %w", index, err)
	}
	return p.colorizer.Map(grid), nil
}
