// Package pyramid describes a multi-resolution tile pyramid: full image size, tile size,
// tile overlap and the levels derived from them.
package pyramid

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"iter"
	"math"
	"math/bits"

	"github.com/creasty/defaults"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidConfig = errors.New("tileview: invalid pyramid config")

// Config is the immutable geometry of a pyramid.
// Level MaxLevel holds the full resolution image, every level below halves both dimensions.
type Config struct {
	ImageWidth  int
	ImageHeight int
	TileSize    int
	Overlap     float64
	Format      string
	MaxLevel    int
}

// Load validates the descriptor and derives the maximum pyramid level.
func Load(metadata Metadata) (*Config, error) {
	if err := defaults.Set(&metadata.Image); err != nil {
		return nil, err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(metadata); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	im := metadata.Image
	return &Config{
		ImageWidth:  im.Size.Width,
		ImageHeight: im.Size.Height,
		TileSize:    im.TileSize,
		Overlap:     im.Overlap,
		Format:      im.Format,
		MaxLevel:    bits.Len(uint(max(im.Size.Width, im.Size.Height) - 1)),
	}, nil
}

// ParseJSON loads a descriptor of the form {"Image":{"TileSize":..,"Overlap":..,"Size":{"Width":..,"Height":..}}}.
func ParseJSON(data []byte) (*Config, error) {
	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return Load(metadata)
}

// ParseDZI loads a Deep Zoom XML descriptor.
// Deep Zoom stores Overlap in pixels, it is converted to a fraction of TileSize.
// The JSON form read by ParseJSON carries the fraction itself.
func ParseDZI(data []byte) (*Config, error) {
	var im Image
	if err := xml.Unmarshal(data, &im); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if im.TileSize > 0 {
		im.Overlap /= float64(im.TileSize)
	}
	return Load(Metadata{Image: im})
}

// Metadata converts the config back into a descriptor.
func (c *Config) Metadata() Metadata {
	return Metadata{Image: Image{
		Format:   c.Format,
		Overlap:  c.Overlap,
		TileSize: c.TileSize,
		Size:     Size{Width: c.ImageWidth, Height: c.ImageHeight},
	}}
}

// ScaleFactor returns the number of full resolution pixels per screen pixel at the given zoom level.
// The zoom level is not clamped.
func (c *Config) ScaleFactor(zoomLevel float64) float64 {
	return math.Exp2(float64(c.MaxLevel) - zoomLevel)
}

// LevelSize returns the pixel size of the whole image at the given level.
func (c *Config) LevelSize(level int) (width, height int) {
	shift := uint(c.MaxLevel - level)
	return ceilShift(c.ImageWidth, shift), ceilShift(c.ImageHeight, shift)
}

// GridSize returns the number of tile columns and rows at the given level.
func (c *Config) GridSize(level int) (columns, rows int) {
	width, height := c.LevelSize(level)
	return ceilDiv(width, c.TileSize), ceilDiv(height, c.TileSize)
}

// TileBounds returns the pixel rectangle covered by the tile in the coordinates of its level.
// Tiles in the last row or column may be smaller than TileSize.
func (c *Config) TileBounds(index tile.Index) image.Rectangle {
	width, height := c.LevelSize(int(index.Level))
	x0 := int(index.Col) * c.TileSize
	y0 := int(index.Row) * c.TileSize
	return image.Rect(x0, y0, min(x0+c.TileSize, width), min(y0+c.TileSize, height))
}

// Contains reports whether the index addresses an existing tile of the pyramid.
func (c *Config) Contains(index tile.Index) bool {
	if int(index.Level) > c.MaxLevel {
		return false
	}
	columns, rows := c.GridSize(int(index.Level))
	return int(index.Col) < columns && int(index.Row) < rows
}

// Tiles returns all tile indices of a level in row-major order.
func (c *Config) Tiles(level int) iter.Seq[tile.Index] {
	return func(yield func(tile.Index) bool) {
		if level < 0 || level > c.MaxLevel {
			return
		}
		columns, rows := c.GridSize(level)
		for row := range rows {
			for col := range columns {
				if !yield(tile.Index{Level: uint32(level), Row: uint32(row), Col: uint32(col)}) {
					return
				}
			}
		}
	}
}

func ceilShift(v int, shift uint) int {
	return (v + (1 << shift) - 1) >> shift
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
