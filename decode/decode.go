// Package decode turns tile payloads into 2-D scalar grids.
package decode

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrMalformed = errors.New("tileview: malformed tile data")

// Grid is a row-major grid of scalar values with dimensions x (Width) and y (Height).
type Grid struct {
	Values []float64
	Width  int
	Height int
}

func (g Grid) At(x, y int) float64 {
	return g.Values[y*g.Width+x]
}

// Range returns the smallest and largest non-NaN values of the grid.
// It returns NaN, NaN when there are none.
func (g Grid) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range g.Values {
		if math.IsNaN(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > hi {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}

// Decoder decodes a single tile payload.
type Decoder interface {
	Decode(data []byte) (Grid, error)
}

// ForFormat returns the decoder for a pyramid tile format (file extension).
func ForFormat(format string) (Decoder, error) {
	switch strings.ToLower(format) {
	case "png", "jpg", "jpeg", "gif", "tif", "tiff":
		return Image{}, nil
	case "f32":
		return Float32{}, nil
	}
	return nil, fmt.Errorf("tileview: unsupported tile format %q", format)
}
