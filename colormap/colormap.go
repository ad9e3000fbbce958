// Package colormap maps scalar grids to colors through a palette.
package colormap

import (
	"image"
	"math"

	"github.com/eak1mov/go-tileview/decode"
)

// Index returns the palette entry for value: the value is normalized to [0,1] over [lo,hi],
// clamped, and mapped to floor(t * (len(p)-1)). It returns -1 for NaN values.
func (p Palette) Index(value, lo, hi float64) int {
	if math.IsNaN(value) || len(p) == 0 {
		return -1
	}
	t := 0.0
	if hi > lo {
		t = (value - lo) / (hi - lo)
	}
	t = min(max(t, 0), 1)
	return int(math.Floor(t * float64(len(p)-1)))
}

// Map colors a row-major grid of values. NaN values and values missing from a short
// slice stay transparent.
func Map(values []float64, width, height int, palette Palette, lo, hi float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range min(len(values), width*height) {
		k := palette.Index(values[i], lo, hi)
		if k < 0 {
			continue
		}
		c := palette[k]
		img.Pix[4*i+0] = c.R
		img.Pix[4*i+1] = c.G
		img.Pix[4*i+2] = c.B
		img.Pix[4*i+3] = c.A
	}
	return img
}

// Mapper applies a fixed palette and value range to decoded grids.
type Mapper struct {
	Palette Palette
	Min     float64
	Max     float64
}

func (m Mapper) Map(grid decode.Grid) *image.RGBA {
	return Map(grid.Values, grid.Width, grid.Height, m.Palette, m.Min, m.Max)
}
