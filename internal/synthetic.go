// Package internal generates synthetic pyramids for tests and demos.
package internal

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/eak1mov/go-tileview/decode"
	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/tile"
)

// Height is a smooth surface in [0,1] over the full resolution image of cfg.
func Height(cfg *pyramid.Config, x, y float64) float64 {
	u := x / float64(cfg.ImageWidth)
	v := y / float64(cfg.ImageHeight)
	return 0.5 + 0.25*math.Sin(2*math.Pi*u) + 0.25*math.Cos(2*math.Pi*v)
}

// SyntheticTile samples Height at the pixel centers of a tile.
func SyntheticTile(cfg *pyramid.Config, index tile.Index) decode.Grid {
	bounds := cfg.TileBounds(index)
	scale := cfg.ScaleFactor(float64(index.Level))
	grid := decode.Grid{
		Values: make([]float64, bounds.Dx()*bounds.Dy()),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	for y := range grid.Height {
		for x := range grid.Width {
			dataX := (float64(bounds.Min.X+x) + 0.5) * scale
			dataY := (float64(bounds.Min.Y+y) + 0.5) * scale
			grid.Values[y*grid.Width+x] = Height(cfg, dataX, dataY)
		}
	}
	return grid
}

// EncodeTile serializes a grid of values in [0,1] in the given tile format ("f32" or "png").
func EncodeTile(grid decode.Grid, format string) ([]byte, error) {
	switch format {
	case "f32":
		return decode.EncodeFloat32(grid), nil
	case "png":
		img := image.NewGray16(image.Rect(0, 0, grid.Width, grid.Height))
		for y := range grid.Height {
			for x := range grid.Width {
				v := min(max(grid.At(x, y), 0), 1)
				img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 0xffff))})
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("tileview: cannot encode synthetic tiles as %q", format)
}

// SyntheticPyramid writes every tile of every level of cfg and finalizes the writer.
// progress, if not nil, is called after each tile.
func SyntheticPyramid(cfg *pyramid.Config, writer tile.Writer, progress func(tile.Index)) error {
	for level := 0; level <= cfg.MaxLevel; level++ {
		for index := range cfg.Tiles(level) {
			data, err := EncodeTile(SyntheticTile(cfg, index), cfg.Format)
			if err != nil {
				return err
			}
			if err := writer.WriteTile(index, data); err != nil {
				return err
			}
			if progress != nil {
				progress(index)
			}
		}
	}
	return writer.Finalize()
}
