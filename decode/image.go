package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// Image decodes raster images (PNG, JPEG, GIF, TIFF) into their luminance, scaled to [0,1].
type Image struct{}

func (Image) Decode(data []byte) (Grid, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return FromImage(img), nil
}

// FromImage converts any image into a grid of its 16-bit luminance scaled to [0,1].
func FromImage(img image.Image) Grid {
	bounds := img.Bounds()
	grid := Grid{
		Values: make([]float64, bounds.Dx()*bounds.Dy()),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	for y := range grid.Height {
		for x := range grid.Width {
			gray := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			grid.Values[y*grid.Width+x] = float64(gray.Y) / 0xffff
		}
	}
	return grid
}
