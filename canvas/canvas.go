// Package canvas provides an in-memory drawing surface for rendered tiles.
package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Canvas draws tiles into an RGBA image, scaling each tile to its target rectangle.
type Canvas struct {
	Image *image.RGBA

	// Scaler resamples tiles drawn at a size other than their own. Defaults to draw.ApproxBiLinear.
	Scaler draw.Scaler

	draws int
}

func New(width, height int) *Canvas {
	return &Canvas{
		Image:  image.NewRGBA(image.Rect(0, 0, width, height)),
		Scaler: draw.ApproxBiLinear,
	}
}

func (c *Canvas) Size() (width, height int) {
	bounds := c.Image.Bounds()
	return bounds.Dx(), bounds.Dy()
}

// Resize replaces the backing image; the content is lost.
func (c *Canvas) Resize(width, height int) {
	c.Image = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Fill paints the whole canvas with a single color.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.Image, c.Image.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Draw composites img over the rectangle (x, y, width, height) given in canvas pixels.
// Edges are rounded to whole pixels, parts outside of the canvas are clipped.
func (c *Canvas) Draw(img image.Image, x, y, width, height float64) {
	dr := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+width)),
		int(math.Round(y+height)),
	)
	if dr.Empty() || !dr.Overlaps(c.Image.Bounds()) {
		return
	}

	scaler := c.Scaler
	if scaler == nil {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(c.Image, dr, img, img.Bounds(), draw.Over, nil)
	c.draws++
}

// Draws returns the number of Draw calls that touched the canvas.
func (c *Canvas) Draws() int {
	return c.draws
}
