package grid

import (
	"iter"
	"math"

	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/viewport"
)

// Size is the size of the drawing canvas in screen pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a rectangle in screen pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Expand grows the rectangle on every side by fraction of its size.
func (r Rect) Expand(fraction float64) Rect {
	dx, dy := r.Width*fraction, r.Height*fraction
	return Rect{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Placement is a visible tile together with the screen rectangle it is drawn into.
type Placement struct {
	Index tile.Index
	Rect  Rect
}

// Placements returns the tiles of the level that intersect the canvas, in row-major order.
//
// A tile counts as visible when its screen rectangle, expanded by its own size on every side,
// overlaps [0,Width]x[0,Height]. The returned rectangles cover the actual tile extent
// (tiles in the last row or column may be smaller) expanded by the pyramid overlap.
// The sequence can be iterated any number of times.
func Placements(cfg *pyramid.Config, level int, view viewport.State, canvas Size) iter.Seq[Placement] {
	return func(yield func(Placement) bool) {
		if level < 0 || level > cfg.MaxLevel {
			return
		}

		ratio := cfg.ScaleFactor(float64(level)) / cfg.ScaleFactor(view.ZoomLevel)
		scaled := float64(cfg.TileSize) * ratio
		columns, rows := cfg.GridSize(level)

		rowFirst, rowLast := candidates(view.OriginY, scaled, canvas.Height, rows)
		colFirst, colLast := candidates(view.OriginX, scaled, canvas.Width, columns)

		for row := rowFirst; row <= rowLast; row++ {
			y := view.OriginY + float64(row)*scaled
			if !overlaps(y, scaled, canvas.Height) {
				continue
			}
			for col := colFirst; col <= colLast; col++ {
				x := view.OriginX + float64(col)*scaled
				if !overlaps(x, scaled, canvas.Width) {
					continue
				}

				index := tile.Index{Level: uint32(level), Row: uint32(row), Col: uint32(col)}
				bounds := cfg.TileBounds(index)
				rect := Rect{
					X:      x,
					Y:      y,
					Width:  float64(bounds.Dx()) * ratio,
					Height: float64(bounds.Dy()) * ratio,
				}
				if cfg.Overlap > 0 {
					rect = rect.Expand(cfg.Overlap)
				}

				if !yield(Placement{Index: index, Rect: rect}) {
					return
				}
			}
		}
	}
}

// VisibleTiles returns the indices of Placements.
func VisibleTiles(cfg *pyramid.Config, level int, view viewport.State, canvas Size) iter.Seq[tile.Index] {
	return func(yield func(tile.Index) bool) {
		for p := range Placements(cfg, level, view, canvas) {
			if !yield(p.Index) {
				return
			}
		}
	}
}

func overlaps(pos, size, extent float64) bool {
	return pos+2*size > 0 && pos-size < extent
}

// candidates narrows [0,n) to the tiles that may pass overlaps along one axis.
func candidates(origin, size, extent float64, n int) (first, last int) {
	lo := math.Floor((-origin - 2*size) / size)
	hi := math.Ceil((extent + size - origin) / size)
	first = int(min(max(lo, 0), float64(n)))
	last = int(max(min(hi, float64(n-1)), -1))
	return first, last
}
