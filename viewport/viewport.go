// Package viewport holds the pan offset and the zoom level of a view onto a pyramid
// and implements the pan and zoom transforms.
//
// Screen and data coordinates are related by
//
//	data = (screen - origin) * ScaleFactor(zoomLevel)
//
// where data coordinates are full resolution image pixels.
package viewport

import (
	"math"

	"github.com/eak1mov/go-tileview/pyramid"
)

// State is a snapshot of the viewport.
type State struct {
	OriginX   float64
	OriginY   float64
	ZoomLevel float64
}

// Viewport is the single source of truth for what is currently shown.
// It is not safe for concurrent use.
type Viewport struct {
	cfg   *pyramid.Config
	state State

	dragging bool
	dragX    float64
	dragY    float64
}

// New creates a viewport at zoom level 0 with the image origin in the top left screen corner.
func New(cfg *pyramid.Config) *Viewport {
	return &Viewport{cfg: cfg}
}

func (v *Viewport) State() State {
	return v.state
}

// SetState replaces the viewport state. The zoom level is clamped to the pyramid levels.
func (v *Viewport) SetState(s State) {
	s.ZoomLevel = v.clamp(s.ZoomLevel)
	v.state = s
}

// SetConfig switches the viewport to another pyramid, keeping origin and clamping the zoom level.
func (v *Viewport) SetConfig(cfg *pyramid.Config) {
	v.cfg = cfg
	v.state.ZoomLevel = v.clamp(v.state.ZoomLevel)
}

func (v *Viewport) ScaleFactor() float64 {
	return v.cfg.ScaleFactor(v.state.ZoomLevel)
}

// SetZoom sets the zoom level keeping the origin.
func (v *Viewport) SetZoom(zoomLevel float64) {
	v.state.ZoomLevel = v.clamp(zoomLevel)
}

// PanBy moves the data origin by the given screen offset. Panning is unconstrained.
func (v *Viewport) PanBy(dx, dy float64) {
	v.state.OriginX += dx
	v.state.OriginY += dy
}

// ZoomAt changes the zoom level by delta keeping the data point under (screenX, screenY) in place.
func (v *Viewport) ZoomAt(screenX, screenY, delta float64) {
	dataX, dataY := v.ScreenToData(screenX, screenY)

	v.state.ZoomLevel = v.clamp(v.state.ZoomLevel + delta)

	newScale := v.ScaleFactor()
	v.state.OriginX = screenX - dataX/newScale
	v.state.OriginY = screenY - dataY/newScale
}

// Fit picks the zoom level that shows the whole image on a canvas of the given size and centers it.
func (v *Viewport) Fit(canvasWidth, canvasHeight float64) {
	ratio := max(float64(v.cfg.ImageWidth)/canvasWidth, float64(v.cfg.ImageHeight)/canvasHeight)
	v.state.ZoomLevel = v.clamp(float64(v.cfg.MaxLevel) - math.Log2(ratio))

	scale := v.ScaleFactor()
	v.state.OriginX = (canvasWidth - float64(v.cfg.ImageWidth)/scale) / 2
	v.state.OriginY = (canvasHeight - float64(v.cfg.ImageHeight)/scale) / 2
}

func (v *Viewport) ScreenToData(screenX, screenY float64) (dataX, dataY float64) {
	scale := v.ScaleFactor()
	return (screenX - v.state.OriginX) * scale, (screenY - v.state.OriginY) * scale
}

func (v *Viewport) DataToScreen(dataX, dataY float64) (screenX, screenY float64) {
	scale := v.ScaleFactor()
	return dataX/scale + v.state.OriginX, dataY/scale + v.state.OriginY
}

func (v *Viewport) clamp(zoomLevel float64) float64 {
	if math.IsNaN(zoomLevel) {
		return 0
	}
	return min(max(zoomLevel, 0), float64(v.cfg.MaxLevel))
}
