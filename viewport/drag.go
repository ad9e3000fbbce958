package viewport

// DragStart begins a drag gesture at the given screen point.
func (v *Viewport) DragStart(x, y float64) {
	v.dragging = true
	v.dragX, v.dragY = x, y
}

// DragMove pans by the distance moved since the previous drag point.
// It does nothing outside of a drag gesture.
func (v *Viewport) DragMove(x, y float64) {
	if !v.dragging {
		return
	}
	v.PanBy(x-v.dragX, y-v.dragY)
	v.dragX, v.dragY = x, y
}

func (v *Viewport) DragEnd() {
	v.dragging = false
}

func (v *Viewport) Dragging() bool {
	return v.dragging
}
