// Package grid selects the pyramid level for a zoom level and enumerates the tiles
// of that level that are visible in a viewport.
package grid

import "math"

// SelectLevel returns the pyramid level to source tiles from at the given continuous zoom level:
// the zoom level rounded half up, clamped to [0, maxLevel].
//
// Tiles of the selected level are scaled on screen by 2^(zoomLevel-level), so loaded tiles
// are reused while zooming until the rounded level itself changes.
func SelectLevel(zoomLevel float64, maxLevel int) int {
	if math.IsNaN(zoomLevel) {
		return 0
	}
	level := math.Floor(zoomLevel + 0.5)
	return int(min(max(level, 0), float64(maxLevel)))
}
