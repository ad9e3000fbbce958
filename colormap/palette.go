package colormap

import (
	"fmt"
	"image/color"
	"strings"
)

// Palette is an ordered list of colors; low values map to the first entry.
type Palette []color.RGBA

// Anchor colors sampled from the matplotlib colormaps of the same names.
var (
	viridisStops = []color.RGBA{
		{0x44, 0x01, 0x54, 0xff},
		{0x47, 0x2d, 0x7b, 0xff},
		{0x3b, 0x52, 0x8b, 0xff},
		{0x2c, 0x72, 0x8e, 0xff},
		{0x21, 0x91, 0x8c, 0xff},
		{0x28, 0xae, 0x80, 0xff},
		{0x5e, 0xc9, 0x62, 0xff},
		{0xad, 0xdc, 0x30, 0xff},
		{0xfd, 0xe7, 0x25, 0xff},
	}
	infernoStops = []color.RGBA{
		{0x00, 0x00, 0x04, 0xff},
		{0x1b, 0x0c, 0x41, 0xff},
		{0x4a, 0x0c, 0x6b, 0xff},
		{0x78, 0x1c, 0x6d, 0xff},
		{0xa5, 0x2c, 0x60, 0xff},
		{0xcf, 0x44, 0x46, 0xff},
		{0xed, 0x69, 0x25, 0xff},
		{0xfb, 0x9b, 0x06, 0xff},
		{0xf7, 0xd1, 0x3d, 0xff},
		{0xfc, 0xff, 0xa4, 0xff},
	}
	greysStops = []color.RGBA{
		{0x00, 0x00, 0x00, 0xff},
		{0xff, 0xff, 0xff, 0xff},
	}
)

var (
	Viridis = Interpolate(viridisStops, 256)
	Inferno = Interpolate(infernoStops, 256)
	Greys   = Interpolate(greysStops, 256)
)

// ByName returns one of the built-in palettes.
func ByName(name string) (Palette, error) {
	switch strings.ToLower(name) {
	case "viridis":
		return Viridis, nil
	case "inferno":
		return Inferno, nil
	case "greys", "grays", "gray":
		return Greys, nil
	}
	return nil, fmt.Errorf("tileview: unknown palette %q", name)
}

// Interpolate spreads n colors evenly over the stops, blending linearly between neighbours.
func Interpolate(stops []color.RGBA, n int) Palette {
	palette := make(Palette, n)
	if len(stops) == 0 {
		return palette
	}
	if len(stops) == 1 || n == 1 {
		for i := range palette {
			palette[i] = stops[0]
		}
		return palette
	}

	segments := float64(len(stops) - 1)
	for i := range palette {
		pos := float64(i) / float64(n-1) * segments
		k := min(int(pos), len(stops)-2)
		f := pos - float64(k)
		a, b := stops[k], stops[k+1]
		palette[i] = color.RGBA{
			R: lerp(a.R, b.R, f),
			G: lerp(a.G, b.G, f),
			B: lerp(a.B, b.B, f),
			A: lerp(a.A, b.A, f),
		}
	}
	return palette
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}
