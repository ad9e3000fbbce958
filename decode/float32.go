package decode

import (
	"encoding/binary"
	"fmt"
	"math"
)

const float32HeaderLength = 8

// Float32 decodes scalar tiles stored as a little-endian header of two uint32
// (x size, y size) followed by x*y float32 values in row-major order.
type Float32 struct{}

func (Float32) Decode(data []byte) (Grid, error) {
	if len(data) < float32HeaderLength {
		return Grid{}, fmt.Errorf("%w: %v bytes, header needs %v", ErrMalformed, len(data), float32HeaderLength)
	}
	width := int(binary.LittleEndian.Uint32(data[0:4]))
	height := int(binary.LittleEndian.Uint32(data[4:8]))
	body := data[float32HeaderLength:]

	// division first, the product may overflow for garbage headers
	if width == 0 || height == 0 || len(body)/4/width < height || len(body) != width*height*4 {
		return Grid{}, fmt.Errorf("%w: %vx%v grid in %v bytes", ErrMalformed, width, height, len(body))
	}

	grid := Grid{Values: make([]float64, width*height), Width: width, Height: height}
	for i := range grid.Values {
		grid.Values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:])))
	}
	return grid, nil
}

// EncodeFloat32 serializes a grid in the format read by Float32.
func EncodeFloat32(grid Grid) []byte {
	data := make([]byte, float32HeaderLength+4*len(grid.Values))
	binary.LittleEndian.PutUint32(data[0:4], uint32(grid.Width))
	binary.LittleEndian.PutUint32(data[4:8], uint32(grid.Height))
	for i, v := range grid.Values {
		binary.LittleEndian.PutUint32(data[float32HeaderLength+i*4:], math.Float32bits(float32(v)))
	}
	return data
}
