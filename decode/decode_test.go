package decode_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/eak1mov/go-tileview/decode"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestFloat32RoundTrip(t *testing.T) {
	grid := decode.Grid{
		Values: []float64{0, 0.5, -1.25, 3, 1e6, 7},
		Width:  3,
		Height: 2,
	}

	got, err := decode.Float32{}.Decode(decode.EncodeFloat32(grid))
	require.NoError(t, err)
	if diff := cmp.Diff(grid, got); diff != "" {
		t.Errorf("Decode(EncodeFloat32) mismatch (-want +got):\n%v", diff)
	}
	if got, want := got.At(2, 1), 7.0; got != want {
		t.Errorf("At(2, 1) = %v, want %v", got, want)
	}
}

func TestFloat32Malformed(t *testing.T) {
	valid := decode.EncodeFloat32(decode.Grid{Values: []float64{1, 2, 3, 4}, Width: 2, Height: 2})

	for name, data := range map[string][]byte{
		"empty":     nil,
		"header":    valid[:6],
		"truncated": valid[:len(valid)-1],
		"trailing":  append(append([]byte{}, valid...), 0),
		"zero":      {0, 0, 0, 0, 0, 0, 0, 0},
		"huge":      {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 1, 2, 3, 4},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decode.Float32{}.Decode(data)
			if !errors.Is(err, decode.ErrMalformed) {
				t.Errorf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestImagePNG(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 0xffff})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	got, err := decode.Image{}.Decode(buf.Bytes())
	require.NoError(t, err)
	want := decode.Grid{Values: []float64{0, 1}, Width: 2, Height: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%v", diff)
	}
}

func TestImageTIFF(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Pix = []uint8{0, 51, 102, 255}

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	got, err := decode.Image{}.Decode(buf.Bytes())
	require.NoError(t, err)
	want := decode.Grid{Values: []float64{0, 0.2, 0.4, 1}, Width: 2, Height: 2}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%v", diff)
	}
}

func TestImageMalformed(t *testing.T) {
	_, err := decode.Image{}.Decode([]byte("not an image"))
	if !errors.Is(err, decode.ErrMalformed) {
		t.Errorf("Decode error = %v, want ErrMalformed", err)
	}
}

func TestRange(t *testing.T) {
	grid := decode.Grid{Values: []float64{3, math.NaN(), -2, 8}, Width: 4, Height: 1}
	lo, hi := grid.Range()
	if lo != -2 || hi != 8 {
		t.Errorf("Range() = %v, %v, want -2, 8", lo, hi)
	}

	lo, hi = decode.Grid{Values: []float64{math.NaN()}, Width: 1, Height: 1}.Range()
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Errorf("Range() = %v, %v, want NaN, NaN", lo, hi)
	}
}

func TestForFormat(t *testing.T) {
	for format, want := range map[string]decode.Decoder{
		"png":  decode.Image{},
		"TIFF": decode.Image{},
		"f32":  decode.Float32{},
	} {
		got, err := decode.ForFormat(format)
		require.NoError(t, err)
		if got != want {
			t.Errorf("ForFormat(%q) = %T, want %T", format, got, want)
		}
	}
	if _, err := decode.ForFormat("nc"); err == nil {
		t.Errorf("ForFormat(nc) succeeded")
	}
}
