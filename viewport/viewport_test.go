package viewport_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/viewport"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func newConfig(t *testing.T) *pyramid.Config {
	t.Helper()
	cfg, err := pyramid.Load(pyramid.Metadata{Image: pyramid.Image{
		TileSize: 512,
		Size:     pyramid.Size{Width: 4096, Height: 4096},
	}})
	require.NoError(t, err)
	return cfg
}

func TestZoomAtScenario(t *testing.T) {
	v := viewport.New(newConfig(t))
	v.SetState(viewport.State{ZoomLevel: 10})

	v.ZoomAt(100, 100, 1)

	// data point (400, 400) stays under the cursor at scale factor 2
	want := viewport.State{OriginX: -100, OriginY: -100, ZoomLevel: 11}
	if diff := cmp.Diff(want, v.State(), cmpopts.EquateApprox(0, tolerance)); diff != "" {
		t.Errorf("ZoomAt mismatch (-want +got):\n%v", diff)
	}
}

func TestZoomAtKeepsPointUnderCursor(t *testing.T) {
	cfg := newConfig(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 1000 {
		v := viewport.New(cfg)
		v.SetState(viewport.State{
			OriginX:   rng.Float64()*4000 - 2000,
			OriginY:   rng.Float64()*4000 - 2000,
			ZoomLevel: rng.Float64() * float64(cfg.MaxLevel),
		})
		sx, sy := rng.Float64()*1920, rng.Float64()*1080
		delta := rng.Float64()*6 - 3

		before := v.State()
		dataX, dataY := v.ScreenToData(sx, sy)
		v.ZoomAt(sx, sy, delta)
		after := v.State()

		newScale := cfg.ScaleFactor(after.ZoomLevel)
		gotX := dataX/newScale + after.OriginX
		gotY := dataY/newScale + after.OriginY
		if math.Abs(gotX-sx) > tolerance || math.Abs(gotY-sy) > tolerance {
			t.Fatalf("ZoomAt(%v, %v, %v) from %+v: cursor maps to (%v, %v), want (%v, %v)",
				sx, sy, delta, before, gotX, gotY, sx, sy)
		}
	}
}

func TestZoomAtClamps(t *testing.T) {
	cfg := newConfig(t)
	v := viewport.New(cfg)

	v.ZoomAt(10, 10, -5)
	if got := v.State().ZoomLevel; got != 0 {
		t.Errorf("ZoomLevel = %v, want 0", got)
	}
	if got := v.State(); got.OriginX != 0 || got.OriginY != 0 {
		t.Errorf("clamped zoom moved the origin: %+v", got)
	}

	v.ZoomAt(10, 10, 100)
	if got, want := v.State().ZoomLevel, float64(cfg.MaxLevel); got != want {
		t.Errorf("ZoomLevel = %v, want %v", got, want)
	}

	v.SetState(viewport.State{ZoomLevel: math.NaN()})
	if got := v.State().ZoomLevel; got != 0 {
		t.Errorf("ZoomLevel = %v, want 0", got)
	}

	v.SetState(viewport.State{OriginX: 7, OriginY: 8, ZoomLevel: 3})
	v.SetZoom(-1)
	if diff := cmp.Diff(viewport.State{OriginX: 7, OriginY: 8}, v.State()); diff != "" {
		t.Errorf("SetZoom(-1) mismatch (-want +got):\n%s", diff)
	}
	v.SetZoom(5.5)
	if got, want := v.State().ZoomLevel, 5.5; got != want {
		t.Errorf("ZoomLevel = %v, want %v", got, want)
	}
}

func TestPanAndDrag(t *testing.T) {
	v := viewport.New(newConfig(t))

	v.PanBy(-5000, 30)
	if diff := cmp.Diff(viewport.State{OriginX: -5000, OriginY: 30}, v.State()); diff != "" {
		t.Errorf("PanBy mismatch (-want +got):\n%v", diff)
	}

	v.DragMove(100, 100) // ignored, no gesture in progress
	v.DragStart(10, 10)
	v.DragMove(15, 20)
	v.DragMove(25, 10)
	if !v.Dragging() {
		t.Errorf("Dragging() = false during gesture")
	}
	v.DragEnd()
	v.DragMove(0, 0)

	if diff := cmp.Diff(viewport.State{OriginX: -4985, OriginY: 30}, v.State()); diff != "" {
		t.Errorf("drag mismatch (-want +got):\n%v", diff)
	}
}

func TestScreenDataRoundTrip(t *testing.T) {
	v := viewport.New(newConfig(t))
	v.SetState(viewport.State{OriginX: 12.5, OriginY: -7, ZoomLevel: 9.3})

	dataX, dataY := v.ScreenToData(640, 480)
	screenX, screenY := v.DataToScreen(dataX, dataY)
	if math.Abs(screenX-640) > tolerance || math.Abs(screenY-480) > tolerance {
		t.Errorf("DataToScreen(ScreenToData(640, 480)) = (%v, %v)", screenX, screenY)
	}
}

func TestFit(t *testing.T) {
	v := viewport.New(newConfig(t))
	v.Fit(1024, 512)

	// 4096 px tall image in 512 px: scale factor 8, zoom level 9
	want := viewport.State{OriginX: 256, OriginY: 0, ZoomLevel: 9}
	if diff := cmp.Diff(want, v.State(), cmpopts.EquateApprox(0, tolerance)); diff != "" {
		t.Errorf("Fit mismatch (-want +got):\n%v", diff)
	}
}
