package engine

import (
	"log/slog"
	"time"

	"github.com/eak1mov/go-tileview/viewport"
)

// Settings are the tunables of an engine.
type Settings struct {
	// TTL is how long a tile stays cached after it was last visible.
	TTL time.Duration `default:"1m" validate:"gt=0"`
	// ZoomStep is the zoom level change of one wheel notch.
	ZoomStep float64 `default:"0.25" validate:"gt=0,lte=4"`
	// Concurrency bounds the number of tile fetches in flight.
	Concurrency int `default:"6" validate:"gte=1"`
}

type engineConfig struct {
	Settings    Settings
	Logger      *slog.Logger
	Clock       func() time.Time
	Redraw      func()
	InitialView *viewport.State
}

type Option func(*engineConfig)

func WithTTL(ttl time.Duration) Option {
	return func(c *engineConfig) { c.Settings.TTL = ttl }
}

func WithZoomStep(step float64) Option {
	return func(c *engineConfig) { c.Settings.ZoomStep = step }
}

func WithConcurrency(n int) Option {
	return func(c *engineConfig) { c.Settings.Concurrency = n }
}

func WithSettings(s Settings) Option {
	return func(c *engineConfig) { c.Settings = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) { c.Logger = logger }
}

func WithClock(clock func() time.Time) Option {
	return func(c *engineConfig) { c.Clock = clock }
}

// WithRedraw sets a callback invoked after every tile fetch completes, from the fetching goroutine.
// A typical callback schedules a Render on the event loop.
func WithRedraw(redraw func()) Option {
	return func(c *engineConfig) { c.Redraw = redraw }
}

// WithInitialView sets the viewport state of a new engine.
func WithInitialView(state viewport.State) Option {
	return func(c *engineConfig) { c.InitialView = &state }
}
