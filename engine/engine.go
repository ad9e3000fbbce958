// Package engine drives a tiled view of a pyramid: it turns input events into viewport
// changes and, on every render tick, selects the level, resolves the visible tiles through
// the cache and draws the ready ones.
//
// An Engine is owned by a single goroutine (the UI event loop). Tile fetches run in the
// background and only report back through the cache and the redraw callback.
package engine

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/creasty/defaults"
	"github.com/eak1mov/go-tileview/cache"
	"github.com/eak1mov/go-tileview/grid"
	"github.com/eak1mov/go-tileview/pyramid"
	"github.com/eak1mov/go-tileview/viewport"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidSettings = errors.New("tileview: invalid engine settings")

// DrawSurface receives the ready tiles of a render tick, in screen coordinates.
type DrawSurface interface {
	Draw(img image.Image, x, y, width, height float64)
}

// Stats describe one render tick.
type Stats struct {
	Level   int // selected pyramid level
	Visible int // tiles intersecting the canvas
	Drawn   int // ready tiles drawn
	Pending int // tiles unloaded or loading
	Failed  int // tiles that failed to load
	Evicted int // cache entries evicted before the tick
}

type Engine struct {
	cfg      *pyramid.Config
	fetch    cache.FetchFunc
	view     *viewport.Viewport
	cache    *cache.Cache
	canvas   grid.Size
	settings Settings
	clock    func() time.Time
	logger   *slog.Logger
	level    int
}

// New creates an engine for a pyramid. fetch turns a tile index into a drawable image,
// usually pipeline.Pipeline.Fetch.
//
// The returned Engine must be closed after use to stop pending fetches.
func New(cfg *pyramid.Config, fetch cache.FetchFunc, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no pyramid", pyramid.ErrInvalidConfig)
	}
	if fetch == nil {
		return nil, errors.New("tileview: no fetch function")
	}

	config := engineConfig{
		Logger: slog.New(slog.DiscardHandler),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if err := defaults.Set(&config.Settings); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(config.Settings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	cacheOpts := []cache.Option{
		cache.WithClock(config.Clock),
		cache.WithLogger(config.Logger),
		cache.WithConcurrency(config.Settings.Concurrency),
	}
	if redraw := config.Redraw; redraw != nil {
		cacheOpts = append(cacheOpts, cache.WithNotify(func(cache.Entry) { redraw() }))
	}

	e := &Engine{
		cfg:      cfg,
		fetch:    fetch,
		view:     viewport.New(cfg),
		cache:    cache.New(cacheOpts...),
		settings: config.Settings,
		clock:    config.Clock,
		logger:   config.Logger,
		level:    -1,
	}
	if config.InitialView != nil {
		e.view.SetState(*config.InitialView)
	}
	return e, nil
}

func (e *Engine) Config() *pyramid.Config {
	return e.cfg
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Viewport gives direct access to the viewport, e.g. for programmatic navigation.
func (e *Engine) Viewport() *viewport.Viewport {
	return e.view
}

func (e *Engine) State() viewport.State {
	return e.view.State()
}

func (e *Engine) CanvasSize() grid.Size {
	return e.canvas
}

// OnWheel zooms by one step around the cursor. A positive deltaSign zooms in.
func (e *Engine) OnWheel(deltaSign, cursorX, cursorY float64) {
	switch {
	case deltaSign > 0:
		e.view.ZoomAt(cursorX, cursorY, e.settings.ZoomStep)
	case deltaSign < 0:
		e.view.ZoomAt(cursorX, cursorY, -e.settings.ZoomStep)
	}
}

func (e *Engine) OnDragStart(x, y float64) {
	e.view.DragStart(x, y)
}

func (e *Engine) OnDragMove(x, y float64) {
	e.view.DragMove(x, y)
}

func (e *Engine) OnDragEnd() {
	e.view.DragEnd()
}

// OnResize sets the canvas size. Negative sizes are treated as empty.
func (e *Engine) OnResize(width, height float64) {
	e.canvas = grid.Size{Width: max(width, 0), Height: max(height, 0)}
}

// Fit shows the whole image centered on the current canvas.
func (e *Engine) Fit() {
	if e.canvas.Width > 0 && e.canvas.Height > 0 {
		e.view.Fit(e.canvas.Width, e.canvas.Height)
	}
}

// Render runs one tick. It evicts expired tiles and selects the level, then requests the
// missing visible tiles and draws the ready ones in row-major order. It never blocks on
// fetches. Nothing is visible on an empty canvas.
func (e *Engine) Render(surface DrawSurface) Stats {
	var stats Stats
	stats.Evicted = e.cache.EvictExpired(e.clock(), e.settings.TTL)

	state := e.view.State()
	stats.Level = grid.SelectLevel(state.ZoomLevel, e.cfg.MaxLevel)
	if stats.Level != e.level {
		e.logger.Debug("tileview: level changed", "from", e.level, "to", stats.Level, "zoom", state.ZoomLevel)
		e.level = stats.Level
	}
	if e.canvas.Width == 0 || e.canvas.Height == 0 {
		return stats
	}

	for p := range grid.Placements(e.cfg, stats.Level, state, e.canvas) {
		stats.Visible++
		entry := e.cache.Get(p.Index)
		switch entry.State {
		case cache.Unloaded:
			e.cache.EnsureFetch(p.Index, e.fetch)
			stats.Pending++
		case cache.Loading:
			stats.Pending++
		case cache.Failed:
			stats.Failed++
		case cache.Ready:
			surface.Draw(entry.Payload, p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height)
			stats.Drawn++
		}
	}
	return stats
}

// Reload switches to another pyramid and fetch function, dropping every cached tile.
// The viewport keeps its origin, the zoom level is clamped to the new pyramid.
func (e *Engine) Reload(cfg *pyramid.Config, fetch cache.FetchFunc) error {
	if cfg == nil {
		return fmt.Errorf("%w: no pyramid", pyramid.ErrInvalidConfig)
	}
	if fetch != nil {
		e.fetch = fetch
	}
	e.cache.Clear()
	e.cfg = cfg
	e.view.SetConfig(cfg)
	e.level = -1
	e.logger.Debug("tileview: pyramid reloaded", "width", cfg.ImageWidth, "height", cfg.ImageHeight, "maxLevel", cfg.MaxLevel)
	return nil
}

// Tiles returns a snapshot of the cached tiles.
func (e *Engine) Tiles() []cache.Entry {
	return e.cache.Entries()
}

// Wait blocks until all started fetches complete.
func (e *Engine) Wait() {
	e.cache.Wait()
}

func (e *Engine) Close() error {
	return e.cache.Close()
}
