// Package cache provides an in-memory tile cache with lazy, deduplicated fetching
// and time-based eviction.
//
// Every entry goes through Unloaded -> Loading -> Ready or Failed and never leaves
// Ready or Failed other than by eviction. A fetch is started only for Unloaded entries,
// and the entry is switched to Loading before the fetch starts, so at most one fetch
// per tile is in flight.
package cache

import (
	"cmp"
	"context"
	"errors"
	"image"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/eak1mov/go-tileview/tile"
	"golang.org/x/sync/semaphore"
)

type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Entry is a snapshot of a cached tile.
type Entry struct {
	Index        tile.Index
	State        State
	Payload      image.Image // set for Ready entries
	Err          error       // set for Failed entries
	LastAccessed time.Time
}

// FetchFunc turns a tile index into a drawable payload.
type FetchFunc func(ctx context.Context, index tile.Index) (image.Image, error)

// Cache is safe for concurrent use. Fetches run in their own goroutines and hand
// their results back under the cache lock.
type Cache struct {
	mu      sync.Mutex
	entries map[tile.Index]*Entry

	clock  func() time.Time
	logger *slog.Logger
	notify func(Entry)

	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type cacheConfig struct {
	Clock       func() time.Time
	Logger      *slog.Logger
	Concurrency int
	Notify      func(Entry)
}

type Option func(*cacheConfig)

// WithClock sets the time source used to stamp accesses. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *cacheConfig) { c.Clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *cacheConfig) { c.Logger = logger }
}

// WithConcurrency limits the number of fetches running at the same time.
func WithConcurrency(n int) Option {
	return func(c *cacheConfig) { c.Concurrency = n }
}

// WithNotify registers a callback invoked after a fetch has settled an entry as Ready or Failed.
// It is called from the fetching goroutine, outside of the cache lock.
func WithNotify(notify func(Entry)) Option {
	return func(c *cacheConfig) { c.Notify = notify }
}

func New(opts ...Option) *Cache {
	config := cacheConfig{
		Clock:       time.Now,
		Logger:      slog.New(slog.DiscardHandler),
		Concurrency: 6,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries: make(map[tile.Index]*Entry),
		clock:   config.Clock,
		logger:  config.Logger,
		notify:  config.Notify,
		sem:     semaphore.NewWeighted(int64(config.Concurrency)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Get returns the entry for the index, creating an Unloaded one if absent.
// It never blocks on a fetch and refreshes the access time of the entry.
func (c *Cache) Get(index tile.Index) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(index)
	e.LastAccessed = c.clock()
	return *e
}

// Peek returns the entry for the index without creating it or refreshing its access time.
func (c *Cache) Peek(index tile.Index) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[index]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// EnsureFetch starts fetching the tile if its entry is Unloaded (or absent) and reports
// whether a fetch was started. Entries in any other state are left untouched.
func (c *Cache) EnsureFetch(index tile.Index, fetch FetchFunc) bool {
	c.mu.Lock()
	e := c.lookup(index)
	if e.State != Unloaded {
		c.mu.Unlock()
		return false
	}
	e.State = Loading
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(e, fetch)
	return true
}

func (c *Cache) run(e *Entry, fetch FetchFunc) {
	defer c.wg.Done()

	if err := c.sem.Acquire(c.ctx, 1); err != nil {
		c.complete(e, nil, err)
		return
	}
	payload, err := fetch(c.ctx, e.Index)
	c.sem.Release(1)

	c.complete(e, payload, err)
}

func (c *Cache) complete(e *Entry, payload image.Image, err error) {
	c.mu.Lock()
	if c.entries[e.Index] != e {
		c.mu.Unlock()
		c.logger.Debug("tileview: dropping fetch result for evicted tile", "tile", e.Index, "error", err)
		return
	}
	if err != nil {
		e.State = Failed
		e.Err = err
	} else {
		e.State = Ready
		e.Payload = payload
	}
	snapshot := *e
	c.mu.Unlock()

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		c.logger.Log(context.Background(), level, "tileview: tile fetch failed", "tile", e.Index, "error", err)
	}
	if c.notify != nil {
		c.notify(snapshot)
	}
}

// EvictExpired removes every entry not accessed for longer than ttl, whatever its state.
// In-flight fetches of evicted entries keep running, their results are dropped.
// It returns the number of removed entries.
func (c *Cache) EvictExpired(now time.Time, ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for index, e := range c.entries {
		if now.Sub(e.LastAccessed) > ttl {
			delete(c.entries, index)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Debug("tileview: evicted tiles", "count", evicted, "remaining", len(c.entries))
	}
	return evicted
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Entries returns snapshots of all entries ordered by level, then along the Hilbert curve.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	result := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, *e)
	}
	c.mu.Unlock()

	slices.SortFunc(result, func(a, b Entry) int {
		return cmp.Compare(a.Index.Code(), b.Index.Code())
	})
	return result
}

// Wait blocks until all started fetches have completed.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close cancels the context passed to running fetches and waits for them to return.
// Fetches that have not started yet fail with context.Canceled.
func (c *Cache) Close() error {
	c.cancel()
	c.wg.Wait()
	return nil
}

// lookup returns the entry for the index, inserting an Unloaded one. c.mu must be held.
func (c *Cache) lookup(index tile.Index) *Entry {
	e, ok := c.entries[index]
	if !ok {
		e = &Entry{Index: index, State: Unloaded, LastAccessed: c.clock()}
		c.entries[index] = e
	}
	return e
}
