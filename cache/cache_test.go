package cache_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eak1mov/go-tileview/cache"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testPayload = image.NewGray(image.Rect(0, 0, 4, 4))

func okFetch(context.Context, tile.Index) (image.Image, error) {
	return testPayload, nil
}

func TestGet(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.WithClock(clock.Now))
	defer c.Close()

	index := tile.Index{Level: 3, Row: 1, Col: 2}
	e := c.Get(index)
	want := cache.Entry{Index: index, State: cache.Unloaded, LastAccessed: clock.Now()}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%v", diff)
	}

	clock.Advance(time.Second)
	if got, want := c.Get(index).LastAccessed, clock.Now(); !got.Equal(want) {
		t.Errorf("LastAccessed = %v, want %v", got, want)
	}

	clock.Advance(time.Second)
	peeked, ok := c.Peek(index)
	if !ok {
		t.Fatalf("Peek(%v) found nothing", index)
	}
	if got, want := peeked.LastAccessed, clock.Now().Add(-time.Second); !got.Equal(want) {
		t.Errorf("Peek refreshed LastAccessed: got %v, want %v", got, want)
	}
	if _, ok := c.Peek(tile.Index{}); ok {
		t.Errorf("Peek created an entry")
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %v, want 1", got)
	}
}

func TestEnsureFetchDedup(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context, index tile.Index) (image.Image, error) {
		calls.Add(1)
		<-release
		return testPayload, nil
	}

	index := tile.Index{Level: 1, Row: 1, Col: 0}
	if !c.EnsureFetch(index, fetch) {
		t.Fatalf("first EnsureFetch did not start a fetch")
	}
	if got := c.Get(index).State; got != cache.Loading {
		t.Errorf("State = %v, want %v", got, cache.Loading)
	}
	if c.EnsureFetch(index, fetch) {
		t.Errorf("second EnsureFetch started another fetch")
	}

	close(release)
	c.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %v times, want 1", got)
	}
	e := c.Get(index)
	if e.State != cache.Ready || e.Payload != testPayload {
		t.Errorf("entry = %+v, want ready with payload", e)
	}
	if c.EnsureFetch(index, fetch) {
		t.Errorf("EnsureFetch restarted a ready entry")
	}
	c.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %v times, want 1", got)
	}
}

func TestEnsureFetchFailure(t *testing.T) {
	c := cache.New()
	defer c.Close()

	errBroken := errors.New("broken tile")
	var calls atomic.Int32
	fetch := func(context.Context, tile.Index) (image.Image, error) {
		calls.Add(1)
		return nil, errBroken
	}

	index := tile.Index{Level: 2}
	c.EnsureFetch(index, fetch)
	c.Wait()

	e := c.Get(index)
	if e.State != cache.Failed || !errors.Is(e.Err, errBroken) || e.Payload != nil {
		t.Errorf("entry = %+v, want failed with %v", e, errBroken)
	}

	// no automatic retry
	if c.EnsureFetch(index, fetch) {
		t.Errorf("EnsureFetch retried a failed entry")
	}
	c.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %v times, want 1", got)
	}
}

func TestEvictExpired(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.WithClock(clock.Now))
	defer c.Close()

	const ttl = time.Minute
	stale := tile.Index{Level: 4, Row: 1}
	fresh := tile.Index{Level: 4, Row: 2}

	c.Get(stale)
	clock.Advance(ttl + time.Millisecond)
	c.Get(fresh)

	if got := c.EvictExpired(clock.Now(), ttl); got != 1 {
		t.Errorf("EvictExpired() = %v, want 1", got)
	}
	if _, ok := c.Peek(stale); ok {
		t.Errorf("entry accessed ttl+1ms ago is still cached")
	}
	if _, ok := c.Peek(fresh); !ok {
		t.Errorf("entry accessed now was evicted")
	}

	// exactly ttl old is kept
	clock.Advance(ttl)
	if got := c.EvictExpired(clock.Now(), ttl); got != 0 {
		t.Errorf("EvictExpired() = %v, want 0", got)
	}
}

func TestEvictionRearmsFailedTile(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.WithClock(clock.Now))
	defer c.Close()

	var calls atomic.Int32
	fetch := func(context.Context, tile.Index) (image.Image, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("temporary")
		}
		return testPayload, nil
	}

	index := tile.Index{Level: 5, Row: 3, Col: 3}
	c.EnsureFetch(index, fetch)
	c.Wait()
	if got := c.Get(index).State; got != cache.Failed {
		t.Fatalf("State = %v, want %v", got, cache.Failed)
	}

	clock.Advance(2 * time.Minute)
	c.EvictExpired(clock.Now(), time.Minute)

	if got := c.Get(index).State; got != cache.Unloaded {
		t.Errorf("State after eviction = %v, want %v", got, cache.Unloaded)
	}
	if !c.EnsureFetch(index, fetch) {
		t.Fatalf("EnsureFetch after eviction did not start a fetch")
	}
	c.Wait()
	if got := c.Get(index).State; got != cache.Ready {
		t.Errorf("State = %v, want %v", got, cache.Ready)
	}
}

func TestEvictWhileLoading(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.WithClock(clock.Now))
	defer c.Close()

	release := make(chan struct{})
	fetch := func(context.Context, tile.Index) (image.Image, error) {
		<-release
		return testPayload, nil
	}

	index := tile.Index{Level: 6}
	c.EnsureFetch(index, fetch)
	clock.Advance(time.Hour)
	if got := c.EvictExpired(clock.Now(), time.Minute); got != 1 {
		t.Fatalf("EvictExpired() = %v, want 1", got)
	}

	close(release)
	c.Wait()

	if _, ok := c.Peek(index); ok {
		t.Errorf("late fetch result was reinserted")
	}
}

func TestClear(t *testing.T) {
	c := cache.New()
	defer c.Close()

	for row := range uint32(5) {
		c.EnsureFetch(tile.Index{Level: 3, Row: row}, okFetch)
	}
	c.Clear()
	c.Wait()

	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Clear = %v, want 0", got)
	}
}

func TestConcurrencyLimit(t *testing.T) {
	c := cache.New(cache.WithConcurrency(2))
	defer c.Close()

	var running, peak atomic.Int32
	fetch := func(context.Context, tile.Index) (image.Image, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return testPayload, nil
	}

	for col := range uint32(8) {
		c.EnsureFetch(tile.Index{Level: 3, Col: col}, fetch)
	}
	c.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrent fetches = %v, want <= 2", got)
	}
	for _, e := range c.Entries() {
		if e.State != cache.Ready {
			t.Errorf("%v: State = %v, want %v", e.Index, e.State, cache.Ready)
		}
	}
}

func TestNotify(t *testing.T) {
	var mu sync.Mutex
	var settled []tile.Index
	c := cache.New(cache.WithNotify(func(e cache.Entry) {
		mu.Lock()
		defer mu.Unlock()
		if e.State != cache.Ready {
			t.Errorf("notified %v in state %v", e.Index, e.State)
		}
		settled = append(settled, e.Index)
	}))
	defer c.Close()

	index := tile.Index{Level: 2, Row: 3, Col: 1}
	c.EnsureFetch(index, okFetch)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]tile.Index{index}, settled); diff != "" {
		t.Errorf("notified mismatch (-want +got):\n%v", diff)
	}
}

func TestCloseCancelsFetches(t *testing.T) {
	c := cache.New()

	started := make(chan struct{})
	fetch := func(ctx context.Context, index tile.Index) (image.Image, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	index := tile.Index{Level: 1}
	c.EnsureFetch(index, fetch)
	<-started
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	e, _ := c.Peek(index)
	if e.State != cache.Failed || !errors.Is(e.Err, context.Canceled) {
		t.Errorf("entry = %+v, want failed with context.Canceled", e)
	}
}

func TestEntriesOrder(t *testing.T) {
	c := cache.New()
	defer c.Close()

	indices := []tile.Index{
		{Level: 2, Row: 0, Col: 3},
		{Level: 0},
		{Level: 1, Row: 1, Col: 1},
		{Level: 2, Row: 0, Col: 0},
		{Level: 1, Row: 0, Col: 0},
	}
	for _, index := range indices {
		c.Get(index)
	}

	var got []tile.Index
	for _, e := range c.Entries() {
		got = append(got, e.Index)
	}
	want := []tile.Index{
		{Level: 0},
		{Level: 1, Row: 0, Col: 0},
		{Level: 1, Row: 1, Col: 1},
		{Level: 2, Row: 0, Col: 0},
		{Level: 2, Row: 0, Col: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries order mismatch (-want +got):\n%v", diff)
	}
}
