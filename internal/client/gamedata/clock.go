// Package gamedata owns the raw player snapshot and the pure computation
// layer that projects it forward in time: resource regeneration, production
// queues, recruitment countdowns. Every derived quantity is a function of
// (snapshot subtree, logical-clock second), never an incrementally mutated
// counter, so recomputing later is always consistent with recomputing
// earlier plus elapsed time.
package gamedata

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the shared logical "current second". A ticker advances it once
// per second while running; every derivation reads it instead of the wall
// clock so all fields recomputed within one tick agree with each other.
type Clock struct {
	current atomic.Int64

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// NewClock returns a stopped clock positioned at the current wall time.
func NewClock() *Clock {
	c := &Clock{}
	c.current.Store(time.Now().Unix())
	return c
}

// NewFrozenClock returns a stopped clock pinned at ts. Test seam: advance
// it explicitly with Set.
func NewFrozenClock(ts int64) *Clock {
	c := &Clock{}
	c.current.Store(ts)
	return c
}

// Now returns the current logical second.
func (c *Clock) Now() int64 {
	return c.current.Load()
}

// Set positions the clock. Intended for tests and for resync after a
// system sleep.
func (c *Clock) Set(ts int64) {
	c.current.Store(ts)
}

// Start begins advancing the clock once per second. Starting a running
// clock is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker != nil {
		return
	}
	c.current.Store(time.Now().Unix())
	c.ticker = time.NewTicker(time.Second)
	c.done = make(chan struct{})

	go func(t *time.Ticker, done chan struct{}) {
		for {
			select {
			case <-t.C:
				c.current.Store(time.Now().Unix())
			case <-done:
				return
			}
		}
	}(c.ticker, c.done)
}

// Stop halts the clock. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.done)
	c.ticker = nil
	c.done = nil
}

// Running reports whether the ticker is active.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticker != nil
}
