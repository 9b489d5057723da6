// Package rain contains pure business logic for rainfall accounting: the
// debounced tip counter and the daily accumulator. This package has NO
// external dependencies (no GPIO, MQTT, OS, or time.Sleep). Time is always
// injectable: the counter takes monotonic edge timestamps, the accumulator
// takes time.Time parameters.
package rain

import (
	"sync/atomic"
	"time"
)

// DefaultDebounce is the window within which repeated edges are treated as
// contact bounce of the same mechanical tip.
const DefaultDebounce = 50 * time.Millisecond

// Counter converts raw falling-edge signals from the rain gauge into a
// monotonically increasing count of discrete tips.
//
// OnEdge is called from the GPIO event goroutine; Count may be read
// concurrently from the main loop. The count is atomic, so the reader sees
// it at an arbitrary but valid point relative to increments. All other
// fields are owned exclusively by the edge handler.
type Counter struct {
	count    atomic.Uint64
	debounce time.Duration
	lastEdge time.Duration
	primed   bool
}

// NewCounter creates a tip counter with the given debounce window.
func NewCounter(debounce time.Duration) *Counter {
	return &Counter{debounce: debounce}
}

// OnEdge processes one raw falling edge. The timestamp must come from a
// free-running monotonic source (e.g. the GPIO event timestamp), not the
// wall clock.
//
// The edge is counted only if strictly more than the debounce window has
// elapsed since the previous raw edge. The last-edge timestamp is updated
// on every edge regardless, so a burst of bounces keeps extending the
// suppression window.
func (c *Counter) OnEdge(ts time.Duration) {
	accept := !c.primed || ts-c.lastEdge > c.debounce
	c.lastEdge = ts
	c.primed = true
	if accept {
		c.count.Add(1)
	}
}

// Count returns the total number of accepted tips since startup. The count
// never resets and never decreases.
func (c *Counter) Count() uint64 {
	return c.count.Load()
}
