package gpio

import "time"

// FakeWatcher is a test double that fires scripted edges at a handler.
type FakeWatcher struct {
	handler EdgeHandler

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWatcher creates a FakeWatcher delivering to the given handler.
func NewFakeWatcher(handler EdgeHandler) *FakeWatcher {
	return &FakeWatcher{handler: handler}
}

// Fire delivers one raw edge with the given monotonic timestamp. The
// handler runs synchronously, so tests can assert immediately after.
// Edges fired after Close are dropped, matching the real watcher.
func (f *FakeWatcher) Fire(ts time.Duration) {
	if f.Closed {
		return
	}
	f.handler(ts)
}

// FireBurst delivers a cluster of edges starting at ts, spaced by step.
// Useful for simulating contact bounce.
func (f *FakeWatcher) FireBurst(ts time.Duration, n int, step time.Duration) {
	for i := 0; i < n; i++ {
		f.Fire(ts + time.Duration(i)*step)
	}
}

// Close marks the watcher as closed.
func (f *FakeWatcher) Close() error {
	f.Closed = true
	return nil
}
