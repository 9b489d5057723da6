// Package gpio provides the rain gauge tip signal with hardware abstraction.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// EdgeHandler receives one raw falling edge and its timestamp. The
// timestamp comes from the kernel's free-running monotonic clock, not the
// wall clock, and includes bounces: debouncing is the caller's concern.
type EdgeHandler func(ts time.Duration)

// Watcher delivers raw tip edges to a registered handler until closed.
type Watcher interface {
	// Close releases GPIO resources. No edges are delivered after Close
	// returns.
	Close() error
}

// DefaultPin is the BCM pin number the gauge reed switch is wired to.
const DefaultPin = 6
