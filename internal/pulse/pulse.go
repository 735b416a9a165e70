// Package pulse captures debounced edge events from the turbine flow sensor.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
//
// Counter is the only state shared between the edge-event context and the
// measurement cycle. The event side increments; the cycle side atomically
// swaps the count to zero once per cycle, so neither side ever blocks the
// other.
package pulse

import (
	"sync/atomic"
	"time"
)

// Source delivers edge events into a Counter.
type Source interface {
	// Close releases the edge source. No events are delivered after Close
	// returns.
	Close() error
}

// Default wiring for the flow sensor input.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)

// Counter accumulates debounced pulses between cycle reads.
type Counter struct {
	debounce time.Duration

	// count is the shared word crossing the event/cycle boundary.
	count atomic.Uint32

	// lastEdge and primed are touched only by the single event goroutine;
	// the cycle side never reads them.
	lastEdge time.Duration
	primed   bool
}

// NewCounter creates a Counter that rejects edges spaced closer than
// debounce. A debounce of 0 accepts every edge.
func NewCounter(debounce time.Duration) *Counter {
	return &Counter{debounce: debounce}
}

// Edge records one edge event with the given monotonic timestamp. Edges
// arriving within the debounce interval of the last accepted edge are
// discarded as bounce; that is expected behavior, not an error.
//
// Edge must be called from a single goroutine (the edge-event handler).
// It does not allocate and does not block.
func (c *Counter) Edge(ts time.Duration) {
	if c.primed && ts-c.lastEdge < c.debounce {
		return
	}
	c.primed = true
	c.lastEdge = ts
	c.count.Add(1)
}

// ReadAndReset returns the pulses accumulated since the previous call and
// zeroes the counter in the same atomic operation. Called once per cycle.
func (c *Counter) ReadAndReset() uint32 {
	return c.count.Swap(0)
}
