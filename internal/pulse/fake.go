package pulse

import "time"

// FakeSource drives a Counter with synthetic edge timings for tests.
type FakeSource struct {
	counter *Counter
	now     time.Duration

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSource creates a FakeSource feeding the given counter.
func NewFakeSource(counter *Counter) *FakeSource {
	return &FakeSource{counter: counter}
}

// Pulse emits n edges separated by spacing, starting one spacing after the
// previous emitted edge.
func (f *FakeSource) Pulse(n int, spacing time.Duration) {
	for i := 0; i < n; i++ {
		f.now += spacing
		f.counter.Edge(f.now)
	}
}

// Advance moves the synthetic clock forward without emitting edges.
func (f *FakeSource) Advance(d time.Duration) {
	f.now += d
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
