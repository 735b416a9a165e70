package pulse

import (
	"sync"
	"testing"
	"time"
)

func TestCounterAcceptsFirstEdge(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)

	// First edge must be accepted even at timestamp zero.
	c.Edge(0)
	if got := c.ReadAndReset(); got != 1 {
		t.Errorf("expected 1 pulse, got %d", got)
	}
}

func TestCounterDebounceRejectsCloseEdges(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)

	c.Edge(10 * time.Millisecond)
	c.Edge(10*time.Millisecond + 1*time.Millisecond) // within debounce

	if got := c.ReadAndReset(); got != 1 {
		t.Errorf("expected bounce to be rejected, got %d pulses", got)
	}
}

func TestCounterDebounceAcceptsSpacedEdges(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)

	c.Edge(10 * time.Millisecond)
	c.Edge(12 * time.Millisecond) // 2ms later, beyond debounce

	if got := c.ReadAndReset(); got != 2 {
		t.Errorf("expected 2 pulses, got %d", got)
	}
}

func TestCounterDebounceBoundary(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)

	c.Edge(10 * time.Millisecond)
	c.Edge(10*time.Millisecond + 1500*time.Microsecond) // exactly the interval

	if got := c.ReadAndReset(); got != 2 {
		t.Errorf("edge exactly at the debounce interval should count; got %d", got)
	}
}

func TestCounterRejectedEdgeDoesNotExtendWindow(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)

	// Debounce is measured from the last accepted edge; a rejected edge
	// must not push the window out.
	c.Edge(0)
	c.Edge(1 * time.Millisecond)    // rejected
	c.Edge(1600 * time.Microsecond) // 1.6ms after the accepted edge

	if got := c.ReadAndReset(); got != 2 {
		t.Errorf("expected 2 pulses, got %d", got)
	}
}

func TestReadAndResetZeroes(t *testing.T) {
	c := NewCounter(0)

	for i := 0; i < 5; i++ {
		c.Edge(time.Duration(i) * time.Millisecond)
	}
	if got := c.ReadAndReset(); got != 5 {
		t.Errorf("expected 5 pulses, got %d", got)
	}
	if got := c.ReadAndReset(); got != 0 {
		t.Errorf("expected 0 pulses after reset, got %d", got)
	}
}

func TestCounterZeroDebounceAcceptsAll(t *testing.T) {
	c := NewCounter(0)

	c.Edge(100)
	c.Edge(100)
	c.Edge(100)

	if got := c.ReadAndReset(); got != 3 {
		t.Errorf("expected 3 pulses with zero debounce, got %d", got)
	}
}

func TestCounterConcurrentReadAndReset(t *testing.T) {
	// Edges from one goroutine, ReadAndReset from another; the total over
	// all reads must equal the number of accepted edges.
	c := NewCounter(0)
	const edges = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < edges; i++ {
			c.Edge(time.Duration(i) * time.Microsecond)
		}
	}()

	var total uint64
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		total += uint64(c.ReadAndReset())
		select {
		case <-done:
			total += uint64(c.ReadAndReset())
			if total != edges {
				t.Errorf("expected %d total pulses, got %d", edges, total)
			}
			return
		default:
		}
	}
}

func TestFakeSourcePulseTiming(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)
	f := NewFakeSource(c)

	f.Pulse(10, 2*time.Millisecond) // all spaced beyond debounce
	if got := c.ReadAndReset(); got != 10 {
		t.Errorf("expected 10 pulses, got %d", got)
	}

	// 1ms spacing: every other edge falls inside the 1.5ms window measured
	// from the last accepted edge, so exactly half of this burst survives.
	f.Pulse(10, 1*time.Millisecond)
	if got := c.ReadAndReset(); got != 5 {
		t.Errorf("expected 5 pulses from bounced burst, got %d", got)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !f.Closed {
		t.Error("fake should record close")
	}
}

func TestFakeSourceAdvanceClearsDebounceWindow(t *testing.T) {
	c := NewCounter(1500 * time.Microsecond)
	f := NewFakeSource(c)

	// A burst at 1ms spacing lands the last accepted edge mid-burst; a
	// follow-up pulse one spacing later would still be inside the window.
	f.Pulse(3, 1*time.Millisecond)
	if got := c.ReadAndReset(); got != 2 {
		t.Fatalf("expected 2 pulses from burst, got %d", got)
	}

	// Idle time without edges clears the window, so the next pulse counts.
	f.Advance(10 * time.Millisecond)
	f.Pulse(1, 1*time.Millisecond)
	if got := c.ReadAndReset(); got != 1 {
		t.Errorf("expected pulse after idle gap to count, got %d", got)
	}
}
