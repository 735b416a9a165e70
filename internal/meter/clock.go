package meter

import "time"

// CycleClock decides when a measurement cycle fires and measures the real
// elapsed time between cycles. The baseline moves to the current time on
// each fired cycle rather than advancing by the nominal period, so
// scheduling drift never accumulates; downstream integrals always use the
// measured interval, never the nominal one.
type CycleClock struct {
	period   time.Duration
	lastTick time.Time
	started  bool
}

// NewCycleClock creates a clock firing roughly every period.
func NewCycleClock(period time.Duration) *CycleClock {
	return &CycleClock{period: period}
}

// Tick checks whether a cycle is due at now. On the first call it only
// establishes the baseline. When a cycle fires it returns the measured
// elapsed time since the previous fire and true.
func (c *CycleClock) Tick(now time.Time) (time.Duration, bool) {
	if !c.started {
		c.started = true
		c.lastTick = now
		return 0, false
	}
	elapsed := now.Sub(c.lastTick)
	if elapsed < c.period {
		return 0, false
	}
	c.lastTick = now
	return elapsed, true
}
