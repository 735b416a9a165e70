// Package status provides a thread-safe status tracker for the flowmeterd
// daemon. It is read by HTTP handlers and by the MQTT system events.
package status

import (
	"sync"
	"time"

	"flowmeter/internal/analog"
	"flowmeter/internal/meter"
)

// NetworkInfo contains network state reported by the host helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	CyclePeriodMs int64
	DebounceUs    int64
	HeartbeatMs   int64
	PersistCycles int
	Broker        string
	HTTPAddr      string
	Chip          string
	Pin           int
	StatePath     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	FrequencyHz   float64
	FlowLpm       float64
	TotalL        float64
	Pressure      analog.Reading
	Temperature   analog.Reading
	Counts        meter.CycleCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the latest cycle's readings and counts.
// Called from the run loop on every completed cycle.
func (t *Tracker) Update(flow meter.FlowSample, totalL float64, pressure, temperature analog.Reading, counts meter.CycleCounts) {
	t.mu.Lock()
	t.snap.FrequencyHz = flow.FrequencyHz
	t.snap.FlowLpm = flow.FlowRateLpm
	t.snap.TotalL = totalL
	t.snap.Pressure = pressure
	t.snap.Temperature = temperature
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
