package meter

import (
	"time"

	"flowmeter/internal/config"
)

// Estimator converts a per-cycle pulse count and measured elapsed time into
// a calibrated flow rate. It never fails: zero elapsed time, too few pulses
// and sub-gate frequencies all degrade to a defined zero-rate output.
type Estimator struct {
	p config.FlowParams
}

// NewEstimator creates an Estimator with the given flow parameters.
func NewEstimator(p config.FlowParams) Estimator {
	return Estimator{p: p}
}

// Flow computes the cycle's FlowSample.
//
// The noise mechanisms are applied in a fixed order: the frequency gate
// ends the estimate for sub-gate frequencies before the linear inversion
// runs (the negative offset would otherwise read as flow at standstill),
// the minimum pulse count keeps the frequency but zeroes the rate, and the
// deadband clamps the calibrated result last. Reordering them changes
// behavior near the noise floor.
func (e Estimator) Flow(count uint32, dt time.Duration) FlowSample {
	freq := 0.0
	if dt > 0 {
		freq = float64(count) / dt.Seconds()
	}
	if freq < e.p.FreqGateHz {
		return FlowSample{}
	}

	if count < e.p.MinPulses {
		return FlowSample{FrequencyHz: freq}
	}

	baseQ := (freq - e.p.OffsetHz) / e.p.SlopeHzPerLpm
	calQ := baseQ*e.p.CalScale + e.p.CalOffset
	if calQ < e.p.DeadbandLpm {
		calQ = 0
	}

	return FlowSample{FrequencyHz: freq, FlowRateLpm: calQ}
}
