// Package meter contains the pure measurement pipeline: the cycle clock,
// the frequency-to-flow estimator and the volume totalizer.
// This package has NO hardware or transport dependencies; time is always
// injectable via time.Time parameters.
package meter

// FlowSample is the per-cycle result of the flow estimation, derived from
// the pulse count and the measured elapsed time. It is not retained across
// cycles except as the last-published value.
type FlowSample struct {
	// FrequencyHz is the pulse frequency after the low-frequency gate.
	FrequencyHz float64
	// FlowRateLpm is the calibrated volumetric rate, always >= 0.
	FlowRateLpm float64
}

// CycleCounts tracks pipeline activity since startup, for status reporting.
type CycleCounts struct {
	// Cycles is the number of completed measurement cycles.
	Cycles uint64
	// NoiseCycles is the number of cycles whose pulse count fell below
	// the minimum and was treated as noise.
	NoiseCycles uint64
	// Persists is the number of totalizer writes handed to the store.
	Persists uint64
}
