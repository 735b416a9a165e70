package meter

import "time"

// Totalizer integrates flow rate over measured cycle time into cumulative
// volume and tracks the persistence cadence. The cumulative value is
// monotonically non-decreasing because flow rates are clamped non-negative
// upstream.
type Totalizer struct {
	totalL       float64
	persistEvery int
	sincePersist int
}

// NewTotalizer creates a Totalizer starting from the persisted total,
// writing back every persistEvery cycles.
func NewTotalizer(initialL float64, persistEvery int) *Totalizer {
	return &Totalizer{totalL: initialL, persistEvery: persistEvery}
}

// Accumulate adds one cycle's volume and advances the persistence cadence.
// It returns the volume added this cycle and whether the caller should
// persist the current total now.
func (t *Totalizer) Accumulate(flowLpm float64, dt time.Duration) (incrementL float64, persist bool) {
	incrementL = flowLpm * dt.Seconds() / 60.0
	t.totalL += incrementL

	t.sincePersist++
	if t.sincePersist >= t.persistEvery {
		t.sincePersist = 0
		persist = true
	}
	return incrementL, persist
}

// TotalL returns the cumulative volume in liters.
func (t *Totalizer) TotalL() float64 {
	return t.totalL
}
