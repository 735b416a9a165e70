package meter

import (
	"math"
	"testing"
	"time"

	"flowmeter/internal/config"
)

func testEstimator() Estimator {
	return NewEstimator(config.Default().Flow)
}

func TestFlowZeroCount(t *testing.T) {
	e := testEstimator()

	s := e.Flow(0, time.Second)
	if s.FrequencyHz != 0 {
		t.Errorf("expected frequency 0, got %g", s.FrequencyHz)
	}
	if s.FlowRateLpm != 0 {
		t.Errorf("expected flow 0, got %g", s.FlowRateLpm)
	}
}

func TestFlowZeroElapsed(t *testing.T) {
	e := testEstimator()

	// Zero dt must not divide; frequency degrades to 0.
	s := e.Flow(100, 0)
	if s.FrequencyHz != 0 {
		t.Errorf("expected frequency 0 for zero dt, got %g", s.FrequencyHz)
	}
	if s.FlowRateLpm != 0 {
		t.Errorf("expected flow 0 for zero dt, got %g", s.FlowRateLpm)
	}
}

func TestFlowBelowMinPulses(t *testing.T) {
	e := testEstimator()

	// Below the minimum pulse count the cycle is noise, for any dt.
	for _, dt := range []time.Duration{time.Millisecond, time.Second, 10 * time.Second} {
		s := e.Flow(1, dt)
		if s.FlowRateLpm != 0 {
			t.Errorf("dt=%v: expected flow 0 for 1 pulse, got %g", dt, s.FlowRateLpm)
		}
	}
}

func TestFlowFrequencyGate(t *testing.T) {
	e := testEstimator()

	// 2 pulses over 10s = 0.2 Hz: passes the pulse minimum but falls under
	// the 1 Hz gate. The gate must end the estimate outright; running the
	// inversion on a zeroed frequency would turn the negative offset into
	// ~0.51 L/min of phantom flow, above the deadband.
	s := e.Flow(2, 10*time.Second)
	if s.FrequencyHz != 0 {
		t.Errorf("expected gated frequency 0, got %g", s.FrequencyHz)
	}
	if s.FlowRateLpm != 0 {
		t.Errorf("expected flow 0, got %g", s.FlowRateLpm)
	}

	// Any sub-gate combination of count and stretch behaves the same.
	for _, tc := range []struct {
		count uint32
		dt    time.Duration
	}{
		{2, 3 * time.Second},
		{5, 6 * time.Second},
		{9, 10 * time.Second},
	} {
		s := e.Flow(tc.count, tc.dt)
		if s.FrequencyHz != 0 || s.FlowRateLpm != 0 {
			t.Errorf("count=%d dt=%v: expected zero sample, got f=%g q=%g",
				tc.count, tc.dt, s.FrequencyHz, s.FlowRateLpm)
		}
	}
}

func TestFlowNeverNegative(t *testing.T) {
	e := testEstimator()

	for count := uint32(0); count < 50; count++ {
		for _, dt := range []time.Duration{0, 100 * time.Millisecond, time.Second, 5 * time.Second} {
			s := e.Flow(count, dt)
			if s.FlowRateLpm < 0 {
				t.Fatalf("count=%d dt=%v: negative flow %g", count, dt, s.FlowRateLpm)
			}
		}
	}
}

func TestFlowCalibratedScenario(t *testing.T) {
	// count=10, dt=1s, slope=7.5, offset=-4, calScale=0.95:
	// f=10, baseQ=(10+4)/7.5, calQ=baseQ*0.95 ≈ 1.7733 L/min.
	e := testEstimator()

	s := e.Flow(10, time.Second)
	if s.FrequencyHz != 10 {
		t.Errorf("expected frequency 10, got %g", s.FrequencyHz)
	}
	want := (10.0 + 4.0) / 7.5 * 0.95
	if math.Abs(s.FlowRateLpm-want) > 1e-9 {
		t.Errorf("expected flow %g, got %g", want, s.FlowRateLpm)
	}
}

func TestFlowDeadband(t *testing.T) {
	p := config.Default().Flow
	p.CalScale = 1.0
	p.OffsetHz = 0
	p.SlopeHzPerLpm = 10
	e := NewEstimator(p)

	// 2 pulses in 1s = 0.2 L/min at slope 10, under the 0.25 deadband.
	s := e.Flow(2, time.Second)
	if s.FlowRateLpm != 0 {
		t.Errorf("expected deadband clamp to 0, got %g", s.FlowRateLpm)
	}

	// 3 pulses = 0.3 L/min, above the deadband.
	s = e.Flow(3, time.Second)
	if s.FlowRateLpm != 0.3 {
		t.Errorf("expected 0.3 above deadband, got %g", s.FlowRateLpm)
	}
}

func TestFlowUsesMeasuredElapsed(t *testing.T) {
	e := testEstimator()

	// Same count over a stretched interval reads a lower frequency.
	fast := e.Flow(20, time.Second)
	slow := e.Flow(20, 2*time.Second)
	if slow.FrequencyHz != fast.FrequencyHz/2 {
		t.Errorf("expected half frequency over doubled dt, got %g vs %g",
			slow.FrequencyHz, fast.FrequencyHz)
	}
	if slow.FlowRateLpm >= fast.FlowRateLpm {
		t.Errorf("expected lower flow over doubled dt, got %g vs %g",
			slow.FlowRateLpm, fast.FlowRateLpm)
	}
}
