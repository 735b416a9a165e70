// Package config holds the calibration and conversion parameters the
// measurement pipeline depends on. Params is constructed once at startup
// (defaults, optionally overridden from a YAML file) and treated as
// immutable afterwards, so alternate calibration sets are testable.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Params contains every tunable constant of the measurement pipeline.
type Params struct {
	Flow    FlowParams    `yaml:"flow"`
	ADC     ADCParams     `yaml:"adc"`
	Press   PressParams   `yaml:"pressure"`
	Therm   ThermParams   `yaml:"thermistor"`
	Persist PersistParams `yaml:"persist"`
	Cycle   CycleParams   `yaml:"cycle"`
}

// FlowParams covers pulse capture and the frequency-to-flow conversion.
type FlowParams struct {
	// Debounce is the minimum spacing between accepted pulse edges.
	Debounce time.Duration `yaml:"debounce"`
	// MinPulses is the per-cycle pulse count below which the cycle is
	// treated as noise and the flow rate forced to zero.
	MinPulses uint32 `yaml:"min_pulses"`
	// FreqGateHz forces frequencies below it to zero before the linear
	// inversion, so the negative offset cannot imply flow at standstill.
	FreqGateHz float64 `yaml:"freq_gate_hz"`
	// DeadbandLpm clamps calibrated rates below it to zero.
	DeadbandLpm float64 `yaml:"deadband_lpm"`
	// SlopeHzPerLpm and OffsetHz are the sensor's linear transfer
	// function f = slope*Q + offset; offset is negative for this sensor.
	SlopeHzPerLpm float64 `yaml:"slope_hz_per_lpm"`
	OffsetHz      float64 `yaml:"offset_hz"`
	// CalScale and CalOffset are applied after the inversion.
	CalScale  float64 `yaml:"cal_scale"`
	CalOffset float64 `yaml:"cal_offset"`
}

// ADCParams covers the shared analog front end.
type ADCParams struct {
	// MaxCode is the full-scale raw code (e.g. 4095 for 12 bits).
	MaxCode int `yaml:"max_code"`
	// VRef is the voltage corresponding to MaxCode.
	VRef float64 `yaml:"vref"`
	// Samples is the number of raw reads averaged per channel per cycle.
	Samples int `yaml:"samples"`
}

// PressParams covers the pressure channel transfer function
// kPa = ((v*divider/supply) + C1) / C2.
type PressParams struct {
	DividerRatio float64 `yaml:"divider_ratio"`
	SupplyV      float64 `yaml:"supply_v"`
	C1           float64 `yaml:"c1"`
	C2           float64 `yaml:"c2"`
}

// ThermParams covers the NTC thermistor divider and Beta equation.
type ThermParams struct {
	// FixedOhms is the divider's fixed resistor.
	FixedOhms float64 `yaml:"fixed_ohms"`
	// R0Ohms is the thermistor resistance at T0.
	R0Ohms float64 `yaml:"r0_ohms"`
	Beta   float64 `yaml:"beta"`
	// T0Kelvin is the Beta equation reference temperature.
	T0Kelvin float64 `yaml:"t0_kelvin"`
}

// PersistParams covers totalizer persistence.
type PersistParams struct {
	// EveryCycles is the write cadence for the cumulative total.
	EveryCycles int `yaml:"every_cycles"`
}

// CycleParams covers the sampling clock.
type CycleParams struct {
	// Period is the nominal cycle period; actual elapsed time is always
	// measured, the nominal value only gates when a cycle fires.
	Period time.Duration `yaml:"period"`
}

// Default returns the compiled-in calibration for the YF-B series turbine
// sensor, SEN0257 pressure sensor and 10k NTC divider this meter ships with.
func Default() Params {
	return Params{
		Flow: FlowParams{
			Debounce:      1500 * time.Microsecond,
			MinPulses:     2,
			FreqGateHz:    1.0,
			DeadbandLpm:   0.25,
			SlopeHzPerLpm: 7.5,
			OffsetHz:      -4.0,
			CalScale:      0.95,
			CalOffset:     0.0,
		},
		ADC: ADCParams{
			MaxCode: 4095,
			VRef:    3.3,
			Samples: 16,
		},
		Press: PressParams{
			DividerRatio: 1.0,
			SupplyV:      5.0,
			C1:           0.011453,
			C2:           0.0045726,
		},
		Therm: ThermParams{
			FixedOhms: 10000,
			R0Ohms:    10000,
			Beta:      3950,
			T0Kelvin:  298.15,
		},
		Persist: PersistParams{
			EveryCycles: 10,
		},
		Cycle: CycleParams{
			Period: time.Second,
		},
	}
}

// Load reads a YAML calibration file over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (Params, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read calibration file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse calibration file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate rejects parameter sets that would make the conversion math
// singular. It is called on loaded files, not on Default.
func (p Params) Validate() error {
	if p.Flow.SlopeHzPerLpm == 0 {
		return fmt.Errorf("flow slope must be non-zero")
	}
	if p.ADC.MaxCode <= 0 {
		return fmt.Errorf("adc max_code must be positive, got %d", p.ADC.MaxCode)
	}
	if p.ADC.VRef <= 0 {
		return fmt.Errorf("adc vref must be positive, got %g", p.ADC.VRef)
	}
	if p.ADC.Samples <= 0 {
		return fmt.Errorf("adc samples must be positive, got %d", p.ADC.Samples)
	}
	if p.Press.SupplyV == 0 || p.Press.C2 == 0 {
		return fmt.Errorf("pressure supply and c2 must be non-zero")
	}
	if p.Therm.Beta == 0 || p.Therm.R0Ohms == 0 || p.Therm.T0Kelvin == 0 {
		return fmt.Errorf("thermistor beta, r0 and t0 must be non-zero")
	}
	if p.Persist.EveryCycles <= 0 {
		return fmt.Errorf("persist every_cycles must be positive, got %d", p.Persist.EveryCycles)
	}
	if p.Cycle.Period <= 0 {
		return fmt.Errorf("cycle period must be positive, got %v", p.Cycle.Period)
	}
	return nil
}
