// Package analog reads the pressure and temperature channels through an ADC
// and applies the sensor transfer functions.
// The real implementation uses an ADS1115 over I2C; the fake implementation
// allows testing without hardware.
package analog

import (
	"math"

	"flowmeter/internal/config"
)

// Channel identifies one analog input.
type Channel int

const (
	ChannelPressure Channel = iota
	ChannelTemperature
)

// Reader performs one-shot raw ADC reads.
type Reader interface {
	// ReadRaw returns the raw code of a single conversion on the channel.
	ReadRaw(ch Channel) (int, error)

	// Close releases ADC resources.
	Close() error
}

// Reading is one converted channel value. Valid is false when no measurement
// could be derived (out-of-domain voltage or a failed read); consumers must
// render such readings as "not available", never as a number.
type Reading struct {
	Value float64
	Valid bool
}

// Converter applies averaging, the raw-to-voltage conversion and the
// per-channel transfer functions. Pure math, no failure modes of its own.
type Converter struct {
	adc   config.ADCParams
	press config.PressParams
	therm config.ThermParams
}

// NewConverter creates a Converter for the given parameter set.
func NewConverter(p config.Params) Converter {
	return Converter{adc: p.ADC, press: p.Press, therm: p.Therm}
}

// ReadAveraged returns the arithmetic mean of the configured number of raw
// reads on the channel. The mean truncates, matching fixed-point averaging.
func (c Converter) ReadAveraged(r Reader, ch Channel) (int, error) {
	sum := 0
	for i := 0; i < c.adc.Samples; i++ {
		raw, err := r.ReadRaw(ch)
		if err != nil {
			return 0, err
		}
		sum += raw
	}
	return sum / c.adc.Samples, nil
}

// RawToVoltage converts a raw code to volts at the ADC input.
func (c Converter) RawToVoltage(raw int) float64 {
	return float64(raw) / float64(c.adc.MaxCode) * c.adc.VRef
}

// PressureKPa applies the pressure transfer function to the ADC voltage.
// The sensor cannot drive its output out of the transfer function's domain,
// so no bounds check is applied; out-of-range codes yield out-of-range but
// finite pressures.
func (c Converter) PressureKPa(voltage float64) float64 {
	sensorV := voltage * c.press.DividerRatio
	return (sensorV/c.press.SupplyV + c.press.C1) / c.press.C2
}

// TemperatureC converts the thermistor divider voltage to Celsius using the
// Beta equation. Voltages at or beyond the divider rails mean an open or
// shorted sensor; the divider math is singular there, so the reading comes
// back invalid instead of a bogus number.
func (c Converter) TemperatureC(voltage float64) Reading {
	if voltage <= 0 || voltage >= c.adc.VRef {
		return Reading{}
	}
	resistance := voltage * c.therm.FixedOhms / (c.adc.VRef - voltage)
	invT := 1.0/c.therm.T0Kelvin + math.Log(resistance/c.therm.R0Ohms)/c.therm.Beta
	kelvin := 1.0 / invT
	return Reading{Value: kelvin - 273.15, Valid: true}
}

// Cycle reads and converts both channels for one measurement cycle. Read
// failures degrade to invalid readings; the cycle itself never fails.
func (c Converter) Cycle(r Reader) (pressure, temperature Reading) {
	if raw, err := c.ReadAveraged(r, ChannelPressure); err == nil {
		pressure = Reading{Value: c.PressureKPa(c.RawToVoltage(raw)), Valid: true}
	}
	if raw, err := c.ReadAveraged(r, ChannelTemperature); err == nil {
		temperature = c.TemperatureC(c.RawToVoltage(raw))
	}
	return pressure, temperature
}
