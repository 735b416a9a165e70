package analog

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// RealReader reads from an ADS1115 over I2C. Pressure is on AIN0,
// temperature on AIN1, both single-ended.
type RealReader struct {
	bus  i2c.BusCloser
	pins map[Channel]ads1x15.PinADC
}

// NewRealReader opens the named I2C bus ("" for the first available) and
// configures both channels at the given full-scale voltage.
func NewRealReader(busName string, fullScaleV float64) (*RealReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	fullScale := physic.ElectricPotential(fullScaleV * float64(physic.Volt))
	pins := make(map[Channel]ads1x15.PinADC, 2)
	for ch, input := range map[Channel]ads1x15.Channel{
		ChannelPressure:    ads1x15.Channel0,
		ChannelTemperature: ads1x15.Channel1,
	} {
		pin, err := adc.PinForChannel(input, fullScale, 860*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("configure adc channel %d: %w", input, err)
		}
		pins[ch] = pin
	}

	return &RealReader{bus: bus, pins: pins}, nil
}

// ReadRaw performs one conversion on the channel. Negative codes (the
// ADS1115 is bipolar, our sensors are not) clamp to zero.
func (r *RealReader) ReadRaw(ch Channel) (int, error) {
	pin, ok := r.pins[ch]
	if !ok {
		return 0, fmt.Errorf("unknown analog channel %d", ch)
	}
	sample, err := pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read adc channel %d: %w", ch, err)
	}
	if sample.Raw < 0 {
		return 0, nil
	}
	return int(sample.Raw), nil
}

// Close releases the ADC pins and the I2C bus.
func (r *RealReader) Close() error {
	var errs []error
	for ch, pin := range r.pins {
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt channel %d: %w", ch, err))
		}
	}
	if err := r.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
