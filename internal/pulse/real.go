//go:build linux

package pulse

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource feeds rising edges from a GPIO line into a Counter using the
// Linux GPIO character device.
type RealSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealSource requests the given pin as an input with edge detection and
// routes its events into counter. Debouncing is done in the Counter from
// kernel event timestamps, so it stays testable and independent of kernel
// debounce support.
func NewRealSource(chipName string, pin int, counter *Counter) (*RealSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	// Pull-up to match the open-collector output of the turbine sensor.
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			counter.Edge(evt.Timestamp)
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request flow pin %d: %w", pin, err)
	}

	return &RealSource{chip: chip, line: line}, nil
}

// Close releases the GPIO line and chip. Closing twice is a no-op.
func (s *RealSource) Close() error {
	var errs []error
	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close flow line: %w", err))
		}
		s.line = nil
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		s.chip = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
