//go:build linux

package trigger

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine reads the trigger switch via the Linux GPIO character device.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLine requests the trigger pin as a pulled-up input: an open switch
// reads HIGH, and closing it to ground ends calibration.
func NewRealLine(chipName string, pin int) (*RealLine, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request trigger pin %d: %w", pin, err)
	}

	return &RealLine{chip: chip, line: line}, nil
}

// Read returns the logical trigger level.
func (l *RealLine) Read() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read trigger pin: %w", err)
	}
	return v != 0, nil
}

// Close restores the pin to the Pi boot default (input with pull-down)
// before releasing it, so a connected switch cannot hold the pin in an
// unexpected state during early boot.
func (l *RealLine) Close() error {
	var errs []error

	if l.line != nil {
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure trigger pin: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trigger pin: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
