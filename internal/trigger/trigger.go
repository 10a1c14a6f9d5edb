// Package trigger provides the calibration trigger input with hardware
// abstraction. The real implementation uses the Linux GPIO character device;
// the fake allows testing without hardware.
package trigger

// Line reads the calibration trigger input.
type Line interface {
	// Read returns true while the trigger is held HIGH (calibration still
	// in progress) and false once the operator closes the switch.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default wiring (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)
