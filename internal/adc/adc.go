// Package adc provides the raw analog sample source with hardware
// abstraction. The real implementations read an MCP3008 converter over SPI
// or a microcontroller ADC bridge over a serial port. The fake allows
// testing without hardware.
package adc

// Reader reads raw analog samples from the light sensor.
type Reader interface {
	// Read returns one raw sample in [signal.MinRaw, signal.MaxRaw].
	// No caching: every call is a fresh conversion.
	Read() (int, error)

	// Close releases the underlying device.
	Close() error
}

// Default wiring for the reference build (MCP3008 channel 0 on SPI0).
const (
	DefaultSPIPort = "SPI0.0"
	DefaultChannel = 0
)
