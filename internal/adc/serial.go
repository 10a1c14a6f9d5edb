package adc

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial"

	sig "github.com/sweeney/servo-tach/internal/signal"
)

// Default wiring for the serial ADC bridge.
const (
	DefaultSerialPort = "/dev/ttyACM0"
	DefaultBaud       = 115200
)

// SerialReader reads raw samples from a microcontroller ADC bridge that
// prints one decimal reading per line.
type SerialReader struct {
	port serial.Port
	sc   *bufio.Scanner
}

// NewSerialReader opens the named serial port at the given baud rate.
func NewSerialReader(portName string, baud int) (*SerialReader, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return &SerialReader{port: port, sc: bufio.NewScanner(port)}, nil
}

// Read returns the next sample from the bridge. Blank and malformed lines
// are skipped — opening the port mid-stream leaves at most one truncated
// line, which falls out the same way.
func (r *SerialReader) Read() (int, error) {
	for r.sc.Scan() {
		v, err := parseSampleLine(r.sc.Text())
		if err != nil {
			continue
		}
		return v, nil
	}
	if err := r.sc.Err(); err != nil {
		return 0, fmt.Errorf("read serial: %w", err)
	}
	return 0, fmt.Errorf("serial port closed")
}

// Close closes the serial port.
func (r *SerialReader) Close() error {
	return r.port.Close()
}

// parseSampleLine parses one reading line, clamping to the raw sample domain.
func parseSampleLine(line string) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("empty line")
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("parse sample %q: %w", line, err)
	}
	if v < sig.MinRaw {
		v = sig.MinRaw
	}
	if v > sig.MaxRaw {
		v = sig.MaxRaw
	}
	return v, nil
}
