package report

import (
	"github.com/sweeney/servo-tach/internal/tach"
)

// FakeSink records published output for test assertions.
type FakeSink struct {
	// Readings contains all revolution readings that were published.
	Readings []tach.Reading

	// ReadingPayloads contains the JSON payloads for readings.
	ReadingPayloads [][]byte

	// Calibrations contains all calibration progress that was published.
	Calibrations []CalibrationProgress

	// CalibrationPayloads contains the JSON payloads for calibration progress.
	CalibrationPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by all publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeSink creates a FakeSink for testing.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// PublishReading records the reading.
func (f *FakeSink) PublishReading(r tach.Reading) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Readings = append(f.Readings, r)

	payload, err := FormatReadingPayload(r)
	if err != nil {
		return err
	}
	f.ReadingPayloads = append(f.ReadingPayloads, payload)

	return nil
}

// PublishCalibration records the calibration progress.
func (f *FakeSink) PublishCalibration(p CalibrationProgress) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Calibrations = append(f.Calibrations, p)

	payload, err := FormatCalibrationPayload(p)
	if err != nil {
		return err
	}
	f.CalibrationPayloads = append(f.CalibrationPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakeSink) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake sink is "connected".
func (f *FakeSink) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded output.
func (f *FakeSink) Reset() {
	f.Readings = nil
	f.ReadingPayloads = nil
	f.Calibrations = nil
	f.CalibrationPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
