//go:build !linux

package trigger

import "errors"

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chipName string, pin int) (*RealLine, error) {
	return nil, errors.New("trigger: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (l *RealLine) Read() (bool, error) {
	return false, errors.New("trigger: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *RealLine) Close() error {
	return nil
}
