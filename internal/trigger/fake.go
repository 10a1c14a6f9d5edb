package trigger

import "errors"

// FakeLine is a test double that returns scripted trigger levels.
type FakeLine struct {
	// Levels contains scripted values; each Read() consumes the next, and
	// the last repeats when exhausted.
	Levels []bool

	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeLine creates a FakeLine with the given levels.
func NewFakeLine(levels []bool) *FakeLine {
	return &FakeLine{Levels: levels}
}

// Read returns the next scripted level.
func (f *FakeLine) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}

	return level, nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.Closed = true
	return nil
}
