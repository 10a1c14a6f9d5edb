package signal

// RangeSampler tracks the observed minimum and maximum raw sample during the
// operator-paced calibration phase. The operator varies light exposure until
// the reported bounds stabilize, then closes the trigger switch; the sampler
// itself has no notion of time or termination.
type RangeSampler struct {
	r Range
}

// NewRangeSampler creates a sampler with the range at its inverted extremes.
func NewRangeSampler() *RangeSampler {
	return &RangeSampler{r: NewRange()}
}

// Observe feeds one raw sample and reports whether either bound moved.
// Callers emit a calibration progress report whenever it returns true.
func (s *RangeSampler) Observe(raw int) bool {
	moved := false
	if raw < s.r.Low {
		s.r.Low = raw
		moved = true
	}
	if raw > s.r.High {
		s.r.High = raw
		moved = true
	}
	return moved
}

// Range returns the range observed so far.
func (s *RangeSampler) Range() Range {
	return s.r
}
