package signal

// Comparator is a two-state hysteresis comparator. A single static threshold
// would chatter near the boundary under sensor noise; here the decision
// depends on the prior state, so no transition is possible while the sample
// sits inside the dead band, regardless of history.
//
// The debounced state is an explicit field of the instance — the comparator
// is the single owner of the boolean state carried between samples.
type Comparator struct {
	thr   Thresholds
	state Level
}

// NewComparator creates a comparator with the given calibrated thresholds
// and initial state.
func NewComparator(thr Thresholds, initial Level) *Comparator {
	return &Comparator{thr: thr, state: initial}
}

// Sample applies one raw sample and returns the new debounced level.
// Transitions only cross the dead band in the direction away from the
// current state.
func (c *Comparator) Sample(raw int) Level {
	switch {
	case c.state == LevelHigh && raw <= c.thr.Low:
		c.state = LevelLow
	case c.state == LevelLow && raw >= c.thr.High:
		c.state = LevelHigh
	}
	return c.state
}

// State returns the current debounced level without consuming a sample.
func (c *Comparator) State() Level {
	return c.state
}

// Direction selects which transition an EdgeDetector fires on.
type Direction int

const (
	// Rising fires on LOW -> HIGH (the interrupter begins blocking the light).
	Rising Direction = iota
	// Falling fires on HIGH -> LOW (the light becomes visible again).
	Falling
)

// EdgeDetector reports level transitions in one direction. The rotation
// synchronizer and the revolution timer share this one abstraction, so both
// stages agree on what "previous level" means within a tick.
type EdgeDetector struct {
	dir    Direction
	prev   Level
	primed bool
}

// NewEdgeDetector creates a detector for the given direction.
func NewEdgeDetector(dir Direction) *EdgeDetector {
	return &EdgeDetector{dir: dir}
}

// Feed consumes one level and reports whether the configured edge occurred.
// The first level only primes the detector and never fires, which is what
// discards a stale HIGH left over from calibration: a rising detector primed
// with HIGH cannot fire until the level has first dropped to LOW.
func (e *EdgeDetector) Feed(l Level) bool {
	if !e.primed {
		e.prev = l
		e.primed = true
		return false
	}
	prev := e.prev
	e.prev = l
	switch e.dir {
	case Rising:
		return prev == LevelLow && l == LevelHigh
	case Falling:
		return prev == LevelHigh && l == LevelLow
	}
	return false
}
