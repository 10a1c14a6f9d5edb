// Package tach turns the debounced sensor level into revolution timing.
// Like internal/signal it is pure: time is always injected as a parameter,
// so the synchronization and timing scenarios are testable with scripted
// level sequences.
package tach

import (
	"time"

	"github.com/sweeney/servo-tach/internal/signal"
)

// Phase is the tracker's position in its lifecycle.
type Phase string

const (
	// PhaseSync means the tracker is still searching for the reference
	// rising edge that anchors time zero.
	PhaseSync Phase = "SYNC"
	// PhaseRunning means time zero is established and falling edges are
	// being timed as completed revolutions.
	PhaseRunning Phase = "RUNNING"
)

// Reading is one completed revolution measurement.
type Reading struct {
	Timestamp    time.Time
	Revolution   uint64        // total completed revolutions, this one included
	Interval     time.Duration // time since the previous reference edge
	RevPerSec    float64       // instantaneous speed
	AvgRevPerSec float64       // running average since time zero
	Skipped      bool          // interval was zero; speeds are not populated
}

// Tracker consumes debounced levels and produces revolution readings.
//
// It anchors time zero on the rising edge of "blocked": the sensor must first
// be observed unblocked, so a stale HIGH left over from calibration cannot
// count as the reference. Each later HIGH->LOW falling edge marks a completed
// revolution.
type Tracker struct {
	phase   Phase
	rising  *signal.EdgeDetector
	falling *signal.EdgeDetector

	startTime time.Time
	lastEdge  time.Time
	revs      uint64
	skipped   uint64
}

// NewTracker creates a tracker waiting for synchronization.
func NewTracker() *Tracker {
	return &Tracker{
		phase:  PhaseSync,
		rising: signal.NewEdgeDetector(signal.Rising),
	}
}

// Phase returns the current lifecycle phase.
func (t *Tracker) Phase() Phase {
	return t.phase
}

// Synced reports whether time zero has been established.
func (t *Tracker) Synced() bool {
	return t.phase == PhaseRunning
}

// StartTime returns time zero. Zero value until synced.
func (t *Tracker) StartTime() time.Time {
	return t.startTime
}

// Revolutions returns the completed revolution count.
func (t *Tracker) Revolutions() uint64 {
	return t.revs
}

// SkippedReadings returns how many revolutions were counted but not measured
// because two edges landed on the same clock reading.
func (t *Tracker) SkippedReadings() uint64 {
	return t.skipped
}

// Process consumes one debounced level with its sample time. It returns a
// Reading when a revolution completes and nil otherwise. No edge means no
// state change and no report.
func (t *Tracker) Process(level signal.Level, now time.Time) *Reading {
	switch t.phase {
	case PhaseSync:
		if !t.rising.Feed(level) {
			return nil
		}
		// Reference rising edge: the interrupter has begun blocking the
		// light. Time zero anchors here, so the first revolution interval is
		// measured from a real physical edge rather than from whenever
		// calibration happened to finish.
		t.startTime = now
		t.lastEdge = now
		t.phase = PhaseRunning
		t.falling = signal.NewEdgeDetector(signal.Falling)
		t.falling.Feed(level)
		return nil

	case PhaseRunning:
		if !t.falling.Feed(level) {
			return nil
		}
		t.revs++
		interval := now.Sub(t.lastEdge)
		total := now.Sub(t.startTime)
		r := &Reading{
			Timestamp:  now,
			Revolution: t.revs,
			Interval:   interval,
		}
		t.lastEdge = now
		if interval <= 0 || total <= 0 {
			// Two edges on the same clock reading. The revolution counts;
			// the speed does not exist. Mark the reading skipped rather
			// than dividing by zero.
			t.skipped++
			r.Skipped = true
			return r
		}
		r.RevPerSec = 1 / interval.Seconds()
		r.AvgRevPerSec = float64(t.revs) / total.Seconds()
		return r
	}
	return nil
}
