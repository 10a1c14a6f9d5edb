// Package status provides a thread-safe status tracker for the servo-tach
// daemon. It is read by HTTP handlers and the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/servo-tach/internal/signal"
	"github.com/sweeney/servo-tach/internal/tach"
)

// Daemon lifecycle phases as displayed to consumers.
const (
	PhaseCalibrating = "CALIBRATING"
	PhaseSyncing     = "SYNCING"
	PhaseRunning     = "RUNNING"
)

// Config contains daemon configuration for display.
type Config struct {
	Source      string
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	TriggerPin  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Phase          string
	Level          signal.Level
	Range          signal.Range
	Thresholds     signal.Thresholds
	Calibrated     bool
	Revolutions    uint64
	Skipped        uint64
	LastIntervalMs int64
	RevPerSec      float64
	AvgRevPerSec   float64
	SyncTime       time.Time
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Phase:     PhaseCalibrating,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetPhase sets the lifecycle phase.
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	t.snap.Phase = phase
	t.mu.Unlock()
}

// SetCalibration records range-sampler progress.
func (t *Tracker) SetCalibration(r signal.Range) {
	t.mu.Lock()
	t.snap.Range = r
	t.mu.Unlock()
}

// SetThresholds records the derived dead band and marks calibration done.
func (t *Tracker) SetThresholds(thr signal.Thresholds) {
	t.mu.Lock()
	t.snap.Thresholds = thr
	t.snap.Calibrated = true
	t.mu.Unlock()
}

// SetSyncTime records time zero once the reference edge is found.
func (t *Tracker) SetSyncTime(syncTime time.Time) {
	t.mu.Lock()
	t.snap.SyncTime = syncTime
	t.mu.Unlock()
}

// Update sets the running-phase measurements. Called from the run loop on
// every tick; reading may be nil when no revolution completed this tick.
func (t *Tracker) Update(level signal.Level, revs, skipped uint64, reading *tach.Reading) {
	t.mu.Lock()
	t.snap.Level = level
	t.snap.Revolutions = revs
	t.snap.Skipped = skipped
	if reading != nil && !reading.Skipped {
		t.snap.LastIntervalMs = reading.Interval.Milliseconds()
		t.snap.RevPerSec = reading.RevPerSec
		t.snap.AvgRevPerSec = reading.AvgRevPerSec
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
