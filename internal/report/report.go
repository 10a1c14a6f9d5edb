// Package report provides structured reporting of tachometer output with
// abstraction for testing. The real sink publishes to an MQTT broker.
package report

import (
	"encoding/json"
	"time"

	"github.com/sweeney/servo-tach/internal/signal"
	"github.com/sweeney/servo-tach/internal/tach"
)

// TopicReadings is the MQTT topic for per-revolution readings.
const TopicReadings = "workshop/servo-tach/readings"

// TopicCalibration is the MQTT topic for range-sampler progress.
const TopicCalibration = "workshop/servo-tach/calibration"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "workshop/servo-tach/system"

// Sink publishes tachometer output.
type Sink interface {
	// PublishReading sends one completed revolution measurement.
	// Returns error if publishing fails (should not crash the process).
	PublishReading(r tach.Reading) error

	// PublishCalibration sends range-sampler progress.
	PublishCalibration(p CalibrationProgress) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(e SystemEvent) error

	// Close disconnects the sink.
	Close() error
}

// ConnectionStatus reports whether the sink's connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CalibrationProgress is one range-sampler bound movement.
type CalibrationProgress struct {
	Timestamp time.Time
	Range     signal.Range
}

// SystemEvent represents a lifecycle event (e.g., startup, shutdown, sync).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "SYNCED", "HEARTBEAT", "CALIBRATION_INVALID"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// ReadingPayload is the MQTT message payload for a revolution reading.
type ReadingPayload struct {
	Tach TachPayload `json:"tach"`
}

// TachPayload contains the reading details.
type TachPayload struct {
	Timestamp    string  `json:"timestamp"`
	Revolution   uint64  `json:"revolution"`
	IntervalMs   int64   `json:"interval_ms"`
	RevPerSec    float64 `json:"rev_per_sec"`
	AvgRevPerSec float64 `json:"avg_rev_per_sec"`
}

// FormatReadingPayload creates the JSON payload for a revolution reading.
// Timestamps carry sub-second precision since intervals are millisecond-scale.
func FormatReadingPayload(r tach.Reading) ([]byte, error) {
	payload := ReadingPayload{
		Tach: TachPayload{
			Timestamp:    r.Timestamp.UTC().Format(time.RFC3339Nano),
			Revolution:   r.Revolution,
			IntervalMs:   r.Interval.Milliseconds(),
			RevPerSec:    r.RevPerSec,
			AvgRevPerSec: r.AvgRevPerSec,
		},
	}
	return json.Marshal(payload)
}

// CalibrationPayload is the MQTT message payload for calibration progress.
type CalibrationPayload struct {
	Calibration CalibrationInner `json:"calibration"`
}

// CalibrationInner contains the observed bounds.
type CalibrationInner struct {
	Timestamp string `json:"timestamp"`
	Low       int    `json:"low"`
	High      int    `json:"high"`
}

// FormatCalibrationPayload creates the JSON payload for calibration progress.
func FormatCalibrationPayload(p CalibrationProgress) ([]byte, error) {
	payload := CalibrationPayload{
		Calibration: CalibrationInner{
			Timestamp: p.Timestamp.UTC().Format(time.RFC3339),
			Low:       p.Range.Low,
			High:      p.Range.High,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for simple system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
