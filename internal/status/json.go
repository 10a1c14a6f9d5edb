package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string          `json:"event,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Phase           string          `json:"phase"`
	Level           string          `json:"level"`
	Calibration     CalibrationJSON `json:"calibration"`
	Revolutions     uint64          `json:"revolutions"`
	SkippedReadings uint64          `json:"skipped_readings"`
	LastIntervalMs  int64           `json:"last_interval_ms"`
	RevPerSec       float64         `json:"rev_per_sec"`
	AvgRevPerSec    float64         `json:"avg_rev_per_sec"`
	SyncTime        string          `json:"sync_time,omitempty"`
	UptimeSeconds   int64           `json:"uptime_seconds"`
	StartTime       string          `json:"start_time"`
	Timestamp       string          `json:"timestamp"`
	MQTT            MQTTStatus      `json:"mqtt"`
	Config          ConfigJSON      `json:"config"`
}

// CalibrationJSON is the JSON representation of the calibration result.
type CalibrationJSON struct {
	Low           int  `json:"low"`
	High          int  `json:"high"`
	Valid         bool `json:"valid"`
	ThresholdLow  int  `json:"threshold_low"`
	ThresholdHigh int  `json:"threshold_high"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Source      string `json:"source"`
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	TriggerPin  int    `json:"trigger_pin"`
}

func buildInner(snap Snapshot) StatusInner {
	level := string(snap.Level)
	if level == "" {
		level = "UNKNOWN"
	}

	inner := StatusInner{
		Phase: snap.Phase,
		Level: level,
		Calibration: CalibrationJSON{
			Low:           snap.Range.Low,
			High:          snap.Range.High,
			Valid:         snap.Range.Valid(),
			ThresholdLow:  snap.Thresholds.Low,
			ThresholdHigh: snap.Thresholds.High,
		},
		Revolutions:     snap.Revolutions,
		SkippedReadings: snap.Skipped,
		LastIntervalMs:  snap.LastIntervalMs,
		RevPerSec:       snap.RevPerSec,
		AvgRevPerSec:    snap.AvgRevPerSec,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Source:      snap.Config.Source,
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			TriggerPin:  snap.Config.TriggerPin,
		},
	}
	if !snap.SyncTime.IsZero() {
		inner.SyncTime = snap.SyncTime.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status annotated with a system event
// name and optional reason, used as the payload for lifecycle events.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
