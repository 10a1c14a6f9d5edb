package report

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/servo-tach/internal/signal"
	"github.com/sweeney/servo-tach/internal/tach"
)

func TestFormatReadingPayload(t *testing.T) {
	reading := tach.Reading{
		Timestamp:    time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC),
		Revolution:   7,
		Interval:     500 * time.Millisecond,
		RevPerSec:    2.0,
		AvgRevPerSec: 1.75,
	}

	data, err := FormatReadingPayload(reading)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed ReadingPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Tach.Revolution != 7 {
		t.Errorf("revolution: got %d, want 7", parsed.Tach.Revolution)
	}
	if parsed.Tach.IntervalMs != 500 {
		t.Errorf("interval_ms: got %d, want 500", parsed.Tach.IntervalMs)
	}
	if parsed.Tach.RevPerSec != 2.0 {
		t.Errorf("rev_per_sec: got %v, want 2.0", parsed.Tach.RevPerSec)
	}
	if parsed.Tach.AvgRevPerSec != 1.75 {
		t.Errorf("avg_rev_per_sec: got %v, want 1.75", parsed.Tach.AvgRevPerSec)
	}
	if parsed.Tach.Timestamp != "2026-03-14T09:26:53.589Z" {
		t.Errorf("timestamp: got %q", parsed.Tach.Timestamp)
	}
}

func TestFormatCalibrationPayload(t *testing.T) {
	progress := CalibrationProgress{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Range:     signal.Range{Low: 100, High: 900},
	}

	data, err := FormatCalibrationPayload(progress)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed CalibrationPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Calibration.Low != 100 {
		t.Errorf("low: got %d, want 100", parsed.Calibration.Low)
	}
	if parsed.Calibration.High != 900 {
		t.Errorf("high: got %d, want 900", parsed.Calibration.High)
	}
	if parsed.Calibration.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp: got %q", parsed.Calibration.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRawOverride(t *testing.T) {
	raw := []byte(`{"status":{"phase":"RUNNING"}}`)
	event := SystemEvent{Event: "HEARTBEAT", RawPayload: raw}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", data)
	}
}

func TestFakeSinkRecords(t *testing.T) {
	f := NewFakeSink()

	reading := tach.Reading{Revolution: 1, Interval: time.Second, RevPerSec: 1}
	if err := f.PublishReading(reading); err != nil {
		t.Fatalf("publish reading: %v", err)
	}
	if err := f.PublishCalibration(CalibrationProgress{Range: signal.Range{Low: 1, High: 2}}); err != nil {
		t.Fatalf("publish calibration: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("publish system: %v", err)
	}

	if len(f.Readings) != 1 || len(f.ReadingPayloads) != 1 {
		t.Errorf("expected 1 recorded reading, got %d/%d", len(f.Readings), len(f.ReadingPayloads))
	}
	if len(f.Calibrations) != 1 {
		t.Errorf("expected 1 recorded calibration, got %d", len(f.Calibrations))
	}
	if len(f.SystemEvents) != 1 {
		t.Errorf("expected 1 recorded system event, got %d", len(f.SystemEvents))
	}
}

func TestFakeSinkPublishError(t *testing.T) {
	f := NewFakeSink()
	f.PublishError = errors.New("broker down")

	if err := f.PublishReading(tach.Reading{}); err == nil {
		t.Error("expected configured publish error")
	}
	if len(f.Readings) != 0 {
		t.Error("failed publish must not be recorded")
	}
}

func TestFakeSinkReset(t *testing.T) {
	f := NewFakeSink()
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Connected = true
	f.Close()

	f.Reset()
	if len(f.SystemEvents) != 0 || f.Closed || f.Connected {
		t.Error("Reset should clear all recorded state")
	}
}
