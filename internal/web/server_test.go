package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/servo-tach/internal/signal"
	"github.com/sweeney/servo-tach/internal/status"
	"github.com/sweeney/servo-tach/internal/tach"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Source:      "spi",
		PollMs:      2,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
		TriggerPin:  17,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetCalibration(signal.Range{Low: 100, High: 900})
	tr.SetThresholds(signal.Thresholds{Low: 460, High: 540})
	tr.SetPhase(status.PhaseRunning)
	tr.Update(signal.LevelHigh, 7, 0, &tach.Reading{
		Interval:     500 * time.Millisecond,
		RevPerSec:    2.0,
		AvgRevPerSec: 1.75,
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Phase != status.PhaseRunning {
		t.Errorf("phase: got %q, want RUNNING", sj.Status.Phase)
	}
	if sj.Status.Level != "HIGH" {
		t.Errorf("level: got %q, want HIGH", sj.Status.Level)
	}
	if sj.Status.Revolutions != 7 {
		t.Errorf("revolutions: got %d, want 7", sj.Status.Revolutions)
	}
	if sj.Status.Calibration.ThresholdLow != 460 || sj.Status.Calibration.ThresholdHigh != 540 {
		t.Errorf("thresholds: got %+v", sj.Status.Calibration)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Config.PollMs != 2 {
		t.Errorf("Config.PollMs: got %d, want 2", sj.Status.Config.PollMs)
	}
}

func TestJSONUnknownLevelBeforeCalibration(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Level != "UNKNOWN" {
		t.Errorf("level: got %q, want UNKNOWN", sj.Status.Level)
	}
	if sj.Status.Phase != status.PhaseCalibrating {
		t.Errorf("phase: got %q, want CALIBRATING", sj.Status.Phase)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetCalibration(signal.Range{Low: 100, High: 900})
	tr.SetThresholds(signal.Thresholds{Low: 460, High: 540})
	tr.SetPhase(status.PhaseRunning)
	tr.Update(signal.LevelLow, 3, 0, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)

	for _, want := range []string{"Servo Tach", "RUNNING", "LOW", "460", "540", "index.json"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
