// Command servo-tach calibrates an analog light sensor against a servo-driven
// interrupter wheel, then times revolutions and publishes readings to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/sweeney/servo-tach/internal/adc"
	"github.com/sweeney/servo-tach/internal/config"
	"github.com/sweeney/servo-tach/internal/report"
	"github.com/sweeney/servo-tach/internal/signal"
	"github.com/sweeney/servo-tach/internal/status"
	"github.com/sweeney/servo-tach/internal/tach"
	"github.com/sweeney/servo-tach/internal/trigger"
	"github.com/sweeney/servo-tach/internal/web"
)

func main() {
	configPath := flag.String("config", "servo-tach.yaml", "Path to YAML config file")
	poll := flag.Duration("poll", 0, "Sample polling interval (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	heartbeat := flag.Duration("heartbeat", -1, "Heartbeat interval, 0 to disable (overrides config)")
	source := flag.String("source", "", `Sample source, "spi" or "serial" (overrides config)`)
	httpAddr := flag.String("http", "", `HTTP status address, "off" to disable (overrides config)`)

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	applyOverrides(cfg, *poll, *broker, *heartbeat, *source, *httpAddr)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverrides folds command-line flags into the loaded config. Zero /
// empty flag values leave the config value in place; -heartbeat uses -1 as
// the sentinel because 0 is a meaningful value (disabled).
func applyOverrides(cfg *config.Config, poll time.Duration, broker string, heartbeat time.Duration, source, httpAddr string) {
	if poll > 0 {
		cfg.PollMs = poll.Milliseconds()
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if heartbeat >= 0 {
		cfg.HeartbeatMs = heartbeat.Milliseconds()
	}
	if source != "" {
		cfg.Source = source
	}
	if httpAddr == "off" {
		cfg.HTTPAddr = ""
	} else if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
}

// newSampleReader opens the configured raw sample source.
func newSampleReader(cfg *config.Config) (adc.Reader, error) {
	switch cfg.Source {
	case config.SourceSPI:
		return adc.NewMCP3008(cfg.SPI.Port, cfg.SPI.Channel)
	case config.SourceSerial:
		return adc.NewSerialReader(cfg.Serial.Port, cfg.Serial.Baud)
	}
	return nil, fmt.Errorf("unknown sample source %q", cfg.Source)
}

func run(cfg *config.Config) error {
	reader, err := newSampleReader(cfg)
	if err != nil {
		return fmt.Errorf("init sample source: %w", err)
	}
	defer reader.Close()

	trig, err := trigger.NewRealLine(cfg.Trigger.Chip, cfg.Trigger.Pin)
	if err != nil {
		return fmt.Errorf("init trigger: %w", err)
	}
	defer trig.Close()

	sink, err := report.NewMQTTSink(cfg.MQTT.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer sink.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Source:      cfg.Source,
		PollMs:      cfg.PollMs,
		HeartbeatMs: cfg.HeartbeatMs,
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		TriggerPin:  cfg.Trigger.Pin,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := report.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := sink.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: source=%s poll=%v broker=%s heartbeat=%v", cfg.Source, cfg.Poll(), cfg.MQTT.Broker, cfg.Heartbeat())

	ticker := time.NewTicker(cfg.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("calibrating: vary light exposure, close trigger switch when done")
	rng, stop, err := runCalibrate(reader, trig, sink, tracker, time.Now, ticker.C, sigCh)
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}
	if stop != nil {
		publishShutdown(sink, sink, tracker, time.Now(), stop)
		return nil
	}

	if !rng.Valid() {
		event := report.SystemEvent{
			Timestamp: time.Now(),
			Event:     "CALIBRATION_INVALID",
			Reason:    fmt.Sprintf("observed range %d-%d has no extent", rng.Low, rng.High),
			Retained:  true,
		}
		if err := sink.PublishSystem(event); err != nil {
			log.Printf("failed to publish calibration event: %v", err)
		}
		return fmt.Errorf("calibration range %d-%d has no extent; sensor pinned or unplugged", rng.Low, rng.High)
	}

	thr := signal.DeriveThresholds(rng)
	tracker.SetThresholds(thr)
	tracker.SetPhase(status.PhaseSyncing)
	log.Printf("calibrated: range=%d-%d thresholds=%d/%d", rng.Low, rng.High, thr.Low, thr.High)

	return runLoop(reader, sink, sink, tracker, thr, cfg.Heartbeat(), time.Now, ticker.C, sigCh)
}

// runCalibrate drives the range sampler until the operator closes the
// trigger switch. It returns the observed range, or the signal that
// interrupted calibration.
func runCalibrate(reader adc.Reader, trig trigger.Line, sink report.Sink, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) (signal.Range, os.Signal, error) {
	sampler := signal.NewRangeSampler()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v during calibration, shutting down", s)
			return signal.Range{}, s, nil

		case <-tick:
			held, err := trig.Read()
			if err != nil {
				return signal.Range{}, nil, fmt.Errorf("read trigger: %w", err)
			}
			if !held {
				return sampler.Range(), nil, nil
			}

			raw, err := reader.Read()
			if err != nil {
				log.Printf("sample read error: %v", err)
				continue
			}
			if sampler.Observe(raw) {
				r := sampler.Range()
				tracker.SetCalibration(r)
				log.Printf("calibration: range=%d-%d", r.Low, r.High)
				progress := report.CalibrationProgress{Timestamp: now(), Range: r}
				if err := sink.PublishCalibration(progress); err != nil {
					log.Printf("calibration publish error: %v", err)
				}
			}
		}
	}
}

// runLoop is the measurement loop: sample, debounce, time revolutions,
// publish. It runs until a shutdown signal arrives.
func runLoop(reader adc.Reader, sink report.Sink, connStatus report.ConnectionStatus, tracker *status.Tracker, thr signal.Thresholds, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	// The wheel is stationary with the slot open when timing starts, so the
	// comparator begins LOW and the first blocked reading is a real edge.
	comparator := signal.NewComparator(thr, signal.LevelLow)
	revs := tach.NewTracker()
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			publishShutdown(sink, connStatus, tracker, now(), s)
			return nil

		case <-tick:
			t := now()
			raw, err := reader.Read()
			if err != nil {
				log.Printf("sample read error: %v", err)
				continue
			}

			level := comparator.Sample(raw)
			wasSynced := revs.Synced()
			reading := revs.Process(level, t)

			if !wasSynced && revs.Synced() {
				tracker.SetSyncTime(revs.StartTime())
				tracker.SetPhase(status.PhaseRunning)
				log.Printf("synced: time zero at %v", revs.StartTime().UTC().Format(time.RFC3339Nano))
				event := report.SystemEvent{Timestamp: revs.StartTime(), Event: "SYNCED"}
				if err := sink.PublishSystem(event); err != nil {
					log.Printf("sync publish error: %v", err)
				}
			}

			if reading != nil {
				if reading.Skipped {
					log.Printf("revolution %d: zero interval, reading skipped", reading.Revolution)
				} else {
					log.Printf("revolution %d: interval=%v speed=%.3f avg=%.3f",
						reading.Revolution, reading.Interval, reading.RevPerSec, reading.AvgRevPerSec)
					if err := sink.PublishReading(*reading); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			tracker.Update(level, revs.Revolutions(), revs.SkippedReadings(), reading)
			if connStatus != nil {
				tracker.SetMQTTConnected(connStatus.IsConnected())
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				snap := tracker.Snapshot()
				hbEvent := report.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := sink.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				} else {
					log.Printf("heartbeat: revs=%d skipped=%d", revs.Revolutions(), revs.SkippedReadings())
				}
			}
		}
	}
}

// publishShutdown sends the retained SHUTDOWN event with a full status
// snapshot.
func publishShutdown(sink report.Sink, connStatus report.ConnectionStatus, tracker *status.Tracker, t time.Time, s os.Signal) {
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}

	event := report.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if tracker != nil {
		if connStatus != nil {
			tracker.SetMQTTConnected(connStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
	}
	if err := sink.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}
