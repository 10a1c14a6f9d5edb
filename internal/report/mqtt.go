package report

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/servo-tach/internal/tach"
)

// bufferCapacity bounds how many messages are held while the broker is
// unreachable. Readings arrive a few per second at most, so this covers
// minutes of outage.
const bufferCapacity = 256

// MQTTSink publishes to an actual MQTT broker, buffering messages while the
// connection is down and replaying them on reconnect.
type MQTTSink struct {
	client paho.Client

	mu  sync.Mutex
	buf *ringBuffer
}

// NewMQTTSink creates a sink connected to the given broker.
func NewMQTTSink(broker string) (*MQTTSink, error) {
	s := &MQTTSink{buf: newRingBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("servo-tach").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { s.drain() })

	s.client = paho.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return s, nil
}

// PublishReading sends a revolution reading. QoS 0, not retained.
func (s *MQTTSink) PublishReading(r tach.Reading) error {
	payload, err := FormatReadingPayload(r)
	if err != nil {
		return fmt.Errorf("format reading payload: %w", err)
	}
	return s.publish(TopicReadings, 0, false, payload)
}

// PublishCalibration sends calibration progress. QoS 0, not retained.
func (s *MQTTSink) PublishCalibration(p CalibrationProgress) error {
	payload, err := FormatCalibrationPayload(p)
	if err != nil {
		return fmt.Errorf("format calibration payload: %w", err)
	}
	return s.publish(TopicCalibration, 0, false, payload)
}

// PublishSystem sends a system lifecycle event.
// QoS 1 (at-least-once) — we want startup/shutdown to be delivered.
func (s *MQTTSink) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return s.publish(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is up.
func (s *MQTTSink) IsConnected() bool {
	return s.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(1000) // 1 second timeout
	return nil
}

// publish sends one message, or buffers it when the broker is unreachable.
func (s *MQTTSink) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !s.client.IsConnectionOpen() {
		s.mu.Lock()
		s.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := s.buf.len()
		s.mu.Unlock()
		log.Printf("report: broker unreachable, buffered message (%d pending)", n)
		return nil
	}

	token := s.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// drain replays buffered messages after a reconnect.
func (s *MQTTSink) drain() {
	s.mu.Lock()
	msgs := s.buf.drainAll()
	s.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("report: reconnected, replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		s.client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}
