// Package config loads the servo-tach daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/servo-tach/internal/adc"
	"github.com/sweeney/servo-tach/internal/trigger"
)

// Sample sources.
const (
	SourceSPI    = "spi"
	SourceSerial = "serial"
)

// Config represents the daemon configuration.
type Config struct {
	Source      string        `yaml:"source"`
	SPI         SPIConfig     `yaml:"spi"`
	Serial      SerialConfig  `yaml:"serial"`
	Trigger     TriggerConfig `yaml:"trigger"`
	MQTT        MQTTConfig    `yaml:"mqtt"`
	PollMs      int64         `yaml:"poll_ms"`
	HeartbeatMs int64         `yaml:"heartbeat_ms"`
	HTTPAddr    string        `yaml:"http_addr"`
}

// SPIConfig contains MCP3008 configuration.
type SPIConfig struct {
	Port    string `yaml:"port"`
	Channel int    `yaml:"channel"`
}

// SerialConfig contains serial ADC bridge configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// TriggerConfig contains the calibration trigger line configuration.
type TriggerConfig struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// MQTTConfig contains MQTT broker configuration.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Source: SourceSPI,
		SPI: SPIConfig{
			Port:    adc.DefaultSPIPort,
			Channel: adc.DefaultChannel,
		},
		Serial: SerialConfig{
			Port: adc.DefaultSerialPort,
			Baud: adc.DefaultBaud,
		},
		Trigger: TriggerConfig{
			Chip: trigger.DefaultChip,
			Pin:  trigger.DefaultPin,
		},
		MQTT: MQTTConfig{
			Broker: "tcp://192.168.1.200:1883",
		},
		PollMs:      2,
		HeartbeatMs: 900000, // 15 minutes
		HTTPAddr:    ":8080",
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Source == "" {
		c.Source = def.Source
	}
	if c.SPI.Port == "" {
		c.SPI.Port = def.SPI.Port
	}
	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}
	if c.Trigger.Chip == "" {
		c.Trigger.Chip = def.Trigger.Chip
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.PollMs == 0 {
		c.PollMs = def.PollMs
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = def.HTTPAddr
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Source != SourceSPI && c.Source != SourceSerial {
		return fmt.Errorf("unknown sample source %q", c.Source)
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be positive, got %d", c.PollMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must not be negative, got %d", c.HeartbeatMs)
	}
	if c.SPI.Channel < 0 || c.SPI.Channel > 7 {
		return fmt.Errorf("spi channel must be 0-7, got %d", c.SPI.Channel)
	}
	if c.Trigger.Pin < 0 {
		return fmt.Errorf("trigger pin must not be negative, got %d", c.Trigger.Pin)
	}
	return nil
}

// Poll returns the sample poll interval.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

// Heartbeat returns the heartbeat interval. Zero disables the heartbeat.
func (c *Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMs) * time.Millisecond
}
