// Package config loads radiotestd settings from TOML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("config: invalid")

// ServiceConfig is the full daemon configuration.
type ServiceConfig struct {
	DeviceID        string
	ListenAddr      string
	HTTPAddr        string
	CorsOrigins     []string
	HTTPToken       string
	SerialPort      string
	SerialBaud      int
	SerialReconnect bool
	ReadTimeout     time.Duration
	PacketInterval  time.Duration
	KeystoreRoot    string
	MQTTBroker      string
	MQTTTopic       string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	QueueDepth      int
	MaxPayloadBytes int
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DeviceID:        "radiotest.local",
		ListenAddr:      "127.0.0.1:7400",
		HTTPAddr:        "127.0.0.1:7401",
		SerialBaud:      115200,
		SerialReconnect: true,
		ReadTimeout:     5 * time.Minute,
		PacketInterval:  10 * time.Millisecond,
		MQTTTopic:       "radiotest",
		QueueDepth:      64,
		MaxPayloadBytes: 1024,
	}
}

// radiotestd config.toml key mapping.
type fileConfig struct {
	DeviceID        string   `toml:"device_id"`
	ListenAddr      string   `toml:"listen_addr"`
	HTTPAddr        string   `toml:"http_addr"`
	CorsOrigins     []string `toml:"cors_origins"`
	HTTPToken       string   `toml:"http_token"`
	SerialPort      string   `toml:"serial_port"`
	SerialBaud      int      `toml:"serial_baud"`
	SerialReconnect bool     `toml:"serial_reconnect"`
	ReadTimeout     string   `toml:"read_timeout"`
	PacketInterval  string   `toml:"packet_interval"`
	KeystoreRoot    string   `toml:"keystore_root"`
	MQTTBroker      string   `toml:"mqtt_broker"`
	MQTTTopic       string   `toml:"mqtt_topic"`
	MQTTClientID    string   `toml:"mqtt_client_id"`
	MQTTUsername    string   `toml:"mqtt_username"`
	MQTTPassword    string   `toml:"mqtt_password"`
	QueueDepth      int      `toml:"queue_depth"`
	MaxPayloadBytes int      `toml:"max_payload_bytes"`
}

// Load overlays the keys present in the TOML file at path onto the defaults.
func Load(path string) (ServiceConfig, error) {
	cfg := DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("load radiotest config: %w", err)
	}

	if meta.IsDefined("device_id") {
		cfg.DeviceID = strings.TrimSpace(raw.DeviceID)
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("http_token") {
		cfg.HTTPToken = strings.TrimSpace(raw.HTTPToken)
	}
	if meta.IsDefined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}
	if meta.IsDefined("serial_baud") {
		cfg.SerialBaud = raw.SerialBaud
	}
	if meta.IsDefined("serial_reconnect") {
		cfg.SerialReconnect = raw.SerialReconnect
	}
	if meta.IsDefined("read_timeout") {
		d, err := parseDuration("read_timeout", raw.ReadTimeout)
		if err != nil {
			return ServiceConfig{}, err
		}
		cfg.ReadTimeout = d
	}
	if meta.IsDefined("packet_interval") {
		d, err := parseDuration("packet_interval", raw.PacketInterval)
		if err != nil {
			return ServiceConfig{}, err
		}
		cfg.PacketInterval = d
	}
	if meta.IsDefined("keystore_root") {
		cfg.KeystoreRoot = strings.TrimSpace(raw.KeystoreRoot)
	}
	if meta.IsDefined("mqtt_broker") {
		cfg.MQTTBroker = strings.TrimSpace(raw.MQTTBroker)
	}
	if meta.IsDefined("mqtt_topic") {
		cfg.MQTTTopic = strings.TrimSpace(raw.MQTTTopic)
	}
	if meta.IsDefined("mqtt_client_id") {
		cfg.MQTTClientID = strings.TrimSpace(raw.MQTTClientID)
	}
	if meta.IsDefined("mqtt_username") {
		cfg.MQTTUsername = raw.MQTTUsername
	}
	if meta.IsDefined("mqtt_password") {
		cfg.MQTTPassword = raw.MQTTPassword
	}
	if meta.IsDefined("queue_depth") {
		cfg.QueueDepth = raw.QueueDepth
	}
	if meta.IsDefined("max_payload_bytes") {
		cfg.MaxPayloadBytes = raw.MaxPayloadBytes
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ServiceConfig{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c ServiceConfig) Validate() error {
	if strings.TrimSpace(c.DeviceID) == "" {
		return fmt.Errorf("%w: device_id required", ErrInvalidConfig)
	}
	if c.ListenAddr == "" && c.SerialPort == "" {
		return fmt.Errorf("%w: listen_addr or serial_port required", ErrInvalidConfig)
	}
	if c.SerialPort != "" && c.SerialBaud <= 0 {
		return fmt.Errorf("%w: serial_baud must be positive", ErrInvalidConfig)
	}
	if c.QueueDepth <= 0 {
		return fmt.Errorf("%w: queue_depth must be positive", ErrInvalidConfig)
	}
	if c.MaxPayloadBytes <= 0 || c.MaxPayloadBytes > 65535 {
		return fmt.Errorf("%w: max_payload_bytes must be 1..65535", ErrInvalidConfig)
	}
	if c.PacketInterval <= 0 {
		return fmt.Errorf("%w: packet_interval must be positive", ErrInvalidConfig)
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return d, nil
}
