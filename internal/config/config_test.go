package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/radiotest/internal/testutil/testlog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radiotest.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)

	path := writeConfig(t, `
device_id = "dut-7"
listen_addr = "0.0.0.0:9400"
serial_port = "/dev/ttyACM0"
serial_baud = 1000000
serial_reconnect = false
read_timeout = "30s"
packet_interval = "2ms"
keystore_root = "/var/lib/radiotest"
mqtt_broker = "tcp://broker:1883"
mqtt_topic = "lab/dut-7"
cors_origins = ["http://bench.local"]
queue_depth = 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DeviceID != "dut-7" || cfg.ListenAddr != "0.0.0.0:9400" {
		t.Fatalf("unexpected identity: %+v", cfg)
	}
	if cfg.SerialPort != "/dev/ttyACM0" || cfg.SerialBaud != 1000000 || cfg.SerialReconnect {
		t.Fatalf("unexpected serial settings: %+v", cfg)
	}
	if cfg.ReadTimeout != 30*time.Second || cfg.PacketInterval != 2*time.Millisecond {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.MQTTBroker != "tcp://broker:1883" || cfg.MQTTTopic != "lab/dut-7" {
		t.Fatalf("unexpected mqtt settings: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.QueueDepth != 8 {
		t.Fatalf("unexpected misc settings: %+v", cfg)
	}
	// untouched keys keep defaults
	def := DefaultServiceConfig()
	if cfg.HTTPAddr != def.HTTPAddr || cfg.MaxPayloadBytes != def.MaxPayloadBytes {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	testlog.Start(t)

	_, err := Load(writeConfig(t, `listen_adr = ":1"`))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	testlog.Start(t)

	_, err := Load(writeConfig(t, `packet_interval = "soon"`))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	testlog.Start(t)

	cfg := DefaultServiceConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg.ListenAddr = ""
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected missing carrier rejected, got %v", err)
	}
	cfg = DefaultServiceConfig()
	cfg.MaxPayloadBytes = 70000
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected oversize payload limit rejected, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
