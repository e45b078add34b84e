package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/units"
)

func TestLoadDefaultsFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Unit != "metric" {
		t.Errorf("Unit = %q, want metric", cfg.Unit)
	}
	if cfg.Threshold != 0 {
		t.Errorf("Threshold = %v, want 0", cfg.Threshold)
	}
	if cfg.TankDepth != 100 {
		t.Errorf("TankDepth = %v, want 100", cfg.TankDepth)
	}
	if cfg.ForceReport {
		t.Error("ForceReport should default to false")
	}
	if cfg.Sensor.TriggerPin != 18 || cfg.Sensor.EchoPin != 24 {
		t.Errorf("pins = %d/%d, want 18/24", cfg.Sensor.TriggerPin, cfg.Sensor.EchoPin)
	}
	if cfg.Sensor.SpeedOfSound != 34300 {
		t.Errorf("SpeedOfSound = %v, want 34300", cfg.Sensor.SpeedOfSound)
	}
	if cfg.Sensor.Reads != 5 {
		t.Errorf("Reads = %d, want 5", cfg.Sensor.Reads)
	}
	if cfg.Sensor.TriggerPulse != 10*time.Microsecond {
		t.Errorf("TriggerPulse = %v, want 10µs", cfg.Sensor.TriggerPulse)
	}
	if cfg.Sensor.EchoTimeout != 100*time.Millisecond {
		t.Errorf("EchoTimeout = %v, want 100ms", cfg.Sensor.EchoTimeout)
	}
	if cfg.Metrics.Timeout != 5*time.Second {
		t.Errorf("Metrics.Timeout = %v, want 5s", cfg.Metrics.Timeout)
	}
	if cfg.Alert.Channel != ChannelSMS {
		t.Errorf("Channel = %q, want sms", cfg.Alert.Channel)
	}
}

func TestLoadFileWithEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
unit: imperial
threshold: 4
tank_depth: 40
sensor:
  reads: 3
  echo_timeout: 250ms
alert:
  channel: webhook
  webhook:
    url: http://localhost:9999/hook
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SALT_THRESHOLD", "7.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if u, ok := cfg.UnitSystem(); u != units.Imperial || !ok {
		t.Errorf("UnitSystem = %v, %v; want imperial, true", u, ok)
	}
	if cfg.Threshold != 7.5 {
		t.Errorf("Threshold = %v, want env override 7.5", cfg.Threshold)
	}
	if cfg.TankDepth != 40 {
		t.Errorf("TankDepth = %v, want 40", cfg.TankDepth)
	}
	if cfg.Sensor.Reads != 3 {
		t.Errorf("Reads = %d, want 3", cfg.Sensor.Reads)
	}
	if cfg.Sensor.EchoTimeout != 250*time.Millisecond {
		t.Errorf("EchoTimeout = %v, want 250ms", cfg.Sensor.EchoTimeout)
	}
	if cfg.Sensor.TriggerPin != 18 {
		t.Errorf("TriggerPin = %d, want default 18", cfg.Sensor.TriggerPin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Unit:      "metric",
		TankDepth: 100,
		Sensor: SensorConfig{
			TriggerPin:   18,
			EchoPin:      24,
			SpeedOfSound: 34300,
			Reads:        5,
			ReadInterval: 60 * time.Millisecond,
			TriggerPulse: 10 * time.Microsecond,
			EchoTimeout:  100 * time.Millisecond,
		},
		Alert: AlertConfig{
			Channel: ChannelSMS,
			To:      "+15550001111",
			From:    "+15550002222",
			Timeout: 10 * time.Second,
			Twilio:  TwilioConfig{Username: "AC123", Password: "secret"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero reads", func(c *Config) { c.Sensor.Reads = 0 }, "sensor.reads"},
		{"negative reads", func(c *Config) { c.Sensor.Reads = -2 }, "sensor.reads"},
		{"zero depth", func(c *Config) { c.TankDepth = 0 }, "tank_depth"},
		{"negative depth", func(c *Config) { c.TankDepth = -10 }, "tank_depth"},
		{"negative threshold", func(c *Config) { c.Threshold = -1 }, "threshold"},
		{"same pins", func(c *Config) { c.Sensor.EchoPin = 18 }, "different pins"},
		{"no timeout", func(c *Config) { c.Sensor.EchoTimeout = 0 }, "echo_timeout"},
		{"no speed", func(c *Config) { c.Sensor.SpeedOfSound = 0 }, "speed_of_sound"},
		{"sms without numbers", func(c *Config) { c.Alert.To = "" }, "alert.to"},
		{"sms without credentials", func(c *Config) { c.Alert.Twilio.Password = "" }, "twilio"},
		{"unknown channel", func(c *Config) { c.Alert.Channel = "pigeon" }, "pigeon"},
		{"telegram chat id", func(c *Config) {
			c.Alert.Channel = ChannelTelegram
			c.Alert.Telegram.Token = "123:abc"
			c.Alert.To = "not-a-chat"
		}, "chat id"},
		{"log channel needs nothing", func(c *Config) {
			c.Alert = AlertConfig{Channel: ChannelLog, Timeout: time.Second}
		}, ""},
		{"journal without path", func(c *Config) { c.Journal.Enabled = true }, "journal.path"},
		{"pushgateway without timeout", func(c *Config) { c.Metrics.PushgatewayURL = "http://pgw:9091" }, "metrics.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, errs.ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestUnitSystemFallback(t *testing.T) {
	cfg := &Config{Unit: "cubits"}
	u, ok := cfg.UnitSystem()
	if u != units.Metric || ok {
		t.Errorf("UnitSystem = %v, %v; want metric, false", u, ok)
	}
}
