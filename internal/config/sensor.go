package config

import (
	"fmt"
	"time"
)

// SensorConfig describes how the HC-SR04 is wired and sampled.
type SensorConfig struct {
	TriggerPin   int           `yaml:"trigger_pin" env:"SALT_TRIGGER_PIN" env-default:"18"`
	EchoPin      int           `yaml:"echo_pin" env:"SALT_ECHO_PIN" env-default:"24"`
	SpeedOfSound float64       `yaml:"speed_of_sound" env-default:"34300"` // cm/s
	Reads        int           `yaml:"reads" env:"SALT_READS" env-default:"5"`
	ReadInterval time.Duration `yaml:"read_interval" env-default:"60ms"`
	TriggerPulse time.Duration `yaml:"trigger_pulse" env-default:"10us"`
	EchoTimeout  time.Duration `yaml:"echo_timeout" env-default:"100ms"`
}

func (s *SensorConfig) validate() []string {
	var problems []string

	if s.TriggerPin < 0 || s.EchoPin < 0 {
		problems = append(problems, "sensor pins must not be negative")
	}
	if s.TriggerPin == s.EchoPin {
		problems = append(problems, fmt.Sprintf("trigger and echo must use different pins, both are %d", s.EchoPin))
	}
	if s.SpeedOfSound <= 0 {
		problems = append(problems, "sensor.speed_of_sound must be positive")
	}
	if s.Reads < 1 {
		problems = append(problems, fmt.Sprintf("sensor.reads must be at least 1, got %d", s.Reads))
	}
	if s.ReadInterval < 0 {
		problems = append(problems, "sensor.read_interval must not be negative")
	}
	if s.TriggerPulse <= 0 {
		problems = append(problems, "sensor.trigger_pulse must be positive")
	}
	if s.EchoTimeout <= 0 {
		problems = append(problems, "sensor.echo_timeout must be positive")
	}

	return problems
}
