// Package sensor drives an HC-SR04 ultrasonic ranging module and turns its
// echo timing into distances.
//
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/Proximity/HCSR04.pdf
package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/gpio"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
)

// HCSR04 owns the trigger and echo pins between Open and Close.
type HCSR04 struct {
	log     *slog.Logger
	ctl     gpio.Controller
	trigger int
	echo    int
	pulse   time.Duration
	timeout time.Duration
	now     func() time.Time

	opened bool
	closed bool
}

func NewHCSR04(log *slog.Logger, ctl gpio.Controller, cfg *config.SensorConfig) *HCSR04 {
	return &HCSR04{
		log:     log,
		ctl:     ctl,
		trigger: cfg.TriggerPin,
		echo:    cfg.EchoPin,
		pulse:   cfg.TriggerPulse,
		timeout: cfg.EchoTimeout,
		now:     time.Now,
	}
}

// Open configures the trigger as an output and the echo as an input.
func (s *HCSR04) Open() error {
	if s.closed {
		return fmt.Errorf("%w: sensor already released", errs.ErrResourceNotReady)
	}

	if err := s.ctl.Configure(s.trigger, gpio.Output); err != nil {
		return fmt.Errorf("%w: trigger pin %d: %w", errs.ErrResourceNotReady, s.trigger, err)
	}
	if err := s.ctl.Configure(s.echo, gpio.Input); err != nil {
		return fmt.Errorf("%w: echo pin %d: %w", errs.ErrResourceNotReady, s.echo, err)
	}

	s.opened = true
	s.log.Debug("sensor acquired",
		slog.Int("trigger_pin", s.trigger),
		slog.Int("echo_pin", s.echo),
	)
	return nil
}

// Close releases the pins. Only the first call reaches the controller, so it
// is safe to defer even when Open failed.
func (s *HCSR04) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.opened = false

	if err := s.ctl.Cleanup(); err != nil {
		s.log.Error("failed to release gpio", sl.Err(err))
		return fmt.Errorf("failed to release gpio: %w", err)
	}

	s.log.Debug("sensor released")
	return nil
}

// MeasureEchoDuration fires one trigger pulse and returns how long the echo
// line stayed high. Both edge waits are bounded by the echo timeout. The
// polling loops never yield; ctx is only consulted before the pulse.
func (s *HCSR04) MeasureEchoDuration(ctx context.Context) (time.Duration, error) {
	if !s.opened {
		return 0, fmt.Errorf("%w: sensor is not open", errs.ErrResourceNotReady)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := s.ctl.Write(s.trigger, gpio.High); err != nil {
		return 0, fmt.Errorf("failed to raise trigger: %w", err)
	}
	time.Sleep(s.pulse)
	if err := s.ctl.Write(s.trigger, gpio.Low); err != nil {
		return 0, fmt.Errorf("failed to lower trigger: %w", err)
	}

	start := s.now()
	deadline := start.Add(s.timeout)
	for {
		level, err := s.ctl.Read(s.echo)
		if err != nil {
			return 0, fmt.Errorf("failed to read echo: %w", err)
		}
		if level == gpio.High {
			break
		}
		start = s.now()
		if start.After(deadline) {
			return 0, fmt.Errorf("%w: echo did not rise within %s", errs.ErrSensorTimeout, s.timeout)
		}
	}

	stop := s.now()
	deadline = start.Add(s.timeout)
	for {
		level, err := s.ctl.Read(s.echo)
		if err != nil {
			return 0, fmt.Errorf("failed to read echo: %w", err)
		}
		if level == gpio.Low {
			break
		}
		stop = s.now()
		if stop.After(deadline) {
			return 0, fmt.Errorf("%w: echo did not fall within %s", errs.ErrSensorTimeout, s.timeout)
		}
	}

	return stop.Sub(start), nil
}
