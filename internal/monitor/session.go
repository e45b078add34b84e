// Package monitor runs one salt check: acquire the sensor, measure, evaluate,
// maybe alert, release.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/speedwagon-io/saltydog/internal/level"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
	"github.com/speedwagon-io/saltydog/internal/model"
	"github.com/speedwagon-io/saltydog/internal/units"
)

type Sensor interface {
	Open() error
	Close() error
}

type Sampler interface {
	AverageDistance(ctx context.Context, unit units.Unit, n int) (units.Distance, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, remaining float64, notation string) (*model.Alert, error)
}

type State int

const (
	Idle State = iota
	SensorAcquired
	Measuring
	Evaluating
	Alerting
	Released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SensorAcquired:
		return "sensor_acquired"
	case Measuring:
		return "measuring"
	case Evaluating:
		return "evaluating"
	case Alerting:
		return "alerting"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Report describes how far a cycle got. It is returned even when Run fails.
type Report struct {
	Path        []State
	Measured    bool
	Distance    units.Distance
	Decision    level.Decision
	Alert       *model.Alert
	Alerted     bool
	Delivered   bool
	DispatchErr error
	Threshold   units.Distance
	StartedAt   time.Time
}

// Reading flattens the report for metrics.
func (r *Report) Reading() *model.Reading {
	reading := &model.Reading{
		Threshold: r.Threshold.Value,
		Unit:      r.Threshold.Unit.String(),
		Quality:   model.QualityBad,
		Alert:     r.Alerted,
		Delivered: r.Delivered,
		Timestamp: r.StartedAt,
	}
	if r.Measured {
		reading.Quality = model.QualityGood
		reading.Distance = r.Distance.Value
		reading.RemainingCapacity = r.Decision.RemainingCapacity
	}
	return reading
}

type Session struct {
	log        *slog.Logger
	sensor     Sensor
	sampler    Sampler
	dispatcher Dispatcher
	settings   Settings
}

func NewSession(log *slog.Logger, sensor Sensor, sampler Sampler, dispatcher Dispatcher, settings Settings) *Session {
	return &Session{
		log:        log,
		sensor:     sensor,
		sampler:    sampler,
		dispatcher: dispatcher,
		settings:   settings,
	}
}

// Run performs one cycle. The sensor is closed exactly once on every path,
// including a failed Open. A dispatch failure is recorded in the report and
// does not fail the cycle.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Path:      []State{Idle},
		Threshold: s.settings.Threshold,
		StartedAt: time.Now().UTC(),
	}
	log := s.log.With(slog.String("unit", s.settings.Unit.String()))

	defer func() {
		if cerr := s.sensor.Close(); cerr != nil {
			log.Error("failed to release sensor", sl.Err(cerr))
		}
		report.Path = append(report.Path, Released)
		log.Debug("sensor released", slog.Any("path", report.Path))
	}()

	if err := s.sensor.Open(); err != nil {
		log.Error("failed to acquire sensor", sl.Err(err))
		return report, err
	}
	report.Path = append(report.Path, SensorAcquired)

	report.Path = append(report.Path, Measuring)
	distance, err := s.sampler.AverageDistance(ctx, s.settings.Unit, s.settings.Reads)
	if err != nil {
		log.Error("measurement failed", sl.Err(err))
		return report, err
	}
	report.Measured = true
	report.Distance = distance

	report.Path = append(report.Path, Evaluating)
	decision, err := level.Evaluate(distance, s.settings.Geometry, s.settings.Threshold, s.settings.Force)
	if err != nil {
		log.Error("evaluation failed", sl.Err(err))
		return report, err
	}
	report.Decision = decision

	log.Info("salt level checked",
		slog.String("distance", distance.String()),
		slog.String("remaining", decision.Remaining().String()),
		slog.String("threshold", s.settings.Threshold.String()),
		slog.Bool("low", decision.Low),
		slog.Bool("forced", decision.Forced),
		slog.String("message", model.FormatAlertBody(decision.RemainingCapacity, decision.Unit.Notation())),
	)

	if !decision.Alert {
		return report, nil
	}

	report.Path = append(report.Path, Alerting)
	report.Alerted = true
	a, err := s.dispatcher.Dispatch(ctx, decision.RemainingCapacity, decision.Unit.Notation())
	report.Alert = a
	if err != nil {
		report.DispatchErr = err
		log.Warn("cycle completed without delivering the alert", sl.Err(err))
		return report, nil
	}
	report.Delivered = true

	return report, nil
}
