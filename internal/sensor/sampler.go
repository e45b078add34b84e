package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/units"
)

type EchoTimer interface {
	MeasureEchoDuration(ctx context.Context) (time.Duration, error)
}

// Sampler turns echo timings into distances. The sensor is not perfectly
// accurate, so callers usually want AverageDistance.
type Sampler struct {
	log          *slog.Logger
	timer        EchoTimer
	speedOfSound float64
	interval     time.Duration
}

func NewSampler(log *slog.Logger, timer EchoTimer, cfg *config.SensorConfig) *Sampler {
	return &Sampler{
		log:          log,
		timer:        timer,
		speedOfSound: cfg.SpeedOfSound,
		interval:     cfg.ReadInterval,
	}
}

// TimeToCentimeters converts a round-trip time of flight into the one-way
// distance for a speed of sound given in cm/s.
func TimeToCentimeters(elapsed time.Duration, speedOfSound float64) float64 {
	return (elapsed.Seconds() * speedOfSound) / 2
}

func (s *Sampler) SampleDistance(ctx context.Context, unit units.Unit) (units.Distance, error) {
	cm, err := s.sampleCentimeters(ctx)
	if err != nil {
		return units.Distance{}, err
	}
	return units.Centimeters(cm).In(unit), nil
}

// AverageDistance takes n samples, averages them in centimeters and converts
// the mean once.
func (s *Sampler) AverageDistance(ctx context.Context, unit units.Unit, n int) (units.Distance, error) {
	if n < 1 {
		return units.Distance{}, fmt.Errorf("%w: read count must be at least 1, got %d", errs.ErrInvalidConfiguration, n)
	}

	var mean float64
	for i := 0; i < n; i++ {
		if i > 0 && s.interval > 0 {
			select {
			case <-ctx.Done():
				return units.Distance{}, ctx.Err()
			case <-time.After(s.interval):
			}
		}

		cm, err := s.sampleCentimeters(ctx)
		if err != nil {
			return units.Distance{}, fmt.Errorf("sample %d of %d: %w", i+1, n, err)
		}

		// incremental mean: n equal samples average to exactly that sample
		mean += (cm - mean) / float64(i+1)
	}

	avg := units.Centimeters(mean).In(unit)
	s.log.Debug("averaged distance",
		slog.Int("reads", n),
		slog.Float64("centimeters", mean),
		slog.String("distance", avg.String()),
	)
	return avg, nil
}

func (s *Sampler) sampleCentimeters(ctx context.Context) (float64, error) {
	elapsed, err := s.timer.MeasureEchoDuration(ctx)
	if err != nil {
		return 0, err
	}

	cm := TimeToCentimeters(elapsed, s.speedOfSound)
	s.log.Debug("sample",
		slog.Duration("elapsed", elapsed),
		slog.Float64("centimeters", cm),
	)
	return cm, nil
}
