package sensor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
	"github.com/speedwagon-io/saltydog/internal/units"
)

type scriptedTimer struct {
	durations []time.Duration
	errAt     int
	err       error
	calls     int
}

func (s *scriptedTimer) MeasureEchoDuration(ctx context.Context) (time.Duration, error) {
	s.calls++
	if s.err != nil && s.calls == s.errAt {
		return 0, s.err
	}
	return s.durations[(s.calls-1)%len(s.durations)], nil
}

func newSampler(timer EchoTimer, speed float64) *Sampler {
	return NewSampler(sl.NewDiscardLogger(), timer, &config.SensorConfig{SpeedOfSound: speed})
}

func TestTimeToCentimeters(t *testing.T) {
	// 1ms round trip at 34300 cm/s is 17.15 cm one way
	if got := TimeToCentimeters(time.Millisecond, 34300); math.Abs(got-17.15) > 1e-9 {
		t.Errorf("TimeToCentimeters(1ms) = %v, want 17.15", got)
	}
	if got := TimeToCentimeters(0, 34300); got != 0 {
		t.Errorf("TimeToCentimeters(0) = %v, want 0", got)
	}

	prev := -1.0
	for us := 0; us <= 25000; us += 250 {
		d := TimeToCentimeters(time.Duration(us)*time.Microsecond, 34300)
		if d <= prev {
			t.Fatalf("distance not increasing at %dµs: %v after %v", us, d, prev)
		}
		prev = d
	}
}

func TestAverageDistanceMean(t *testing.T) {
	// at 2 cm/s a round trip of x seconds is x cm
	timer := &scriptedTimer{durations: []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}}
	s := newSampler(timer, 2)

	got, err := s.AverageDistance(context.Background(), units.Metric, 3)
	if err != nil {
		t.Fatalf("AverageDistance failed: %v", err)
	}
	if got.Value != 4 || got.Unit != units.Metric {
		t.Errorf("AverageDistance = %v, want 4 centimeters", got)
	}
	if timer.calls != 3 {
		t.Errorf("sampled %d times, want 3", timer.calls)
	}
}

func TestAverageDistanceIdenticalReadings(t *testing.T) {
	for _, d := range []time.Duration{583 * time.Microsecond, 1777 * time.Microsecond, 3 * time.Millisecond} {
		single, err := newSampler(&scriptedTimer{durations: []time.Duration{d}}, 34300).
			SampleDistance(context.Background(), units.Metric)
		if err != nil {
			t.Fatalf("SampleDistance failed: %v", err)
		}

		for _, n := range []int{1, 5, 7, 50} {
			avg, err := newSampler(&scriptedTimer{durations: []time.Duration{d}}, 34300).
				AverageDistance(context.Background(), units.Metric, n)
			if err != nil {
				t.Fatalf("AverageDistance failed: %v", err)
			}
			if avg.Value != single.Value {
				t.Errorf("n=%d over %v: average %v != single %v", n, d, avg.Value, single.Value)
			}
		}
	}
}

func TestAverageDistanceImperial(t *testing.T) {
	timer := &scriptedTimer{durations: []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}}
	s := newSampler(timer, 2)

	got, err := s.AverageDistance(context.Background(), units.Imperial, 3)
	if err != nil {
		t.Fatalf("AverageDistance failed: %v", err)
	}
	if got.Unit != units.Imperial || math.Abs(got.Value-4/2.54) > 1e-12 {
		t.Errorf("AverageDistance = %v, want %v inches", got, 4/2.54)
	}
}

func TestAverageDistanceRejectsZeroReads(t *testing.T) {
	timer := &scriptedTimer{durations: []time.Duration{time.Millisecond}}
	s := newSampler(timer, 34300)

	for _, n := range []int{0, -1} {
		_, err := s.AverageDistance(context.Background(), units.Metric, n)
		if !errors.Is(err, errs.ErrInvalidConfiguration) {
			t.Errorf("n=%d: expected ErrInvalidConfiguration, got %v", n, err)
		}
	}
	if timer.calls != 0 {
		t.Errorf("sensor sampled %d times for an invalid read count", timer.calls)
	}
}

func TestAverageDistanceStopsOnSampleFailure(t *testing.T) {
	timer := &scriptedTimer{
		durations: []time.Duration{time.Millisecond},
		errAt:     2,
		err:       errs.ErrSensorTimeout,
	}
	s := newSampler(timer, 34300)

	_, err := s.AverageDistance(context.Background(), units.Metric, 5)
	if !errors.Is(err, errs.ErrSensorTimeout) {
		t.Fatalf("expected ErrSensorTimeout, got %v", err)
	}
	if timer.calls != 2 {
		t.Errorf("sampled %d times, want to stop after 2", timer.calls)
	}
}

func TestAverageDistanceCanceledBetweenSamples(t *testing.T) {
	timer := &scriptedTimer{durations: []time.Duration{time.Millisecond}}
	s := NewSampler(sl.NewDiscardLogger(), timer, &config.SensorConfig{
		SpeedOfSound: 34300,
		ReadInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.AverageDistance(ctx, units.Metric, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if timer.calls != 1 {
		t.Errorf("sampled %d times, want 1", timer.calls)
	}
}
