// Package metrics pushes the outcome of a check cycle to a Prometheus
// Pushgateway. The process exits right after, so nothing is scraped.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/model"
)

type Pusher struct {
	log      *slog.Logger
	url      string
	job      string
	instance string
	timeout  time.Duration
}

func NewPusher(log *slog.Logger, cfg *config.MetricsConfig, instance string) *Pusher {
	return &Pusher{
		log:      log,
		url:      cfg.PushgatewayURL,
		job:      cfg.Job,
		instance: instance,
		timeout:  cfg.Timeout,
	}
}

// Push sends one reading. It gives up after the configured timeout so a
// stuck gateway cannot keep the process alive.
func (p *Pusher) Push(ctx context.Context, r *model.Reading) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"unit": r.Unit}

	gauges := []struct {
		name  string
		help  string
		value float64
	}{
		{"saltydog_distance", "Averaged distance from the sensor to the salt surface.", r.Distance},
		{"saltydog_remaining_capacity", "Tank depth minus measured distance.", r.RemainingCapacity},
		{"saltydog_threshold", "Configured low-salt threshold.", r.Threshold},
		{"saltydog_reading_good", "1 when the cycle produced a reading.", boolToFloat(r.Quality == model.QualityGood)},
		{"saltydog_alert", "1 when the cycle decided to alert.", boolToFloat(r.Alert)},
		{"saltydog_alert_delivered", "1 when the alert reached the messenger.", boolToFloat(r.Delivered)},
		{"saltydog_last_run_timestamp_seconds", "Unix time of the check cycle.", float64(r.Timestamp.Unix())},
	}

	for _, g := range gauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        g.name,
			Help:        g.help,
			ConstLabels: labels,
		})
		gauge.Set(g.value)
		if err := reg.Register(gauge); err != nil {
			return fmt.Errorf("failed to register %s: %w", g.name, err)
		}
	}

	pusher := push.New(p.url, p.job).
		Gatherer(reg).
		Client(&http.Client{Timeout: p.timeout})
	if p.instance != "" {
		pusher = pusher.Grouping("instance", p.instance)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	p.log.Debug("metrics pushed", slog.String("url", p.url), slog.String("job", p.job))
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
