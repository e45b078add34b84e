// Package alert turns a low-salt decision into a notification and hands it to
// exactly one messenger.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
	"github.com/speedwagon-io/saltydog/internal/model"
)

type Messenger interface {
	Name() string
	Send(ctx context.Context, alert *model.Alert) error
}

// Journal receives alerts the messenger rejected.
type Journal interface {
	Record(ctx context.Context, alert *model.Alert, reason string) error
}

type Dispatcher struct {
	log       *slog.Logger
	messenger Messenger
	journal   Journal
	to        string
	from      string
	timeout   time.Duration
}

// NewDispatcher wires a messenger. journal may be nil.
func NewDispatcher(log *slog.Logger, messenger Messenger, cfg *config.AlertConfig, journal Journal) *Dispatcher {
	return &Dispatcher{
		log:       log,
		messenger: messenger,
		journal:   journal,
		to:        cfg.To,
		from:      cfg.From,
		timeout:   cfg.Timeout,
	}
}

// Dispatch sends one alert. A delivery error is returned wrapped in
// errs.ErrDispatchFailure together with the alert that was attempted; there
// is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, remaining float64, notation string) (*model.Alert, error) {
	a := model.NewAlert(d.to, d.from, remaining, notation)
	a.Channel = d.messenger.Name()

	log := d.log.With(
		slog.String("alert_id", a.ID),
		slog.String("channel", a.Channel),
	)

	sendCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.messenger.Send(sendCtx, a); err != nil {
		log.Error("alert not delivered", sl.Err(err))
		d.record(ctx, log, a, err)
		return a, fmt.Errorf("%w: %s: %w", errs.ErrDispatchFailure, a.Channel, err)
	}

	log.Info("alert delivered", slog.String("body", a.Body))
	return a, nil
}

func (d *Dispatcher) record(ctx context.Context, log *slog.Logger, a *model.Alert, cause error) {
	if d.journal == nil {
		return
	}
	if err := d.journal.Record(context.WithoutCancel(ctx), a, cause.Error()); err != nil {
		log.Error("failed to journal undelivered alert", sl.Err(err))
	}
}
