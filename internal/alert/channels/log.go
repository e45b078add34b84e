package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/model"
)

// Log writes alerts to the logger instead of sending them (dry runs).
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Name() string { return config.ChannelLog }

func (l *Log) Send(ctx context.Context, alert *model.Alert) error {
	data, err := alert.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	l.log.Info("SEND",
		slog.String("to", alert.To),
		slog.String("body", alert.Body),
		slog.String("payload", string(data)),
	)

	return nil
}
