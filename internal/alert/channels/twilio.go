// Package channels holds the messengers an alert can be delivered through.
package channels

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/model"
)

// MessageCreator is the slice of the Twilio REST API used to send SMS.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type Twilio struct {
	log *slog.Logger
	api MessageCreator
}

func NewTwilio(log *slog.Logger, cfg *config.TwilioConfig, timeout time.Duration) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.Username,
		Password:   cfg.Password,
		AccountSid: cfg.AccountSID,
	})
	client.SetTimeout(timeout)

	return NewTwilioWithAPI(log, client.Api)
}

func NewTwilioWithAPI(log *slog.Logger, api MessageCreator) *Twilio {
	return &Twilio{log: log, api: api}
}

func (t *Twilio) Name() string { return config.ChannelSMS }

// Send creates one SMS. The Twilio client has no context support, so ctx is
// only checked before the request.
func (t *Twilio) Send(ctx context.Context, alert *model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(alert.To)
	params.SetFrom(alert.From)
	params.SetBody(alert.Body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	attrs := []any{slog.String("alert_id", alert.ID)}
	if resp != nil && resp.Sid != nil {
		attrs = append(attrs, slog.String("sid", *resp.Sid))
	}
	if resp != nil && resp.Status != nil {
		attrs = append(attrs, slog.String("status", *resp.Status))
	}
	t.log.Debug("sms queued", attrs...)

	return nil
}
