package channels

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/model"
)

// Telegram posts the alert body to a chat. alert.To carries the chat id.
type Telegram struct {
	log      *slog.Logger
	token    string
	endpoint string
	client   *http.Client
}

func NewTelegram(log *slog.Logger, cfg *config.TelegramConfig, timeout time.Duration) *Telegram {
	return &Telegram{
		log:      log,
		token:    cfg.Token,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *Telegram) Name() string { return config.ChannelTelegram }

func (t *Telegram) Send(ctx context.Context, alert *model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(alert.To, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", alert.To, err)
	}

	// the bot is built per send; the process only ever sends one message
	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return fmt.Errorf("failed to authorize bot: %w", err)
	}

	sent, err := bot.Send(tgbotapi.NewMessage(chatID, alert.Body))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	t.log.Debug("telegram message sent",
		slog.String("alert_id", alert.ID),
		slog.String("bot", bot.Self.UserName),
		slog.Int("message_id", sent.MessageID),
	)
	return nil
}
