package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/model"
)

// MQTT publishes the alert JSON to a topic, for home automation hubs.
type MQTT struct {
	log       *slog.Logger
	opts      *mqtt.ClientOptions
	topic     string
	qos       byte
	timeout   time.Duration
	newClient func(o *mqtt.ClientOptions) mqtt.Client
}

func NewMQTT(log *slog.Logger, cfg *config.MQTTConfig, timeout time.Duration) *MQTT {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(false).
		SetConnectRetry(false)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	return &MQTT{
		log:       log,
		opts:      opts,
		topic:     cfg.Topic,
		qos:       cfg.QoS,
		timeout:   timeout,
		newClient: mqtt.NewClient,
	}
}

func (m *MQTT) Name() string { return config.ChannelMQTT }

func (m *MQTT) Send(ctx context.Context, alert *model.Alert) error {
	payload, err := alert.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	client := m.newClient(m.opts)
	if err := m.wait(ctx, client.Connect()); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer client.Disconnect(250)

	if err := m.wait(ctx, client.Publish(m.topic, m.qos, false, payload)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", m.topic, err)
	}

	m.log.Debug("alert published",
		slog.String("alert_id", alert.ID),
		slog.String("topic", m.topic),
	)
	return nil
}

func (m *MQTT) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("timed out waiting for broker")
	}
}
