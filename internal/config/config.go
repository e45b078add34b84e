package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/units"
)

const (
	ChannelSMS      = "sms"
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"
	ChannelMQTT     = "mqtt"
	ChannelLog      = "log"
)

type Config struct {
	Env         string        `yaml:"env" env:"SALT_ENV" env-default:"prod"`
	Unit        string        `yaml:"unit" env:"SALT_UNIT" env-default:"metric"`
	Threshold   float64       `yaml:"threshold" env:"SALT_THRESHOLD" env-default:"0"`
	TankDepth   float64       `yaml:"tank_depth" env:"SALT_TANK_DEPTH" env-default:"100"`
	ForceReport bool          `yaml:"force_report" env:"SALT_FORCE_REPORT" env-default:"false"`
	Sensor      SensorConfig  `yaml:"sensor"`
	Alert       AlertConfig   `yaml:"alert"`
	Journal     JournalConfig `yaml:"journal"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Log         LogConfig     `yaml:"log"`
}

type AlertConfig struct {
	Channel  string         `yaml:"channel" env:"ALERT_CHANNEL" env-default:"sms"`
	To       string         `yaml:"to" env:"REAL_PHONE_NUMBER"`
	From     string         `yaml:"from" env:"TWILIO_PHONE_NUMBER"`
	Timeout  time.Duration  `yaml:"timeout" env-default:"10s"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	Username   string `yaml:"username" env:"TWILIO_PUBLIC_KEY"`
	Password   string `yaml:"password" env:"TWILIO_SECRET_KEY"`
}

type TelegramConfig struct {
	Token string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
}

type WebhookConfig struct {
	URL   string `yaml:"url" env:"ALERT_WEBHOOK_URL"`
	Token string `yaml:"token" env:"ALERT_WEBHOOK_TOKEN"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker" env:"MQTT_BROKER"`
	Topic    string `yaml:"topic" env-default:"saltydog/alert"`
	ClientID string `yaml:"client_id" env-default:"saltydog"`
	Username string `yaml:"username" env:"MQTT_USERNAME"`
	Password string `yaml:"password" env:"MQTT_PASSWORD"`
	QoS      byte   `yaml:"qos" env-default:"1"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled" env:"SALT_JOURNAL_ENABLED" env-default:"false"`
	Path    string `yaml:"path" env:"SALT_JOURNAL_PATH" env-default:"/var/lib/saltydog/journal.db"`
}

type MetricsConfig struct {
	PushgatewayURL string        `yaml:"pushgateway_url" env:"SALT_PUSHGATEWAY_URL"`
	Job            string        `yaml:"job" env-default:"saltydog"`
	Timeout        time.Duration `yaml:"timeout" env-default:"5s"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"SALT_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"SALT_LOG_FORMAT" env-default:"text"`
}

// Load reads the YAML file at configPath (or $CONFIG_PATH) and then the
// environment. Without a file only the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to read environment: %w", errs.ErrInvalidConfiguration, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: config file not found: %s", errs.ErrInvalidConfiguration, configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to read config: %w", errs.ErrInvalidConfiguration, err)
	}

	return &cfg, nil
}

// UnitSystem resolves the configured unit. ok is false when the value was not
// recognized and Metric was substituted.
func (c *Config) UnitSystem() (units.Unit, bool) {
	return units.ParseUnit(c.Unit)
}

// Validate reports every problem at once so a misconfigured box can be fixed
// in a single pass.
func (c *Config) Validate() error {
	var problems []string

	if c.TankDepth <= 0 {
		problems = append(problems, fmt.Sprintf("tank_depth must be positive, got %v", c.TankDepth))
	}
	if c.Threshold < 0 {
		problems = append(problems, fmt.Sprintf("threshold must not be negative, got %v", c.Threshold))
	}

	problems = append(problems, c.Sensor.validate()...)
	problems = append(problems, c.Alert.validate()...)

	if c.Metrics.PushgatewayURL != "" && c.Metrics.Timeout <= 0 {
		problems = append(problems, "metrics.timeout must be positive")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		problems = append(problems, "journal.path is required when the journal is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func (a *AlertConfig) validate() []string {
	var problems []string

	switch a.Channel {
	case ChannelSMS:
		if a.To == "" || a.From == "" {
			problems = append(problems, "alert.to and alert.from are required for sms")
		}
		if a.Twilio.Username == "" || a.Twilio.Password == "" {
			problems = append(problems, "twilio credentials are required for sms")
		}
	case ChannelTelegram:
		if a.Telegram.Token == "" {
			problems = append(problems, "telegram.token is required for telegram")
		}
		if _, err := strconv.ParseInt(a.To, 10, 64); err != nil {
			problems = append(problems, fmt.Sprintf("alert.to must be a telegram chat id, got %q", a.To))
		}
	case ChannelWebhook:
		if a.Webhook.URL == "" {
			problems = append(problems, "webhook.url is required for webhook")
		}
	case ChannelMQTT:
		if a.MQTT.Broker == "" || a.MQTT.Topic == "" {
			problems = append(problems, "mqtt.broker and mqtt.topic are required for mqtt")
		}
		if a.MQTT.QoS > 2 {
			problems = append(problems, fmt.Sprintf("mqtt.qos must be 0, 1 or 2, got %d", a.MQTT.QoS))
		}
	case ChannelLog:
	default:
		problems = append(problems, fmt.Sprintf("unknown alert.channel %q", a.Channel))
	}

	if a.Timeout <= 0 {
		problems = append(problems, "alert.timeout must be positive")
	}

	return problems
}
