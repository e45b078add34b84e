package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/speedwagon-io/saltydog/internal/alert"
	"github.com/speedwagon-io/saltydog/internal/alert/channels"
	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/gpio"
	"github.com/speedwagon-io/saltydog/internal/journal"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
	"github.com/speedwagon-io/saltydog/internal/metrics"
	"github.com/speedwagon-io/saltydog/internal/monitor"
	"github.com/speedwagon-io/saltydog/internal/sensor"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitInvalidConfig = 2
)

type options struct {
	configPath  string
	envFile     string
	unit        string
	threshold   float64
	tankDepth   float64
	forceReport bool
	dryRun      bool
	logLevel    string
}

func main() {
	os.Exit(execute())
}

func execute() int {
	root := newRootCmd(&options{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	if errors.Is(err, errs.ErrInvalidConfiguration) {
		return exitInvalidConfig
	}
	return exitFailure
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saltydog",
		Short: "Check the salt level in a water softener brine tank",
		Long: `Measures the distance to the salt with an HC-SR04 ultrasonic sensor,
works out how much salt is left and sends an alert when it is running low.
Runs one check and exits; schedule it with cron or a systemd timer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default $CONFIG_PATH)")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with credentials, ignored when missing")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "metric", "metric or imperial")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "alert when less salt than this remains, in --unit")
	cmd.Flags().Float64VarP(&opts.tankDepth, "tank-depth", "d", 0, "distance from the sensor to the tank floor, in --unit")
	cmd.Flags().BoolVarP(&opts.forceReport, "force-report", "f", false, "send the alert regardless of the level")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log the alert instead of sending it")

	cmd.AddCommand(undeliveredCmd(opts))

	return cmd
}

// loadConfig reads the dotenv file, the config file and the environment, then
// applies the flags the user actually set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to load %s: %w", errs.ErrInvalidConfiguration, opts.envFile, err)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("unit") {
		cfg.Unit = opts.unit
	}
	if flags.Changed("threshold") {
		cfg.Threshold = opts.threshold
	}
	if flags.Changed("tank-depth") {
		cfg.TankDepth = opts.tankDepth
	}
	if flags.Changed("force-report") {
		cfg.ForceReport = opts.forceReport
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.dryRun {
		cfg.Alert.Channel = config.ChannelLog
	}

	return cfg, nil
}

func runCheck(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", sl.Err(err))
		return err
	}

	unit, ok := cfg.UnitSystem()
	if !ok {
		log.Warn("unrecognized unit, using metric", slog.String("unit", cfg.Unit))
	}

	settings, err := monitor.SettingsFromConfig(cfg, unit)
	if err != nil {
		log.Error("invalid configuration", sl.Err(err))
		return err
	}

	log.Info("starting salt check",
		slog.String("env", cfg.Env),
		slog.String("unit", unit.String()),
		slog.String("tank_depth", settings.Geometry.Depth.String()),
		slog.String("threshold", settings.Threshold.String()),
		slog.Bool("force_report", settings.Force),
		slog.String("channel", cfg.Alert.Channel),
		slog.Bool("dry_run", opts.dryRun),
	)

	var undelivered alert.Journal
	if cfg.Journal.Enabled && !opts.dryRun {
		j, err := journal.NewSQLiteJournal(log, cfg.Journal.Path)
		if err != nil {
			// the check itself can still run without the journal
			log.Error("failed to open journal", sl.Err(err))
		} else {
			defer j.Close()
			undelivered = j
			log.Debug("journal enabled", slog.String("path", cfg.Journal.Path))
		}
	}

	dispatcher := alert.NewDispatcher(log, newMessenger(log, &cfg.Alert), &cfg.Alert, undelivered)

	ctl := gpio.NewPeriph()
	hc := sensor.NewHCSR04(log, ctl, &cfg.Sensor)
	sampler := sensor.NewSampler(log, hc, &cfg.Sensor)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := monitor.NewSession(log, hc, sampler, dispatcher, settings).Run(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		pushMetrics(ctx, log, cfg, report)
	}

	if runErr != nil {
		log.Error("salt check failed", sl.Err(runErr))
		return runErr
	}

	log.Info("salt check complete",
		slog.Bool("alerted", report.Alerted),
		slog.Bool("delivered", report.Delivered),
	)
	return nil
}

func newMessenger(log *slog.Logger, cfg *config.AlertConfig) alert.Messenger {
	switch cfg.Channel {
	case config.ChannelTelegram:
		return channels.NewTelegram(log, &cfg.Telegram, cfg.Timeout)
	case config.ChannelWebhook:
		return channels.NewWebhook(log, &cfg.Webhook, cfg.Timeout)
	case config.ChannelMQTT:
		return channels.NewMQTT(log, &cfg.MQTT, cfg.Timeout)
	case config.ChannelLog:
		return channels.NewLog(log)
	default:
		return channels.NewTwilio(log, &cfg.Twilio, cfg.Timeout)
	}
}

func pushMetrics(ctx context.Context, log *slog.Logger, cfg *config.Config, report *monitor.Report) {
	instance, _ := os.Hostname()
	pusher := metrics.NewPusher(log, &cfg.Metrics, instance)

	// the cycle context may already be canceled; the pusher bounds itself
	if err := pusher.Push(context.WithoutCancel(ctx), report.Reading()); err != nil {
		log.Warn("failed to push metrics", sl.Err(err))
	}
}
