package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exportguard/exportguardd/internal/adapter/device"
	"github.com/exportguard/exportguardd/internal/adapter/notify"
	"github.com/exportguard/exportguardd/internal/config"
	"github.com/exportguard/exportguardd/internal/core/port"
	"github.com/exportguard/exportguardd/internal/core/service"
	"github.com/exportguard/exportguardd/internal/events"
	"github.com/exportguard/exportguardd/internal/mqtt"
	"github.com/exportguard/exportguardd/internal/server"
	"github.com/exportguard/exportguardd/internal/util"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {

	// console handler for startup diagnostics, before zap is built
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, nil)))

	cfg, err := initConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	logger := util.BuildLogger(cfg)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("exportguard terminated", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {

	inverters, err := inverterEndpoints(cfg, logger)
	if err != nil {
		return err
	}
	meter, err := device.NewPowerMeter(cfg.Meter, util.ComponentLogger("meter", logger))
	if err != nil {
		return err
	}
	relay, err := device.NewGuardRelay(cfg.GuardRelay, util.ComponentLogger("guard_relay", logger))
	if err != nil {
		return err
	}

	var alert port.AlertSender
	if cfg.AlertMail.Enabled() {
		alert = notify.NewMailAlerter(cfg.AlertMail, util.ComponentLogger("mail", logger))
	} else {
		logger.Warn("alert mail not configured, safety alerts will only be logged")
	}

	var publisher port.TelemetryPublisher
	if cfg.MQTT.Enabled() {
		pub := mqtt.NewPublisher(cfg.MQTT, util.ComponentLogger("mqtt", logger))
		if err := pub.Connect(); err != nil {
			// stop the auto-reconnect loop, the client is not kept
			pub.Close()
			logger.Warn("mqtt broker unavailable, telemetry disabled", zap.Error(err))
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	status := &events.StatusStore{}

	scheduler := &service.Scheduler{
		Interval: cfg.Control.Interval(),
		Window:   cfg.Control.Window(),
		Control: &service.LimitController{
			Serial:       cfg.Inverter.Serial,
			MinLimitWatt: cfg.Inverter.MinLimitWatt,
			MaxLimitWatt: cfg.Inverter.MaxLimitWatt,
			Inverters:    inverters,
			Meter:        meter,
			Logger:       util.ComponentLogger("control", logger),
		},
		Safety: &service.SafetyMonitor{
			Relay:             relay,
			TripThresholdWatt: cfg.GuardRelay.MaxWatt,
			Alert:             alert,
			Logger:            util.ComponentLogger("safety", logger),
		},
		Status:    status,
		Publisher: publisher,
		Logger:    util.ComponentLogger("scheduler", logger),
	}

	apiServer := server.NewServer(*cfg, status)
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = scheduler.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := apiServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("http server forced to shutdown", zap.Error(shutdownErr))
	}

	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete")
		return nil
	}
	return err
}

func inverterEndpoints(cfg *config.Config, logger *zap.Logger) ([]service.Endpoint[port.InverterGateway], error) {
	inv := cfg.Inverter
	primary, err := device.NewInverterGateway(inv.Kind, inv.PrimaryHost, inv.Username, inv.Password,
		util.ComponentLogger("inverter_primary", logger))
	if err != nil {
		return nil, err
	}
	var backup port.InverterGateway
	if inv.BackupHost != "" {
		backup, err = device.NewInverterGateway(inv.Kind, inv.BackupHost, inv.Username, inv.Password,
			util.ComponentLogger("inverter_backup", logger))
		if err != nil {
			return nil, err
		}
	}
	return service.PrimaryBackup(primary, backup, backup != nil), nil
}

func initConfig() (*config.Config, error) {

	setConfigDefaults()

	viper.SetEnvPrefix("exportguard")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			if err := viper.ReadInConfig(); err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace", "debug":
		cfg.LogLevel = zap.DebugLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	if cfg.MQTT.Enabled() {
		baseTopic, err := config.CheckBaseTopic(cfg.MQTT.BaseTopic)
		if err != nil {
			return nil, err
		}
		cfg.MQTT.BaseTopic = baseTopic
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file.max_size_mb", 10)
	viper.SetDefault("log_file.max_age_days", 14)
	viper.SetDefault("inverter.kind", device.KindOpenDTU)
	viper.SetDefault("control.interval_seconds", 10)
	viper.SetDefault("control.window_start_hour", -1)
	viper.SetDefault("control.window_end_hour", -1)
	viper.SetDefault("alert_mail.port", 587)
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.base_topic", "exportguard")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.Inverter.Password = "*redacted*"
	cfg.Meter.Password = "*redacted*"
	cfg.GuardRelay.Password = "*redacted*"
	cfg.AlertMail.Password = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
