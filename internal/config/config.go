package config

import (
	"fmt"
	"time"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"go.uber.org/zap/zapcore"
)

// MinPollIntervalSeconds is a hard floor to avoid hammering embedded device
// firmware with back-to-back polls.
const MinPollIntervalSeconds = 4

type Config struct {
	LogLevel zapcore.Level
	LogFile  LogFileConfig `mapstructure:"log_file"`

	Inverter   InverterConfig `mapstructure:"inverter"`
	Meter      DeviceConfig   `mapstructure:"meter"`
	GuardRelay RelayConfig    `mapstructure:"guard_relay"`
	Control    ControlConfig  `mapstructure:"control"`
	AlertMail  MailConfig     `mapstructure:"alert_mail"`
	MQTT       MQTTConfig     `mapstructure:"mqtt"`

	Port    uint `mapstructure:"port"`
	HttpLog bool `mapstructure:"http_log"`
}

type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type InverterConfig struct {
	Kind         string `mapstructure:"kind"`
	PrimaryHost  string `mapstructure:"primary_host"`
	BackupHost   string `mapstructure:"backup_host"`
	Username     string
	Password     string
	Serial       string
	MinLimitWatt int `mapstructure:"min_limit_watt"`
	MaxLimitWatt int `mapstructure:"max_limit_watt"`
}

type DeviceConfig struct {
	Kind     string
	Host     string
	Username string
	Password string
	// UnitId only applies to modbus meters.
	UnitId uint8 `mapstructure:"unit_id"`
}

type RelayConfig struct {
	DeviceConfig `mapstructure:",squash"`
	MaxWatt      float64 `mapstructure:"max_watt"`
}

type ControlConfig struct {
	IntervalSeconds uint `mapstructure:"interval_seconds"`
	// Window hours are -1 when no daily window is configured.
	WindowStartHour int `mapstructure:"window_start_hour"`
	WindowEndHour   int `mapstructure:"window_end_hour"`
}

type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

type MQTTConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

func (c ControlConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c ControlConfig) Window() *domain.ScheduleWindow {
	if c.WindowStartHour < 0 || c.WindowEndHour < 0 {
		return nil
	}
	return &domain.ScheduleWindow{StartHour: c.WindowStartHour, EndHour: c.WindowEndHour}
}

func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.Recipient != ""
}

func (c MQTTConfig) Enabled() bool {
	return c.Host != ""
}

// Validate enforces the startup invariants. Any failure here must prevent
// the control loop from ever starting.
func (cfg *Config) Validate() error {
	if cfg.Control.IntervalSeconds < MinPollIntervalSeconds {
		return fmt.Errorf("%w: control.interval_seconds must be >= %d", domain.ErrInvalidConfiguration, MinPollIntervalSeconds)
	}
	if err := cfg.Control.validateWindow(); err != nil {
		return err
	}
	if cfg.Inverter.Serial == "" {
		return fmt.Errorf("%w: inverter.serial is required", domain.ErrInvalidConfiguration)
	}
	if cfg.Inverter.PrimaryHost == "" {
		return fmt.Errorf("%w: inverter.primary_host is required", domain.ErrInvalidConfiguration)
	}
	if cfg.Inverter.MinLimitWatt < 0 {
		return fmt.Errorf("%w: inverter.min_limit_watt must be >= 0", domain.ErrInvalidConfiguration)
	}
	if cfg.Inverter.MinLimitWatt > cfg.Inverter.MaxLimitWatt {
		return fmt.Errorf("%w: inverter.min_limit_watt (%d) must be <= inverter.max_limit_watt (%d)",
			domain.ErrInvalidConfiguration, cfg.Inverter.MinLimitWatt, cfg.Inverter.MaxLimitWatt)
	}
	if cfg.Meter.Host == "" {
		return fmt.Errorf("%w: meter.host is required", domain.ErrInvalidConfiguration)
	}
	if cfg.GuardRelay.Host == "" {
		return fmt.Errorf("%w: guard_relay.host is required", domain.ErrInvalidConfiguration)
	}
	if cfg.GuardRelay.MaxWatt <= 0 {
		return fmt.Errorf("%w: guard_relay.max_watt must be > 0", domain.ErrInvalidConfiguration)
	}
	return nil
}

func (c ControlConfig) validateWindow() error {
	if c.WindowStartHour < 0 && c.WindowEndHour < 0 {
		return nil
	}
	if c.WindowStartHour < 0 || c.WindowEndHour < 0 {
		return fmt.Errorf("%w: control.window_start_hour and control.window_end_hour must be set together", domain.ErrInvalidConfiguration)
	}
	if c.WindowStartHour > 23 || c.WindowEndHour > 23 {
		return fmt.Errorf("%w: control window hours must be in 0..23", domain.ErrInvalidConfiguration)
	}
	if c.WindowStartHour == c.WindowEndHour {
		return fmt.Errorf("%w: control window [%d, %d) is empty", domain.ErrInvalidConfiguration, c.WindowStartHour, c.WindowEndHour)
	}
	return nil
}
