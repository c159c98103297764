package util

import (
	"github.com/exportguard/exportguardd/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Inverter: config.InverterConfig{
			Kind:         "opendtu",
			PrimaryHost:  "-.-.-.-",
			BackupHost:   "-.-.-.-",
			Serial:       "116180000001",
			MinLimitWatt: 0,
			MaxLimitWatt: 1500,
		},
		Meter: config.DeviceConfig{
			Kind: "tasmota",
			Host: "-.-.-.-",
		},
		GuardRelay: config.RelayConfig{
			DeviceConfig: config.DeviceConfig{
				Kind: "shelly",
				Host: "-.-.-.-",
			},
			MaxWatt: 100,
		},
		Control: config.ControlConfig{
			IntervalSeconds: 10,
			WindowStartHour: -1,
			WindowEndHour:   -1,
		},
		Port: 8080,
	}
}
