package util

import (
	"os"

	"github.com/exportguard/exportguardd/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// BuildLogger assembles the process-wide zap logger: a console core plus,
// when a log file is configured, a rotating JSON file core. The logger is
// constructed once at startup and handed down to every component; write
// failures on the sink never propagate into control decisions.
func BuildLogger(cfg *config.Config) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			cfg.LogLevel),
	}
	if cfg.LogFile.Path != "" {
		// MaxBackups stays zero: retention is by age only
		rotating := &lumberjack.Logger{
			Filename: cfg.LogFile.Path,
			MaxSize:  cfg.LogFile.MaxSizeMB,
			MaxAge:   cfg.LogFile.MaxAgeDays,
			Compress: true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(rotating),
			cfg.LogLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// ComponentLogger tags a child logger with the component it belongs to.
func ComponentLogger(name string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("component", name))
}
