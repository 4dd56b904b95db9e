// Package logging builds the zap logger shared by every command.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ziadkadry99/stylelens/internal/config"
)

// New returns a logger writing to console, plus a rotated JSON file when
// cfg.File is set. The console core is human readable unless cfg.Format is
// "json".
func New(cfg config.LogConfig, console io.Writer) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	jsonConfig := zap.NewProductionEncoderConfig()
	jsonConfig.TimeKey = "timestamp"
	jsonConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonConfig.MessageKey = "message"
	jsonConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(jsonConfig)

	var consoleEncoder zapcore.Encoder
	if cfg.Format == "json" {
		consoleEncoder = jsonEncoder
	} else {
		devConfig := zap.NewDevelopmentEncoderConfig()
		devConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleEncoder = zapcore.NewConsoleEncoder(devConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(console)), level),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
