// SPDX-License-Identifier: EPL-2.0

// Package logger builds the zap logger used by the command line tool.
package logger

import (
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log level and the optional rotating log file.
type Config struct {
	Level       string `yaml:"level"`
	Filename    string `yaml:"filename,omitempty"`
	MaxSize     int    `yaml:"max_size,omitempty"`    // megabytes
	MaxAge      int    `yaml:"max_age,omitempty"`     // days
	MaxBackups  int    `yaml:"max_backups,omitempty"` // files
	Development bool   `yaml:"development,omitempty"`
}

// New returns a logger writing to stderr and, when Filename is set, to a
// JSON log file rotated by lumberjack.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	if cfg.Development {
		consoleCfg = zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.Filename != "" {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCfg.TimeKey = "time"
		fileCfg.EncodeDuration = zapcore.SecondsDurationEncoder

		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), sink, level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	return zap.New(zapcore.NewTee(cores...), opts...), nil
}
