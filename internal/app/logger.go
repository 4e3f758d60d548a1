package app

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions описывает логгер сервиса.
// Level пустой - уровень по умолчанию для окружения.
type LoggerOptions struct {
	Environment string
	Service     string
	Level       string
}

func loggerConfig(opts LoggerOptions) (zap.Config, error) {
	var config zap.Config

	if opts.Environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if opts.Level != "" {
		level, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		config.Level = level
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.Service != "" {
		config.InitialFields = map[string]interface{}{"service": opts.Service}
	}

	return config, nil
}

// NewLogger собирает zap-логгер; каждая запись помечена полем service
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	config, err := loggerConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
