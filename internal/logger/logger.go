package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given environment.
// env "production" yields a JSON logger; anything else a development logger.
// An empty level keeps the environment default (info in production, debug otherwise).
func New(env, level string) (*zap.Logger, error) {
	if strings.EqualFold(env, "production") {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		lvl, err := parseLevel(level, zapcore.InfoLevel)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	lvl, err := parseLevel(level, zapcore.DebugLevel)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build(zap.AddCaller())
}

func parseLevel(level string, fallback zapcore.Level) (zapcore.Level, error) {
	if level == "" {
		return fallback, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fallback, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
