package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/config"
)

// New builds a production logger when env is "production" and a development
// logger otherwise. cfg.LogLevel overrides fallback when set.
func New(cfg *config.Config, fallback zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zc = zap.NewProductionConfig()
	}

	level := fallback
	if cfg.LogLevel != "" {
		lvl, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log_level: %w", err)
		}
		level = lvl
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
