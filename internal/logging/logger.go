// Package logging builds the zap loggers used across trackmatch.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/trackmatch/internal/model"
)

// New returns a zap logger. Debug mode uses the development config
// (human-readable, debug level); otherwise the production config (JSON on
// stderr) at the configured level.
func New(cfg model.LogConfig) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
