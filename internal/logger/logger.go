// Package logger provides the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init configures the global logger for the given environment. Production
// gets JSON output; everything else gets a console encoder with ISO 8601
// timestamps. Calling Init more than once is a no-op.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			base = zap.NewNop()
		default:
			cfg := zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			base, err = cfg.Build()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development logger
// if Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
