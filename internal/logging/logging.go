// Package logging constructs the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger. LVR_ENV=dev selects a human-readable,
// colorized development encoder; anything else gets the JSON production
// encoder suitable for log aggregation.
func New() *zap.SugaredLogger {
	var cfg zap.Config
	if os.Getenv("LVR_ENV") == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		// Logger construction failure leaves us unable to log structurally;
		// fall back to a no-op logger rather than panicking at startup.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}
