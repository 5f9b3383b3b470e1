package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger. When logPath is non-empty the log is
// additionally appended to that file, replacing the plain-text run log
// the tool's predecessors kept.
func New(development bool, logPath string) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if logPath != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logPath)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, logPath)
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(development bool, logPath string) *zap.Logger {
	log, err := New(development, logPath)
	if err != nil {
		panic(err)
	}
	return log
}
