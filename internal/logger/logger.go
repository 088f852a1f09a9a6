package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger for the given mode. "prod" and "production"
// select JSON output at info level; anything else is the development
// console encoder at debug level.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// Install builds the logger for mode and makes it the process-wide zap
// logger. The returned function flushes and restores the previous logger.
func Install(mode string) (*zap.Logger, func(), error) {
	log, err := New(mode)
	if err != nil {
		return nil, nil, err
	}
	restore := zap.ReplaceGlobals(log)
	return log, func() {
		_ = log.Sync()
		restore()
	}, nil
}
