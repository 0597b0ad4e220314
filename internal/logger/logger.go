// Package logger builds the zap loggers used across the engine.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a production zap logger at the given verbosity
// ("debug", "info", "warn", "error").
func New(verbosity string) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, fmt.Errorf("logger: invalid verbosity %q: %w", verbosity, err)
	}

	config := zap.NewProductionConfig()
	config.Level = level
	return config.Build()
}
