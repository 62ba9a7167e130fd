// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New builds a logger appropriate for the given environment: console output
// at debug level for local work, JSON at info level otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
