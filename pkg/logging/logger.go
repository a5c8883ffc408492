// Package logging builds the engine's zap loggers and keeps the
// sanitization helpers used before logging query text or provider
// endpoints.
package logging

import (
	"go.uber.org/zap"
)

// New returns a logger appropriate for the environment: human-readable
// development output for "local", JSON production output otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
