package logger

import (
	"fmt"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/chargeinfra/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger mirrors the core no-op logger.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is
// selected via the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// SetLevel sets the minimum level of every logger created by this package.
func SetLevel(level corelogger.Level) error {
	if err := level.Validate(); err != nil {
		return err
	}
	lvl, err := zerolog.ParseLevel(string(level))
	if err != nil {
		return fmt.Errorf("parse level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
