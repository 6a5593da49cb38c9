package config

import "github.com/kilianp07/chargeinfra/core/logger"

// LoggingConfig defines the minimum log level.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level logger.Level `json:"level"`
}

// SetDefaults applies the info level.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = logger.LevelInfo
	}
}

// Validate checks the level.
func (c LoggingConfig) Validate() error {
	return c.Level.Validate()
}
