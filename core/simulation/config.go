package simulation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for unusable simulation settings.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config defines the time grid of a simulation run.
type Config struct {
	Start      time.Time     `json:"start" yaml:"start"`
	Resolution time.Duration `json:"resolution" yaml:"resolution"`
	Steps      int           `json:"steps" yaml:"steps"`
}

// SetDefaults applies a 15 minute resolution over one day starting at the
// current midnight.
func (c *Config) SetDefaults() {
	if c.Resolution == 0 {
		c.Resolution = 15 * time.Minute
	}
	if c.Steps == 0 {
		c.Steps = int((24 * time.Hour) / c.Resolution)
	}
	if c.Start.IsZero() {
		c.Start = time.Now().UTC().Truncate(24 * time.Hour)
	}
}

// Validate checks the time grid.
func (c Config) Validate() error {
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %v", ErrInvalidConfig, c.Resolution)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	return nil
}

// End returns the instant after the last timestep.
func (c Config) End() time.Time {
	return c.Start.Add(time.Duration(c.Steps) * c.Resolution)
}
