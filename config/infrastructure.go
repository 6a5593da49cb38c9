package config

import (
	"errors"
	"fmt"

	"github.com/kilianp07/chargeinfra/core/builder"
	"github.com/kilianp07/chargeinfra/core/wallbox"
)

// InfrastructureConfig selects how the infrastructure tree is described:
// a uniform wallbox layout, an inline layout or a layout file. Exactly one
// must be set.
type InfrastructureConfig struct {
	Wallbox    *wallbox.Options `json:"wallbox"`
	Layout     *builder.Config  `json:"layout"`
	LayoutFile string           `json:"layout_file"`
}

// SetDefaults applies the wallbox defaults when a wallbox layout is used.
func (c *InfrastructureConfig) SetDefaults() {
	if c.Wallbox != nil {
		c.Wallbox.SetDefaults()
	}
}

// Validate checks that exactly one source is set.
func (c InfrastructureConfig) Validate() error {
	n := 0
	if c.Wallbox != nil {
		n++
	}
	if c.Layout != nil {
		n++
	}
	if c.LayoutFile != "" {
		n++
	}
	switch n {
	case 0:
		return errors.New("one of wallbox, layout or layout_file is required")
	case 1:
		return nil
	default:
		return errors.New("only one of wallbox, layout or layout_file may be set")
	}
}

// BuilderConfig resolves the configured source into a layout.
func (c InfrastructureConfig) BuilderConfig() (builder.Config, error) {
	switch {
	case c.Wallbox != nil:
		return wallbox.Generate(*c.Wallbox)
	case c.Layout != nil:
		return *c.Layout, nil
	case c.LayoutFile != "":
		return builder.LoadConfig(c.LayoutFile)
	default:
		return builder.Config{}, fmt.Errorf("%w: no infrastructure source", builder.ErrMalformedConfig)
	}
}
