// Package wallbox generates uniform infrastructure layouts: identical
// connection points grouped under identical charging stations below a single
// transformer.
package wallbox

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/chargeinfra/core/builder"
)

// ErrInvalidParameter is returned for options that cannot describe a valid layout.
var ErrInvalidParameter = errors.New("invalid wallbox parameter")

// Options describes a uniform layout. Nil station and transformer powers
// default to the sum of the powers below them. A zero PointsPerStation means
// unset: SetDefaults turns it into 1 (config loading always calls it), while
// Generate rejects it like any other non-positive value.
type Options struct {
	NumConnectionPoints int      `json:"num_connection_points" yaml:"num_connection_points"`
	PowerPerPoint       float64  `json:"power_per_point" yaml:"power_per_point"`
	PointsPerStation    int      `json:"points_per_station" yaml:"points_per_station"`
	PowerPerStation     *float64 `json:"power_per_station,omitempty" yaml:"power_per_station,omitempty"`
	PowerTransformer    *float64 `json:"power_transformer,omitempty" yaml:"power_transformer,omitempty"`
	MinPowerPoint       float64  `json:"min_power_point" yaml:"min_power_point"`
	MinPowerStation     float64  `json:"min_power_station" yaml:"min_power_station"`
	MinPowerTransformer float64  `json:"min_power_transformer" yaml:"min_power_transformer"`
}

// SetDefaults applies a single point per station when unset.
func (o *Options) SetDefaults() {
	if o.PointsPerStation == 0 {
		o.PointsPerStation = 1
	}
}

// Generate returns the layout described by opts. PointsPerStation must be
// set; call SetDefaults to fall back to one point per station.
func Generate(opts Options) (builder.Config, error) {
	if opts.PointsPerStation <= 0 {
		return builder.Config{}, fmt.Errorf("%w: points per station must be a positive integer, got %d", ErrInvalidParameter, opts.PointsPerStation)
	}
	if opts.NumConnectionPoints < 0 {
		return builder.Config{}, fmt.Errorf("%w: number of connection points must be non-negative, got %d", ErrInvalidParameter, opts.NumConnectionPoints)
	}
	if opts.NumConnectionPoints%opts.PointsPerStation != 0 {
		return builder.Config{}, fmt.Errorf("%w: %d connection points cannot be split into stations of %d",
			ErrInvalidParameter, opts.NumConnectionPoints, opts.PointsPerStation)
	}
	numStations := opts.NumConnectionPoints / opts.PointsPerStation

	powerStation := opts.PowerPerPoint * float64(opts.PointsPerStation)
	if opts.PowerPerStation != nil {
		powerStation = *opts.PowerPerStation
	}
	powerTransformer := float64(numStations*opts.PointsPerStation) * opts.PowerPerPoint
	if opts.PowerTransformer != nil {
		powerTransformer = *opts.PowerTransformer
	}

	levels := []struct {
		name     string
		min, max float64
	}{
		{"connection point", opts.MinPowerPoint, opts.PowerPerPoint},
		{"station", opts.MinPowerStation, powerStation},
		{"transformer", opts.MinPowerTransformer, powerTransformer},
	}
	for _, l := range levels {
		if !validPower(l.min) || !validPower(l.max) {
			return builder.Config{}, fmt.Errorf("%w: %s power must be a non-negative number, got [%v, %v]", ErrInvalidParameter, l.name, l.min, l.max)
		}
		if l.max < l.min {
			return builder.Config{}, fmt.Errorf("%w: %s max power %v below min power %v", ErrInvalidParameter, l.name, l.max, l.min)
		}
	}

	transformer := builder.TransformerConfig{
		ID:             "transformer1",
		MinPower:       builder.Power(opts.MinPowerTransformer),
		MaxPower:       builder.Power(powerTransformer),
		ChargingPoints: make([]builder.ChargingPointConfig, 0, numStations),
	}
	for i := 0; i < numStations; i++ {
		station := builder.ChargingPointConfig{
			ID:               fmt.Sprintf("charging_point%d", i+1),
			MinPower:         builder.Power(opts.MinPowerStation),
			MaxPower:         builder.Power(powerStation),
			ConnectionPoints: make([]builder.ConnectionPointConfig, 0, opts.PointsPerStation),
		}
		for j := 0; j < opts.PointsPerStation; j++ {
			station.ConnectionPoints = append(station.ConnectionPoints, builder.ConnectionPointConfig{
				ID:       fmt.Sprintf("connection_point%d", i*opts.PointsPerStation+j+1),
				MinPower: builder.Power(opts.MinPowerPoint),
				MaxPower: builder.Power(opts.PowerPerPoint),
			})
		}
		transformer.ChargingPoints = append(transformer.ChargingPoints, station)
	}
	return builder.Config{Transformers: []builder.TransformerConfig{transformer}}, nil
}

func validPower(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
