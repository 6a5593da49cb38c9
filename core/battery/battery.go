// Package battery provides a reference implementation of model.Battery with
// a piecewise linear charge acceptance curve: full power below a SoC
// threshold, then a linear decrease down to a fraction of the full power at
// SoC 1.
package battery

import (
	"fmt"
	"math"

	"github.com/kilianp07/chargeinfra/core/model"
)

// EVBattery models the battery of an electric vehicle.
type EVBattery struct {
	CapacityKWh    float64 `json:"capacity" yaml:"capacity"`
	MaxChargePower float64 `json:"max_charge_power" yaml:"max_charge_power"`
	MinChargePower float64 `json:"min_charge_power" yaml:"min_charge_power"`
	// StartPowerDegradation is the SoC from which the accepted power decreases.
	StartPowerDegradation float64 `json:"start_power_degradation" yaml:"start_power_degradation"`
	// MaxDegradationLevel is the share of MaxChargePower still accepted at SoC 1.
	MaxDegradationLevel float64 `json:"max_degradation_level" yaml:"max_degradation_level"`
}

var _ model.Battery = EVBattery{}

// Default returns the battery used when a vehicle type does not specify one.
func Default() EVBattery {
	return EVBattery{
		CapacityKWh:           50,
		MaxChargePower:        11,
		MinChargePower:        0,
		StartPowerDegradation: 0.8,
		MaxDegradationLevel:   0.1,
	}
}

// Validate checks the battery parameters.
func (b EVBattery) Validate() error {
	if !(b.CapacityKWh > 0) || math.IsInf(b.CapacityKWh, 0) {
		return fmt.Errorf("capacity must be positive, got %v", b.CapacityKWh)
	}
	if !(b.MinChargePower >= 0) {
		return fmt.Errorf("min charge power must be non-negative, got %v", b.MinChargePower)
	}
	if !(b.MaxChargePower >= b.MinChargePower) {
		return fmt.Errorf("max charge power %v below min charge power %v", b.MaxChargePower, b.MinChargePower)
	}
	if !model.ValidSoC(b.StartPowerDegradation) {
		return fmt.Errorf("start power degradation must be in [0,1], got %v", b.StartPowerDegradation)
	}
	if !model.ValidSoC(b.MaxDegradationLevel) {
		return fmt.Errorf("max degradation level must be in [0,1], got %v", b.MaxDegradationLevel)
	}
	return nil
}

// Capacity implements model.Battery.
func (b EVBattery) Capacity() float64 { return b.CapacityKWh }

// MaxPowerPossible implements model.Battery.
func (b EVBattery) MaxPowerPossible(soc float64) float64 {
	if soc < b.StartPowerDegradation || b.StartPowerDegradation >= 1 {
		return b.MaxChargePower
	}
	floor := b.MaxDegradationLevel * b.MaxChargePower
	slope := (floor - b.MaxChargePower) / (1 - b.StartPowerDegradation)
	p := b.MaxChargePower + slope*(soc-b.StartPowerDegradation)
	if p < floor {
		p = floor
	}
	return p
}

// MinPowerPossible implements model.Battery.
func (b EVBattery) MinPowerPossible(float64) float64 { return b.MinChargePower }
