package config

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/kilianp07/chargeinfra/core/battery"
	"github.com/kilianp07/chargeinfra/core/factory"
	"github.com/kilianp07/chargeinfra/core/model"
	"github.com/kilianp07/chargeinfra/core/simulation"
)

// DefaultVehicleType names the vehicle type added when none is configured.
const DefaultVehicleType = "default"

// VehicleTypeConfig describes a vehicle model.
type VehicleTypeConfig struct {
	Brand   string            `json:"brand"`
	Model   string            `json:"model"`
	Battery battery.EVBattery `json:"battery"`
}

// ArrivalConfig describes one vehicle arriving at Offset after the start.
type ArrivalConfig struct {
	Offset      time.Duration `json:"offset"`
	ParkingTime time.Duration `json:"parking_time"`
	SoC         float64       `json:"soc"`
	SocTarget   float64       `json:"soc_target"`
	VehicleType string        `json:"vehicle_type"`
}

// SimulationConfig defines the time grid, the allocator and the arrivals.
type SimulationConfig struct {
	Start        time.Time                    `json:"start"`
	Resolution   time.Duration                `json:"resolution"`
	Steps        int                          `json:"steps"`
	Allocator    factory.ModuleConfig         `json:"allocator"`
	VehicleTypes map[string]VehicleTypeConfig `json:"vehicle_types"`
	Arrivals     []ArrivalConfig              `json:"arrivals"`
}

// SetDefaults fills the time grid, the allocator and the vehicle types.
func (c *SimulationConfig) SetDefaults() {
	grid := c.Grid()
	grid.SetDefaults()
	c.Start, c.Resolution, c.Steps = grid.Start, grid.Resolution, grid.Steps
	if c.Allocator.Type == "" {
		c.Allocator.Type = "uncontrolled"
	}
	if len(c.VehicleTypes) == 0 {
		c.VehicleTypes = map[string]VehicleTypeConfig{
			DefaultVehicleType: {Brand: "generic", Model: "ev", Battery: battery.Default()},
		}
	}
	for i := range c.Arrivals {
		if c.Arrivals[i].VehicleType == "" {
			c.Arrivals[i].VehicleType = DefaultVehicleType
		}
	}
}

// Validate checks the grid, the vehicle types and the arrivals.
func (c SimulationConfig) Validate() error {
	if err := c.Grid().Validate(); err != nil {
		return err
	}
	if !slices.Contains(simulation.AllocatorTypes(), c.Allocator.Type) {
		return fmt.Errorf("unknown allocator %q", c.Allocator.Type)
	}
	names := make([]string, 0, len(c.VehicleTypes))
	for name := range c.VehicleTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.VehicleTypes[name].Battery.Validate(); err != nil {
			return fmt.Errorf("vehicle type %s: %w", name, err)
		}
	}
	for i, a := range c.Arrivals {
		if _, ok := c.VehicleTypes[a.VehicleType]; !ok {
			return fmt.Errorf("arrival %d: unknown vehicle type %q", i, a.VehicleType)
		}
		if a.Offset < 0 {
			return fmt.Errorf("arrival %d: negative offset %v", i, a.Offset)
		}
		if a.ParkingTime <= 0 {
			return fmt.Errorf("arrival %d: parking time must be positive", i)
		}
		if !model.ValidSoC(a.SoC) || !model.ValidSoC(a.SocTarget) {
			return fmt.Errorf("arrival %d: %w: soc %v target %v", i, model.ErrSocOutOfRange, a.SoC, a.SocTarget)
		}
	}
	return nil
}

// Grid returns the simulation time grid.
func (c SimulationConfig) Grid() simulation.Config {
	return simulation.Config{Start: c.Start, Resolution: c.Resolution, Steps: c.Steps}
}

// Events builds the charging events of the configured arrivals.
func (c SimulationConfig) Events() ([]model.ChargingEvent, error) {
	out := make([]model.ChargingEvent, 0, len(c.Arrivals))
	for i, a := range c.Arrivals {
		vt, ok := c.VehicleTypes[a.VehicleType]
		if !ok {
			return nil, fmt.Errorf("arrival %d: unknown vehicle type %q", i, a.VehicleType)
		}
		ev := model.NewChargingEvent(c.Start.Add(a.Offset), a.ParkingTime, a.SoC, a.SocTarget,
			model.VehicleType{Brand: vt.Brand, Model: vt.Model, Battery: vt.Battery})
		out = append(out, ev)
	}
	return out, nil
}
