package infrastructure

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/chargeinfra/core/model"
)

// ConnectionPoint links a charging point to at most one vehicle. Its lower
// bound reads as "at least MinPower or exactly zero".
//
// The vehicle slot has a single writer: only ConnectVehicle,
// DisconnectVehicle and ChargeVehicle mutate it, and callers must not invoke
// them concurrently on the same point.
type ConnectionPoint struct {
	Node
	connected *model.ConnectedVehicle
}

// NewConnectionPoint creates a connection point bound to parent. The caller
// must register it with parent.AddChild.
func NewConnectionPoint(id string, minPower, maxPower float64, parent *ChargingPoint) (*ConnectionPoint, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: connection point %s needs a charging point parent", ErrTypeMismatch, id)
	}
	n, err := newNode(id, KindConnectionPoint, minPower, maxPower, parent)
	if err != nil {
		return nil, err
	}
	return &ConnectionPoint{Node: n}, nil
}

// ChargingPoint returns the parent of p.
func (p *ConnectionPoint) ChargingPoint() *ChargingPoint { return p.parent.(*ChargingPoint) }

func (p *ConnectionPoint) String() string {
	if p.connected == nil {
		return p.id + " <nil>"
	}
	return p.id + " " + p.connected.String()
}

// Occupied reports whether a vehicle is connected.
func (p *ConnectionPoint) Occupied() bool { return p.connected != nil }

// Vehicle returns a copy of the connected vehicle snapshot.
func (p *ConnectionPoint) Vehicle() (model.ConnectedVehicle, bool) {
	if p.connected == nil {
		return model.ConnectedVehicle{}, false
	}
	return *p.connected, true
}

// ConnectVehicle stores the vehicle described by ev.
func (p *ConnectionPoint) ConnectVehicle(ev model.ArrivalEvent) error {
	if ev == nil {
		return fmt.Errorf("%s: %w: nil event", p.id, ErrInvalidVehicle)
	}
	if p.connected != nil {
		return fmt.Errorf("%s: %w", p.id, ErrAlreadyOccupied)
	}
	v := ev.Vehicle()
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%s: %w", p.id, err)
	}
	p.connected = &v
	return nil
}

// DisconnectVehicle frees the connection point. It is a no-op when empty.
func (p *ConnectionPoint) DisconnectVehicle() {
	p.connected = nil
}

// ChargeVehicle applies power during resolution to the connected vehicle.
// The resulting SoC is not clamped; CheckChargeResult reports whether it
// left [0,1].
func (p *ConnectionPoint) ChargeVehicle(power float64, resolution time.Duration) error {
	if p.connected == nil {
		return fmt.Errorf("%s: %w", p.id, ErrNoVehicleConnected)
	}
	if resolution <= 0 {
		return fmt.Errorf("%s: %w: %v", p.id, ErrInvalidDuration, resolution)
	}
	if math.IsNaN(power) || math.IsInf(power, 0) {
		return fmt.Errorf("%s: invalid power %v", p.id, power)
	}
	capacity := p.connected.VehicleType.Battery.Capacity()
	p.connected.SoC += power * resolution.Hours() / capacity
	return nil
}

// CheckChargeResult returns ErrSocOutOfRange when the connected vehicle's
// SoC is outside [0,1].
func (p *ConnectionPoint) CheckChargeResult() error {
	if p.connected == nil {
		return fmt.Errorf("%s: %w", p.id, ErrNoVehicleConnected)
	}
	if !CheckSoC(p.connected.SoC) {
		return fmt.Errorf("%s: %w: %v", p.id, ErrSocOutOfRange, p.connected.SoC)
	}
	return nil
}

// MaxHardwarePower returns the highest power the point and the connected
// battery accept at the current SoC. Charging point and transformer limits
// are not considered. The boolean is false when no vehicle is connected.
func (p *ConnectionPoint) MaxHardwarePower() (float64, bool) {
	if p.connected == nil {
		return 0, false
	}
	b := p.connected.VehicleType.Battery
	return math.Min(p.maxPower, b.MaxPowerPossible(p.connected.SoC)), true
}

// MinHardwarePower returns the lowest non-zero power needed to charge the
// connected vehicle. The boolean is false when no vehicle is connected.
func (p *ConnectionPoint) MinHardwarePower() (float64, bool) {
	if p.connected == nil {
		return 0, false
	}
	b := p.connected.VehicleType.Battery
	return math.Max(p.minPower, b.MinPowerPossible(p.connected.SoC)), true
}

// PowerToChargeTarget returns the constant power needed during d to bring the
// connected vehicle to socTarget. It returns 0 when the target is already
// met. The result may exceed MaxHardwarePower.
func (p *ConnectionPoint) PowerToChargeTarget(d time.Duration, socTarget float64) (float64, error) {
	if !CheckSoC(socTarget) {
		return 0, fmt.Errorf("%s: %w: target %v", p.id, ErrSocOutOfRange, socTarget)
	}
	if p.connected == nil {
		return 0, fmt.Errorf("%s: %w", p.id, ErrNoVehicleConnected)
	}
	current := p.connected.SoC
	if current >= socTarget {
		return 0, nil
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: %w: %v", p.id, ErrInvalidDuration, d)
	}
	capacity := p.connected.VehicleType.Battery.Capacity()
	return (socTarget - current) * capacity / d.Hours(), nil
}

// CheckSoC reports whether soc lies in [0,1].
func CheckSoC(soc float64) bool { return model.ValidSoC(soc) }
