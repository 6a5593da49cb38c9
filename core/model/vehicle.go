package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSocOutOfRange is returned when a state of charge leaves [0,1].
	ErrSocOutOfRange = errors.New("soc out of range")
	// ErrInvalidVehicle is returned when a vehicle type carries no battery.
	ErrInvalidVehicle = errors.New("invalid vehicle")
)

// Battery describes the charge acceptance of a vehicle battery.
// Power values share the unit of the infrastructure bounds (kW) and
// Capacity is expressed in the matching energy unit (kWh).
type Battery interface {
	Capacity() float64
	// MaxPowerPossible returns the highest power the battery accepts at soc.
	MaxPowerPossible(soc float64) float64
	// MinPowerPossible returns the lowest non-zero power the battery accepts at soc.
	MinPowerPossible(soc float64) float64
}

// VehicleType identifies a vehicle model and its battery.
type VehicleType struct {
	Brand   string
	Model   string
	Battery Battery
}

func (t VehicleType) String() string {
	if t.Brand == "" && t.Model == "" {
		return "vehicle"
	}
	return t.Brand + " " + t.Model
}

// ConnectedVehicle is the snapshot a connection point holds for the vehicle
// plugged into it.
type ConnectedVehicle struct {
	VehicleType VehicleType
	SoC         float64
}

// NewConnectedVehicle validates the snapshot fields.
func NewConnectedVehicle(vt VehicleType, soc float64) (ConnectedVehicle, error) {
	v := ConnectedVehicle{VehicleType: vt, SoC: soc}
	if err := v.Validate(); err != nil {
		return ConnectedVehicle{}, err
	}
	return v, nil
}

// Validate checks that the snapshot carries a battery with a positive
// capacity and that SoC lies in [0,1].
func (v ConnectedVehicle) Validate() error {
	if v.VehicleType.Battery == nil {
		return fmt.Errorf("%w: %s has no battery", ErrInvalidVehicle, v.VehicleType)
	}
	if c := v.VehicleType.Battery.Capacity(); !(c > 0) || math.IsInf(c, 0) {
		return fmt.Errorf("%w: battery capacity must be positive, got %v", ErrInvalidVehicle, c)
	}
	if !ValidSoC(v.SoC) {
		return fmt.Errorf("%w: %v", ErrSocOutOfRange, v.SoC)
	}
	return nil
}

func (v ConnectedVehicle) String() string {
	return fmt.Sprintf("{vehicle_type: %s, soc: %.3f}", v.VehicleType, v.SoC)
}

// ValidSoC reports whether soc lies in [0,1]. NaN is never valid.
func ValidSoC(soc float64) bool {
	return soc >= 0 && soc <= 1
}

// ArrivalEvent is anything able to describe the vehicle arriving at a
// connection point.
type ArrivalEvent interface {
	Vehicle() ConnectedVehicle
}

// ChargingEvent represents the arrival of a vehicle at the site.
type ChargingEvent struct {
	ID          string
	ArrivalTime time.Time
	ParkingTime time.Duration // time the vehicle stays plugged in
	SoC         float64       // state of charge at arrival
	SocTarget   float64       // state of charge desired at departure
	VehicleType VehicleType
}

// NewChargingEvent returns an event with a generated identifier.
func NewChargingEvent(arrival time.Time, parking time.Duration, soc, target float64, vt VehicleType) ChargingEvent {
	return ChargingEvent{
		ID:          uuid.NewString(),
		ArrivalTime: arrival,
		ParkingTime: parking,
		SoC:         soc,
		SocTarget:   target,
		VehicleType: vt,
	}
}

// Vehicle implements ArrivalEvent.
func (e ChargingEvent) Vehicle() ConnectedVehicle {
	return ConnectedVehicle{VehicleType: e.VehicleType, SoC: e.SoC}
}

// Departure returns the time the vehicle leaves.
func (e ChargingEvent) Departure() time.Time {
	return e.ArrivalTime.Add(e.ParkingTime)
}

// Validate checks the event fields.
func (e ChargingEvent) Validate() error {
	if e.ParkingTime <= 0 {
		return fmt.Errorf("event %s: parking time must be positive", e.ID)
	}
	if !ValidSoC(e.SocTarget) {
		return fmt.Errorf("event %s: %w: target %v", e.ID, ErrSocOutOfRange, e.SocTarget)
	}
	if err := e.Vehicle().Validate(); err != nil {
		return fmt.Errorf("event %s: %w", e.ID, err)
	}
	return nil
}
