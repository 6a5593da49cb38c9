package events

import "time"

// VehicleConnected is published when a charging event is assigned to a
// connection point.
type VehicleConnected struct {
	ConnectionPointID string
	EventID           string
	SoC               float64
	Time              time.Time
}

// VehicleDisconnected is published when a vehicle departs.
type VehicleDisconnected struct {
	ConnectionPointID string
	EventID           string
	SoC               float64
	// TargetMet reports whether the vehicle left with its SoC target reached.
	TargetMet bool
	Time      time.Time
}

// VehicleRejected is published when an arriving vehicle finds no free
// connection point or cannot be connected.
type VehicleRejected struct {
	EventID string
	Err     error
	Time    time.Time
}

func (e VehicleConnected) EventTime() time.Time    { return e.Time }
func (e VehicleDisconnected) EventTime() time.Time { return e.Time }
func (e VehicleRejected) EventTime() time.Time     { return e.Time }
