// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - VehicleConnected: a vehicle was plugged into a connection point
//   - VehicleDisconnected: a vehicle left its connection point
//   - VehicleRejected: no connection point could take an arriving vehicle
//   - StepCompleted: all charges of one timestep were applied
package events

import "time"

// Event is implemented by every event published during a simulation.
type Event interface {
	EventTime() time.Time
}
