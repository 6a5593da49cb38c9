package metrics

import "time"

// LeafState is a snapshot of a connection point at one timestep.
type LeafState struct {
	ConnectionPointID string
	ChargingPointID   string
	Occupied          bool
	SoC               float64
	// MinPowerKW and MaxPowerKW hold the feasible bounds of the connected
	// vehicle. Both are zero when the point is free.
	MinPowerKW float64
	MaxPowerKW float64
	Time       time.Time
}

// ChargeRecord describes the power applied to one connection point during
// one timestep.
type ChargeRecord struct {
	ConnectionPointID string
	PowerKW           float64
	EnergyKWh         float64
	SoCBefore         float64
	SoCAfter          float64
	Time              time.Time
}

// Sink records simulation state for observability purposes.
type Sink interface {
	RecordLeafStates(states []LeafState) error
	RecordCharges(records []ChargeRecord) error
}

// TransformerLoad is the total power drawn below a transformer.
type TransformerLoad struct {
	TransformerID string
	PowerKW       float64
	MaxPowerKW    float64
	Time          time.Time
}

// TransformerLoadRecorder is implemented by sinks able to record transformer load.
type TransformerLoadRecorder interface {
	RecordTransformerLoad(load TransformerLoad) error
}

// SessionEvent marks a vehicle connecting to, leaving or being turned away
// from the site. ConnectionPointID is empty for rejected vehicles.
type SessionEvent struct {
	ConnectionPointID string
	EventID           string
	Connected         bool
	Rejected          bool
	TargetMet         bool
	SoC               float64
	Time              time.Time
}

// SessionRecorder is implemented by sinks able to record sessions.
type SessionRecorder interface {
	RecordSession(ev SessionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordLeafStates([]LeafState) error          { return nil }
func (NopSink) RecordCharges([]ChargeRecord) error          { return nil }
func (NopSink) RecordTransformerLoad(TransformerLoad) error { return nil }
func (NopSink) RecordSession(SessionEvent) error            { return nil }
