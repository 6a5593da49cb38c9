package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
	coremqtt "github.com/kilianp07/chargeinfra/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// StatePublisher publishes simulation records as JSON messages. It
// implements coremetrics.Sink, TransformerLoadRecorder and SessionRecorder.
//
// Topics:
//
//	<prefix>/connection_point/<id>/state   retained per leaf snapshot
//	<prefix>/connection_point/<id>/charge  power applied during a step
//	<prefix>/transformer/<id>/load         total power below the transformer
//	<prefix>/session                       vehicle connect/disconnect/reject
type StatePublisher struct {
	cli    Client
	prefix string
	retain bool
}

// NewStatePublisher returns a publisher writing below prefix. Leaf states are
// retained when retain is set.
func NewStatePublisher(cli Client, prefix string, retain bool) *StatePublisher {
	return &StatePublisher{cli: cli, prefix: prefix, retain: retain}
}

// StateTopic returns the topic carrying the state of a connection point.
func StateTopic(prefix, connectionPointID string) string {
	return fmt.Sprintf("%s/connection_point/%s/state", prefix, connectionPointID)
}

// ChargeTopic returns the topic carrying the charges of a connection point.
func ChargeTopic(prefix, connectionPointID string) string {
	return fmt.Sprintf("%s/connection_point/%s/charge", prefix, connectionPointID)
}

// LoadTopic returns the topic carrying the load of a transformer.
func LoadTopic(prefix, transformerID string) string {
	return fmt.Sprintf("%s/transformer/%s/load", prefix, transformerID)
}

// SessionTopic returns the topic carrying session events.
func SessionTopic(prefix string) string { return prefix + "/session" }

// LeafStateMessage is the payload of a state topic.
type LeafStateMessage struct {
	ConnectionPointID string    `json:"connection_point_id"`
	ChargingPointID   string    `json:"charging_point_id"`
	Occupied          bool      `json:"occupied"`
	SoC               float64   `json:"soc"`
	MinPowerKW        float64   `json:"min_power_kw"`
	MaxPowerKW        float64   `json:"max_power_kw"`
	Timestamp         time.Time `json:"timestamp"`
}

// ChargeMessage is the payload of a charge topic.
type ChargeMessage struct {
	PowerKW   float64   `json:"power_kw"`
	EnergyKWh float64   `json:"energy_kwh"`
	SoCBefore float64   `json:"soc_before"`
	SoCAfter  float64   `json:"soc_after"`
	Timestamp time.Time `json:"timestamp"`
}

// LoadMessage is the payload of a load topic.
type LoadMessage struct {
	PowerKW    float64   `json:"power_kw"`
	MaxPowerKW float64   `json:"max_power_kw"`
	Timestamp  time.Time `json:"timestamp"`
}

// SessionMessage is the payload of the session topic.
type SessionMessage struct {
	Outcome           string    `json:"outcome"`
	EventID           string    `json:"event_id"`
	ConnectionPointID string    `json:"connection_point_id,omitempty"`
	SoC               float64   `json:"soc"`
	TargetMet         bool      `json:"target_met"`
	Timestamp         time.Time `json:"timestamp"`
}

func (p *StatePublisher) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	return p.cli.Publish(topic, retained, payload)
}

// RecordLeafStates publishes one message per connection point. Every state
// is attempted; the failures are joined.
func (p *StatePublisher) RecordLeafStates(states []coremetrics.LeafState) error {
	var errs []error
	for _, st := range states {
		msg := LeafStateMessage{
			ConnectionPointID: st.ConnectionPointID,
			ChargingPointID:   st.ChargingPointID,
			Occupied:          st.Occupied,
			SoC:               st.SoC,
			MinPowerKW:        st.MinPowerKW,
			MaxPowerKW:        st.MaxPowerKW,
			Timestamp:         st.Time,
		}
		if err := p.publish(StateTopic(p.prefix, st.ConnectionPointID), p.retain, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordCharges publishes one message per charge record.
func (p *StatePublisher) RecordCharges(records []coremetrics.ChargeRecord) error {
	var errs []error
	for _, r := range records {
		msg := ChargeMessage{PowerKW: r.PowerKW, EnergyKWh: r.EnergyKWh, SoCBefore: r.SoCBefore, SoCAfter: r.SoCAfter, Timestamp: r.Time}
		if err := p.publish(ChargeTopic(p.prefix, r.ConnectionPointID), false, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordTransformerLoad publishes the transformer load.
func (p *StatePublisher) RecordTransformerLoad(load coremetrics.TransformerLoad) error {
	msg := LoadMessage{PowerKW: load.PowerKW, MaxPowerKW: load.MaxPowerKW, Timestamp: load.Time}
	return p.publish(LoadTopic(p.prefix, load.TransformerID), p.retain, msg)
}

// RecordSession publishes a session event.
func (p *StatePublisher) RecordSession(ev coremetrics.SessionEvent) error {
	outcome := "disconnected"
	switch {
	case ev.Rejected:
		outcome = "rejected"
	case ev.Connected:
		outcome = "connected"
	}
	msg := SessionMessage{
		Outcome:           outcome,
		EventID:           ev.EventID,
		ConnectionPointID: ev.ConnectionPointID,
		SoC:               ev.SoC,
		TargetMet:         ev.TargetMet,
		Timestamp:         ev.Time,
	}
	return p.publish(SessionTopic(p.prefix), false, msg)
}

// Close disconnects the underlying client.
func (p *StatePublisher) Close() { p.cli.Disconnect() }
