package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
)

// PromSink exposes connection point state and charging totals as Prometheus
// metrics.
type PromSink struct {
	soc      *prometheus.GaugeVec
	maxPower *prometheus.GaugeVec
	occupied *prometheus.GaugeVec
	power    *prometheus.GaugeVec
	energy   *prometheus.CounterVec
	load     *prometheus.GaugeVec
	sessions *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	leaf := []string{"connection_point", "charging_point"}
	s := &PromSink{
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connection_point_soc",
			Help: "State of charge of the vehicle connected to a connection point",
		}, leaf),
		maxPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connection_point_max_power_kw",
			Help: "Highest power the connected vehicle accepts",
		}, leaf),
		occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connection_point_occupied",
			Help: "1 when a vehicle is connected, 0 otherwise",
		}, leaf),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connection_point_power_kw",
			Help: "Power applied during the last timestep",
		}, []string{"connection_point"}),
		energy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "connection_point_energy_kwh_total",
			Help: "Energy delivered by a connection point",
		}, []string{"connection_point"}),
		load: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transformer_load_kw",
			Help: "Total power drawn below a transformer",
		}, []string{"transformer"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charging_sessions_total",
			Help: "Vehicles connected, disconnected or rejected",
		}, []string{"outcome", "target_met"}),
	}
	var err error
	if s.soc, err = registerGaugeVec(reg, s.soc); err != nil {
		return nil, err
	}
	if s.maxPower, err = registerGaugeVec(reg, s.maxPower); err != nil {
		return nil, err
	}
	if s.occupied, err = registerGaugeVec(reg, s.occupied); err != nil {
		return nil, err
	}
	if s.power, err = registerGaugeVec(reg, s.power); err != nil {
		return nil, err
	}
	if s.load, err = registerGaugeVec(reg, s.load); err != nil {
		return nil, err
	}
	if s.energy, err = registerCounterVec(reg, s.energy); err != nil {
		return nil, err
	}
	if s.sessions, err = registerCounterVec(reg, s.sessions); err != nil {
		return nil, err
	}
	return s, nil
}

func registerGaugeVec(reg prometheus.Registerer, g *prometheus.GaugeVec) (*prometheus.GaugeVec, error) {
	if err := reg.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return g, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// RecordLeafStates sets the per connection point gauges.
func (s *PromSink) RecordLeafStates(states []coremetrics.LeafState) error {
	for _, st := range states {
		occupied := 0.0
		if st.Occupied {
			occupied = 1
		}
		s.soc.WithLabelValues(st.ConnectionPointID, st.ChargingPointID).Set(st.SoC)
		s.maxPower.WithLabelValues(st.ConnectionPointID, st.ChargingPointID).Set(st.MaxPowerKW)
		s.occupied.WithLabelValues(st.ConnectionPointID, st.ChargingPointID).Set(occupied)
	}
	return nil
}

// RecordCharges accumulates delivered energy and sets the last applied power.
func (s *PromSink) RecordCharges(records []coremetrics.ChargeRecord) error {
	for _, r := range records {
		s.power.WithLabelValues(r.ConnectionPointID).Set(r.PowerKW)
		if r.EnergyKWh > 0 {
			s.energy.WithLabelValues(r.ConnectionPointID).Add(r.EnergyKWh)
		}
	}
	return nil
}

// RecordTransformerLoad sets the transformer load gauge.
func (s *PromSink) RecordTransformerLoad(load coremetrics.TransformerLoad) error {
	s.load.WithLabelValues(load.TransformerID).Set(load.PowerKW)
	return nil
}

// RecordSession counts session outcomes.
func (s *PromSink) RecordSession(ev coremetrics.SessionEvent) error {
	s.sessions.WithLabelValues(outcome(ev), strconv.FormatBool(ev.TargetMet)).Inc()
	return nil
}

func outcome(ev coremetrics.SessionEvent) string {
	switch {
	case ev.Rejected:
		return "rejected"
	case ev.Connected:
		return "connected"
	default:
		return "disconnected"
	}
}
