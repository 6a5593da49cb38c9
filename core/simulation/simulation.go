// Package simulation steps an infrastructure tree through time: vehicles
// arrive and leave, an Allocator distributes power and the resulting charges
// are applied to the connection points.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/chargeinfra/core/events"
	"github.com/kilianp07/chargeinfra/core/infrastructure"
	"github.com/kilianp07/chargeinfra/core/logger"
	"github.com/kilianp07/chargeinfra/core/metrics"
	"github.com/kilianp07/chargeinfra/core/model"
	"github.com/kilianp07/chargeinfra/internal/eventbus"
)

// ErrNoFreeConnectionPoint is reported when an arriving vehicle finds every
// connection point occupied.
var ErrNoFreeConnectionPoint = errors.New("no free connection point")

// targetTolerance absorbs rounding when deciding whether a target was met.
const targetTolerance = 1e-6

// Option configures a Simulation.
type Option func(*Simulation)

// WithAllocator sets the power allocator. Defaults to UncontrolledAllocator.
func WithAllocator(a Allocator) Option { return func(s *Simulation) { s.alloc = a } }

// WithSink sets the metrics sink. Defaults to metrics.NopSink.
func WithSink(sink metrics.Sink) Option { return func(s *Simulation) { s.sink = sink } }

// WithBus publishes simulation events on bus.
func WithBus(bus *eventbus.TypedBus[events.Event]) Option {
	return func(s *Simulation) { s.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(s *Simulation) { s.log = l } }

type session struct {
	event model.ChargingEvent
}

// Result summarises a run.
type Result struct {
	RunID     string
	Steps     int
	EnergyKWh float64
	Served    int
	Rejected  int
	TargetMet int
}

// Simulation drives the connection points of one transformer.
type Simulation struct {
	cfg   Config
	root  *infrastructure.Transformer
	leafs []*infrastructure.ConnectionPoint

	alloc Allocator
	sink  metrics.Sink
	bus   *eventbus.TypedBus[events.Event]
	log   logger.Logger

	pending  []model.ChargingEvent
	sessions map[*infrastructure.ConnectionPoint]session
	result   Result
}

// New returns a simulation over leafs, which must all belong to the same
// transformer. Arrivals are processed in ArrivalTime order.
func New(cfg Config, leafs []*infrastructure.ConnectionPoint, arrivals []model.ChargingEvent, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(leafs) == 0 {
		return nil, fmt.Errorf("%w: no connection points", ErrInvalidConfig)
	}
	root := infrastructure.Root(leafs[0])
	if root == nil {
		return nil, fmt.Errorf("%w: connection point %s has no transformer", ErrInvalidConfig, leafs[0].ID())
	}
	for _, p := range leafs[1:] {
		if infrastructure.Root(p) != root {
			return nil, fmt.Errorf("%w: connection point %s belongs to another transformer", ErrInvalidConfig, p.ID())
		}
	}
	for _, ev := range arrivals {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	pending := append([]model.ChargingEvent(nil), arrivals...)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ArrivalTime.Before(pending[j].ArrivalTime)
	})

	s := &Simulation{
		cfg:      cfg,
		root:     root,
		leafs:    leafs,
		alloc:    UncontrolledAllocator{},
		sink:     metrics.NopSink{},
		log:      logger.NopLogger{},
		pending:  pending,
		sessions: make(map[*infrastructure.ConnectionPoint]session, len(leafs)),
		result:   Result{RunID: uuid.NewString()},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Run executes every configured timestep. It stops early when ctx is done
// or a step fails.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	s.log.Infof("simulation %s: %d steps of %v from %s", s.result.RunID, s.cfg.Steps, s.cfg.Resolution, s.cfg.Start.Format(time.RFC3339))
	for i := 0; i < s.cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return s.result, err
		}
		now := s.cfg.Start.Add(time.Duration(i) * s.cfg.Resolution)
		if err := s.Step(i, now); err != nil {
			return s.result, fmt.Errorf("step %d: %w", i, err)
		}
	}
	s.log.Infof("simulation %s done: %.3f kWh, %d served, %d rejected", s.result.RunID, s.result.EnergyKWh, s.result.Served, s.result.Rejected)
	return s.result, nil
}

// Result returns the totals accumulated so far.
func (s *Simulation) Result() Result { return s.result }

// Step advances the simulation by one timestep starting at now.
func (s *Simulation) Step(step int, now time.Time) error {
	s.departures(now)
	s.arrivals(now)

	bounds, err := s.readBounds()
	if err != nil {
		return err
	}
	powers, err := s.alloc.Allocate(s.root, bounds, s.cfg.Resolution)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}
	if err := CheckAllocation(s.root, bounds, powers); err != nil {
		return err
	}
	records, err := s.apply(bounds, powers, now)
	if err != nil {
		return err
	}

	total := floats.Sum(powers)
	s.record(bounds, records, total, now)
	s.result.Steps++
	s.publish(events.StepCompleted{Step: step, PowerKW: total, Occupied: len(s.sessions), Time: now})
	return nil
}

func (s *Simulation) departures(now time.Time) {
	for _, p := range s.leafs {
		sess, ok := s.sessions[p]
		if !ok || now.Before(sess.event.Departure()) {
			continue
		}
		v, _ := p.Vehicle()
		p.DisconnectVehicle()
		delete(s.sessions, p)
		met := v.SoC >= sess.event.SocTarget-targetTolerance
		if met {
			s.result.TargetMet++
		}
		s.log.Debugw("vehicle departed", map[string]any{"connection_point": p.ID(), "event": sess.event.ID, "soc": v.SoC})
		s.publish(events.VehicleDisconnected{ConnectionPointID: p.ID(), EventID: sess.event.ID, SoC: v.SoC, TargetMet: met, Time: now})
	}
}

func (s *Simulation) arrivals(now time.Time) {
	for len(s.pending) > 0 && !s.pending[0].ArrivalTime.After(now) {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		if !ev.Departure().After(now) {
			continue
		}
		p, err := s.connect(ev)
		if err != nil {
			s.result.Rejected++
			s.log.Warnf("vehicle %s rejected: %v", ev.ID, err)
			s.publish(events.VehicleRejected{EventID: ev.ID, Err: err, Time: now})
			continue
		}
		s.result.Served++
		s.publish(events.VehicleConnected{ConnectionPointID: p.ID(), EventID: ev.ID, SoC: ev.SoC, Time: now})
	}
}

func (s *Simulation) connect(ev model.ChargingEvent) (*infrastructure.ConnectionPoint, error) {
	for _, p := range s.leafs {
		if p.Occupied() {
			continue
		}
		if err := p.ConnectVehicle(ev); err != nil {
			return nil, err
		}
		s.sessions[p] = session{event: ev}
		return p, nil
	}
	return nil, ErrNoFreeConnectionPoint
}

// readBounds queries every connection point in parallel. Each goroutine
// reads only its own leaf.
func (s *Simulation) readBounds() ([]LeafBounds, error) {
	bounds := make([]LeafBounds, len(s.leafs))
	errs := make([]error, len(s.leafs))
	var wg sync.WaitGroup
	for i, p := range s.leafs {
		sess, ok := s.sessions[p]
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := LeafBounds{Index: i, Point: p}
			if ok {
				b.Occupied = true
				b.Max, _ = p.MaxHardwarePower()
				b.Min, _ = p.MinHardwarePower()
				toTarget, errTarget := p.PowerToChargeTarget(s.cfg.Resolution, sess.event.SocTarget)
				toFull, errFull := p.PowerToChargeTarget(s.cfg.Resolution, 1)
				b.ToTarget, b.ToFull = toTarget, toFull
				errs[i] = errors.Join(errTarget, errFull)
			}
			bounds[i] = b
		}()
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return bounds, nil
}

func (s *Simulation) apply(bounds []LeafBounds, powers []float64, now time.Time) ([]metrics.ChargeRecord, error) {
	var records []metrics.ChargeRecord
	for i, b := range bounds {
		if powers[i] == 0 {
			continue
		}
		before, _ := b.Point.Vehicle()
		if err := b.Point.ChargeVehicle(powers[i], s.cfg.Resolution); err != nil {
			return nil, err
		}
		if err := b.Point.CheckChargeResult(); err != nil {
			return nil, err
		}
		after, _ := b.Point.Vehicle()
		energy := powers[i] * s.cfg.Resolution.Hours()
		s.result.EnergyKWh += energy
		records = append(records, metrics.ChargeRecord{
			ConnectionPointID: b.Point.ID(),
			PowerKW:           powers[i],
			EnergyKWh:         energy,
			SoCBefore:         before.SoC,
			SoCAfter:          after.SoC,
			Time:              now,
		})
	}
	return records, nil
}

// record forwards the step to the sink. Sink failures are logged and do not
// stop the simulation.
func (s *Simulation) record(bounds []LeafBounds, records []metrics.ChargeRecord, total float64, now time.Time) {
	states := make([]metrics.LeafState, len(bounds))
	for i, b := range bounds {
		st := metrics.LeafState{
			ConnectionPointID: b.Point.ID(),
			ChargingPointID:   b.Point.ChargingPoint().ID(),
			Occupied:          b.Occupied,
			MinPowerKW:        b.Min,
			MaxPowerKW:        b.Max,
			Time:              now,
		}
		if v, ok := b.Point.Vehicle(); ok {
			st.SoC = v.SoC
		}
		states[i] = st
	}
	if err := s.sink.RecordLeafStates(states); err != nil {
		s.log.Errorf("record leaf states: %v", err)
	}
	if len(records) > 0 {
		if err := s.sink.RecordCharges(records); err != nil {
			s.log.Errorf("record charges: %v", err)
		}
	}
	if r, ok := s.sink.(metrics.TransformerLoadRecorder); ok {
		load := metrics.TransformerLoad{TransformerID: s.root.ID(), PowerKW: total, MaxPowerKW: s.root.MaxPower(), Time: now}
		if err := r.RecordTransformerLoad(load); err != nil {
			s.log.Errorf("record transformer load: %v", err)
		}
	}
}

func (s *Simulation) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}
