// Package app wires the configuration into a runnable simulation: layout,
// builder, metrics sinks, MQTT publisher and event collector.
package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/chargeinfra/config"
	"github.com/kilianp07/chargeinfra/core/builder"
	"github.com/kilianp07/chargeinfra/core/events"
	"github.com/kilianp07/chargeinfra/core/infrastructure"
	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
	"github.com/kilianp07/chargeinfra/core/simulation"
	"github.com/kilianp07/chargeinfra/infra/logger"
	"github.com/kilianp07/chargeinfra/infra/metrics"
	"github.com/kilianp07/chargeinfra/infra/mqtt"
	"github.com/kilianp07/chargeinfra/internal/eventbus"
)

// busBuffer is the per subscriber capacity of the simulation event bus.
const busBuffer = 1024

// Option configures a Service.
type Option func(*options)

type options struct {
	sinks []coremetrics.Sink
}

// WithSink adds a sink next to the configured ones.
func WithSink(s coremetrics.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// Service runs one configured simulation.
type Service struct {
	Transformer *infrastructure.Transformer
	Leafs       []*infrastructure.ConnectionPoint

	sim      *simulation.Simulation
	bus      *eventbus.TypedBus[events.Event]
	sink     coremetrics.Sink
	log      logger.Logger
	promAddr string
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logg := logger.New("service")

	layout, err := cfg.Infrastructure.BuilderConfig()
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	b := builder.New(builder.WithLogger(logger.New("builder")))
	leafs, err := b.Build(layout)
	if err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	sinks := append([]coremetrics.Sink{sink}, o.sinks...)
	if cfg.MQTT != nil {
		client, err := mqtt.NewPahoClient(*cfg.MQTT)
		if err != nil {
			coremetrics.Close(coremetrics.NewMultiSink(sinks...))
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		sinks = append(sinks, mqtt.NewStatePublisher(client, cfg.MQTT.TopicPrefix, cfg.MQTT.Retain))
	}
	if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	alloc, err := simulation.NewAllocator(cfg.Simulation.Allocator)
	if err != nil {
		coremetrics.Close(sink)
		return nil, fmt.Errorf("allocator: %w", err)
	}
	arrivals, err := cfg.Simulation.Events()
	if err != nil {
		coremetrics.Close(sink)
		return nil, err
	}
	bus := eventbus.NewTypedWithBuffer[events.Event](busBuffer)
	sim, err := simulation.New(cfg.Simulation.Grid(), leafs, arrivals,
		simulation.WithAllocator(alloc),
		simulation.WithSink(sink),
		simulation.WithBus(bus),
		simulation.WithLogger(logger.New("simulation")),
	)
	if err != nil {
		coremetrics.Close(sink)
		return nil, err
	}

	return &Service{
		Transformer: b.Transformer(),
		Leafs:       leafs,
		sim:         sim,
		bus:         bus,
		sink:        sink,
		log:         logg,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}, nil
}

// Run executes the simulation. When a Prometheus address is configured the
// endpoint keeps serving after the run until ctx is canceled.
func (s *Service) Run(ctx context.Context) (simulation.Result, error) {
	promDone := make(chan struct{})
	if s.promAddr != "" {
		go func() {
			defer close(promDone)
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	} else {
		close(promDone)
	}

	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	res, err := s.sim.Run(ctx)
	s.bus.Close()
	<-collected
	if dropped := s.bus.Dropped(); dropped > 0 {
		s.log.Warnf("%d simulation events dropped", dropped)
	}
	if err != nil {
		return res, err
	}
	s.log.Infof("run %s: %d steps, %.3f kWh, %d served, %d rejected, %d reached target",
		res.RunID, res.Steps, res.EnergyKWh, res.Served, res.Rejected, res.TargetMet)
	<-promDone
	return res, nil
}

// Close releases resources held by the sinks.
func (s *Service) Close() error {
	coremetrics.Close(s.sink)
	return nil
}
