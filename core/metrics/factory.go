package metrics

import (
	"fmt"

	"github.com/kilianp07/chargeinfra/core/factory"
)

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a metrics sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Types() }

// NewSink creates a Sink from the provided configuration. When one of the
// sinks cannot be created the ones already built are closed.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]Sink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			for _, built := range sinks {
				Close(built)
			}
			return nil, fmt.Errorf("sink %d (%s): %w", i, c.Type, err)
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}

// Close releases s when it holds resources, descending into MultiSinks.
func Close(s Sink) {
	switch v := s.(type) {
	case *MultiSink:
		for _, inner := range v.Sinks {
			Close(inner)
		}
	case interface{ Close() }:
		v.Close()
	}
}
