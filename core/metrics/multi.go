package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordLeafStates forwards the states to all sinks, returning the first error encountered.
func (m *MultiSink) RecordLeafStates(states []LeafState) error {
	for _, s := range m.Sinks {
		if err := s.RecordLeafStates(states); err != nil {
			return err
		}
	}
	return nil
}

// RecordCharges forwards charge records to all sinks.
func (m *MultiSink) RecordCharges(records []ChargeRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordCharges(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransformerLoad forwards the load to sinks supporting it.
func (m *MultiSink) RecordTransformerLoad(load TransformerLoad) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TransformerLoadRecorder); ok {
			if err := rec.RecordTransformerLoad(load); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSession forwards session events to sinks supporting them.
func (m *MultiSink) RecordSession(ev SessionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SessionRecorder); ok {
			if err := rec.RecordSession(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
