package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count int
}

func (r *recordSink) RecordLeafStates([]LeafState) error {
	r.count++
	return nil
}

func (r *recordSink) RecordCharges([]ChargeRecord) error {
	r.count++
	return nil
}

type loadSink struct {
	recordSink
	loads []TransformerLoad
}

func (l *loadSink) RecordTransformerLoad(load TransformerLoad) error {
	l.loads = append(l.loads, load)
	return nil
}

type failingSink struct{ recordSink }

func (failingSink) RecordCharges([]ChargeRecord) error { return errors.New("down") }

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &loadSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordLeafStates(nil); err != nil {
		t.Fatalf("record states: %v", err)
	}
	if err := m.RecordCharges(nil); err != nil {
		t.Fatalf("record charges: %v", err)
	}
	if err := m.RecordTransformerLoad(TransformerLoad{TransformerID: "transformer_1", PowerKW: 12}); err != nil {
		t.Fatalf("record load: %v", err)
	}
	if err := m.RecordSession(SessionEvent{}); err != nil {
		t.Fatalf("record session: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
	if len(s2.loads) != 1 || s2.loads[0].PowerKW != 12 {
		t.Fatalf("load not forwarded: %+v", s2.loads)
	}
}

func TestMultiSink_StopsOnError(t *testing.T) {
	after := &recordSink{}
	m := NewMultiSink(&failingSink{}, after)
	if err := m.RecordCharges(nil); err == nil {
		t.Fatal("expected error")
	}
	if after.count != 0 {
		t.Fatal("sink after the failing one must not be called")
	}
}
